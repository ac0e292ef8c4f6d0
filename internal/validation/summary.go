package validation

import (
	"github.com/montanaflynn/stats"
)

// Summarize aggregates the records and failures of a run. Means over no
// records are 0.
func Summarize(result *SuiteResult) Summary {
	summary := Summary{
		TotalFailures: len(result.Failures),
		Patterns:      make([]PatternSummary, 0, len(result.Patterns)),
	}

	failures := make(map[string]int)
	for _, f := range result.Failures {
		failures[f.Pattern]++
	}

	var all []float64
	for _, pattern := range result.Patterns {
		records := result.Results[pattern]
		ps := PatternSummary{
			Pattern:  pattern,
			Tests:    len(records),
			Failures: failures[pattern],
		}

		consciousness := make([]float64, len(records))
		pearson := make([]float64, len(records))
		spearman := make([]float64, len(records))
		ks := make([]float64, len(records))
		elapsed := make([]float64, len(records))
		for i, r := range records {
			consciousness[i] = r.Metrics.ConsciousnessScore
			pearson[i] = r.Tests.PearsonCorrelation
			spearman[i] = r.Tests.SpearmanCorrelation
			ks[i] = r.Tests.KSStatistic
			elapsed[i] = r.ProcessingTime
		}

		ps.MeanConsciousnessScore = mean(consciousness)
		ps.StdConsciousnessScore = stdDev(consciousness)
		ps.MeanPearson = mean(pearson)
		ps.MeanSpearman = mean(spearman)
		ps.MeanKSStatistic = mean(ks)
		ps.MeanProcessingTime = mean(elapsed)

		summary.TotalTests += len(records)
		summary.Patterns = append(summary.Patterns, ps)
		all = append(all, consciousness...)
	}
	summary.MeanConsciousnessScore = mean(all)
	return summary
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

func stdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return 0
	}
	return sd
}
