package senses

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// SpearmanSense detects monotonic relationships using rank correlation
type SpearmanSense struct {
	dist *StatisticalDistributions
}

// NewSpearmanSense creates a new Spearman correlation sense
func NewSpearmanSense() *SpearmanSense {
	return &SpearmanSense{dist: NewDistributions()}
}

// Name returns the sense name
func (s *SpearmanSense) Name() string {
	return "spearman"
}

// Description returns a human-readable description
func (s *SpearmanSense) Description() string {
	return "Detects monotonic relationships robust to outliers and non-normality"
}

// Analyze computes Spearman's rank correlation coefficient
func (s *SpearmanSense) Analyze(ctx context.Context, x, y []float64) (SenseResult, error) {
	if err := checkPaired(s.Name(), x, y); err != nil {
		return SenseResult{SenseName: s.Name(), PValue: 1.0, SampleSize: len(x)}, err
	}

	rho, pValue := s.computeSpearmanCorrelation(x, y)

	return SenseResult{
		SenseName:   s.Name(),
		Statistic:   rho,
		PValue:      pValue,
		SampleSize:  len(x),
		Signal:      classifySignal(rho, s.Name()),
		Description: describeCorrelation("monotonic", "ρ", rho, pValue),
	}, nil
}

// computeSpearmanCorrelation calculates rho as the Pearson correlation of the
// tie-averaged ranks, which stays exact when ties are present.
func (s *SpearmanSense) computeSpearmanCorrelation(x, y []float64) (float64, float64) {
	xRanks := ComputeRanks(x)
	yRanks := ComputeRanks(y)

	sdX, _ := stats.StandardDeviationPopulation(xRanks)
	sdY, _ := stats.StandardDeviationPopulation(yRanks)
	if sdX == 0 || sdY == 0 {
		return 0, 1.0
	}

	rho, err := stats.Pearson(xRanks, yRanks)
	if err != nil || math.IsNaN(rho) {
		return 0, 1.0
	}

	// Clamp to [-1, 1] range (due to floating point precision)
	rho = math.Max(-1, math.Min(1, rho))

	return rho, s.dist.CorrelationPValue(rho, len(x))
}

// ComputeRanks converts values to 1-based ranks, averaging ties
func ComputeRanks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)

	i := 0
	for i < n {
		j := i + 1

		// Find the end of the tie group
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0

		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}

		i = j
	}

	return ranks
}
