package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"fhtsuite/domain/core"
)

// Characteristics summarizes one dataset. Std is the population standard deviation.
type Characteristics struct {
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Analyze computes the descriptive statistics of data
func (da *DistributionAnalyzer) Analyze(data []float64) (Characteristics, error) {
	var c Characteristics
	if len(data) == 0 {
		return c, core.NewInsufficientDataError("descriptive statistics", 0, 1)
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return c, err
	}

	// squares of values above ~1e154 overflow; the std of the scaled copy times the factor does not
	scaled, factor := core.ScaleByMaxAbs(data)
	scaledStd, err := stats.StandardDeviationPopulation(scaled)
	if err != nil {
		return c, err
	}
	stdDev := scaledStd * factor

	min, err := stats.Min(data)
	if err != nil {
		return c, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return c, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return c, err
	}

	c.Mean = mean
	c.Std = stdDev
	c.Min = min
	c.Max = max
	c.Range = max - min
	c.Median = median
	c.Skewness = calculateSkewness(data, mean, stdDev)
	c.Kurtosis = calculateKurtosis(data, mean, stdDev)

	return c, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return finiteOrZero(skewness * correction)
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	kurtosis := sumFourthDeviations / n

	// G2 = ((n+1)·g2 + 6)·(n-1)/((n-2)(n-3)) with g2 = m4/m2² - 3
	excess := ((n+1)*(kurtosis-3) + 6) * (n - 1) / ((n - 2) * (n - 3))
	return finiteOrZero(excess)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
