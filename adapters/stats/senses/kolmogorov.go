package senses

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// KolmogorovSmirnovSense tests whether two samples could share one distribution
type KolmogorovSmirnovSense struct {
	dist *StatisticalDistributions
}

// NewKolmogorovSmirnovSense creates a new two-sample KS sense
func NewKolmogorovSmirnovSense() *KolmogorovSmirnovSense {
	return &KolmogorovSmirnovSense{dist: NewDistributions()}
}

// Name returns the sense name
func (s *KolmogorovSmirnovSense) Name() string {
	return "kolmogorov_smirnov"
}

// Description returns a human-readable description
func (s *KolmogorovSmirnovSense) Description() string {
	return "Two-sample test for a difference between empirical distributions"
}

// Analyze computes the KS statistic D (maximum ECDF distance) and its p-value
func (s *KolmogorovSmirnovSense) Analyze(ctx context.Context, x, y []float64) (SenseResult, error) {
	if err := checkPaired(s.Name(), x, y); err != nil {
		return SenseResult{SenseName: s.Name(), PValue: 1.0, SampleSize: len(x)}, err
	}

	d := TwoSampleStatistic(x, y)
	pValue := s.dist.KolmogorovPValue(d, len(x), len(y))

	return SenseResult{
		SenseName:   s.Name(),
		Statistic:   d,
		PValue:      pValue,
		SampleSize:  len(x),
		Signal:      classifySignal(d, s.Name()),
		Description: s.generateDescription(d, pValue),
	}, nil
}

// TwoSampleStatistic returns D = sup |F_x - F_y| without mutating its inputs
func TwoSampleStatistic(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 {
		return 0
	}
	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)
	sort.Float64s(xs)
	sort.Float64s(ys)
	return stat.KolmogorovSmirnov(xs, nil, ys, nil)
}

func (s *KolmogorovSmirnovSense) generateDescription(d, pValue float64) string {
	if pValue > 0.05 {
		return fmt.Sprintf("Distributions not distinguishable (D=%.3f, p=%.3f)", d, pValue)
	}
	return fmt.Sprintf("Distributions differ (D=%.3f, p=%.3g)", d, pValue)
}
