package senses

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"fhtsuite/domain/core"
)

// PearsonSense measures linear association between the original and transformed series
type PearsonSense struct {
	dist *StatisticalDistributions
}

// NewPearsonSense creates a new Pearson correlation sense
func NewPearsonSense() *PearsonSense {
	return &PearsonSense{dist: NewDistributions()}
}

// Name returns the sense name
func (s *PearsonSense) Name() string {
	return "pearson"
}

// Description returns a human-readable description
func (s *PearsonSense) Description() string {
	return "Linear correlation between original and transformed values"
}

// Analyze computes Pearson's r and its two-sided p-value on max-magnitude
// scaled copies of x and y. A zero-variance series has r = 0 and p = 1.
func (s *PearsonSense) Analyze(ctx context.Context, x, y []float64) (SenseResult, error) {
	if err := checkPaired(s.Name(), x, y); err != nil {
		return SenseResult{SenseName: s.Name(), PValue: 1.0, SampleSize: len(x)}, err
	}

	r, pValue := s.computeCorrelation(x, y)

	return SenseResult{
		SenseName:   s.Name(),
		Statistic:   r,
		PValue:      pValue,
		SampleSize:  len(x),
		Signal:      classifySignal(r, s.Name()),
		Description: describeCorrelation("linear", "r", r, pValue),
	}, nil
}

func (s *PearsonSense) computeCorrelation(x, y []float64) (float64, float64) {
	x, _ = core.ScaleByMaxAbs(x)
	y, _ = core.ScaleByMaxAbs(y)

	r, err := stats.Pearson(x, y)
	if err != nil || math.IsNaN(r) {
		return 0, 1.0
	}
	r = math.Max(-1, math.Min(1, r))

	sdX, _ := stats.StandardDeviationPopulation(x)
	sdY, _ := stats.StandardDeviationPopulation(y)
	if sdX == 0 || sdY == 0 {
		return 0, 1.0
	}

	return r, s.dist.CorrelationPValue(r, len(x))
}

// describeCorrelation creates a human-readable description of a correlation result
func describeCorrelation(kind, symbol string, coef, pValue float64) string {
	if pValue > 0.05 {
		return fmt.Sprintf("No significant %s relationship (%s=%.3f, p=%.3f)", kind, symbol, coef, pValue)
	}

	direction := "positive"
	if coef < 0 {
		direction = "negative"
	}

	strength := ""
	absCoef := math.Abs(coef)
	if absCoef < 0.2 {
		strength = "weak"
	} else if absCoef < 0.4 {
		strength = "moderate"
	} else if absCoef < 0.6 {
		strength = "strong"
	} else if absCoef < 0.8 {
		strength = "very strong"
	} else {
		strength = "near-perfect"
	}

	return fmt.Sprintf("%s %s %s relationship (%s=%.3f, p=%.3g)", strength, direction, kind, symbol, coef, pValue)
}
