package senses

import (
	"context"
	"errors"
	"math"
)

// MinSampleSize is the smallest paired sample the senses accept.
const MinSampleSize = 2

// SenseResult represents the output of a single statistical sense
type SenseResult struct {
	SenseName   string  `json:"sense_name"`
	Statistic   float64 `json:"statistic"` // r, rho or D depending on the sense
	PValue      float64 `json:"p_value"`   // two-sided, in [0,1]
	SampleSize  int     `json:"sample_size"`
	Signal      string  `json:"signal"`      // "weak", "moderate", "strong", "very_strong"
	Description string  `json:"description"` // Human-readable explanation
}

// StatisticalSense compares an original series x with a transformed series y
type StatisticalSense interface {
	Name() string
	Description() string
	Analyze(ctx context.Context, x, y []float64) (SenseResult, error)
}

// SenseEngine runs the comparison senses over one (original, transformed) pair
type SenseEngine struct {
	senses []StatisticalSense
}

// NewSenseEngine creates the engine with Pearson, Spearman and Kolmogorov-Smirnov senses
func NewSenseEngine() *SenseEngine {
	return &SenseEngine{
		senses: []StatisticalSense{
			NewPearsonSense(),
			NewSpearmanSense(),
			NewKolmogorovSmirnovSense(),
		},
	}
}

// AnalyzeAll runs all senses concurrently. Results keep the engine's sense order;
// the returned error joins every sense failure.
func (e *SenseEngine) AnalyzeAll(ctx context.Context, x, y []float64) ([]SenseResult, error) {
	results := make([]SenseResult, len(e.senses))
	errs := make([]error, len(e.senses))

	type resultWithIndex struct {
		result SenseResult
		err    error
		index  int
	}

	resultChan := make(chan resultWithIndex, len(e.senses))

	for i, sense := range e.senses {
		go func(sense StatisticalSense, idx int) {
			result, err := sense.Analyze(ctx, x, y)
			resultChan <- resultWithIndex{result: result, err: err, index: idx}
		}(sense, i)
	}

	for i := 0; i < len(e.senses); i++ {
		res := <-resultChan
		results[res.index] = res.result
		errs[res.index] = res.err
	}

	return results, errors.Join(errs...)
}

// checkPaired enforces the shared input policy of every sense
func checkPaired(name string, x, y []float64) error {
	if len(x) != len(y) {
		return lengthMismatch(len(x), len(y))
	}
	if len(x) < MinSampleSize {
		return insufficientData(name, len(x))
	}
	return nil
}

// classifySignal converts effect size to signal strength
func classifySignal(effectSize float64, senseType string) string {
	absEffect := math.Abs(effectSize)

	switch senseType {
	case "pearson", "spearman":
		if absEffect < 0.2 {
			return "weak"
		} else if absEffect < 0.5 {
			return "moderate"
		} else if absEffect < 0.8 {
			return "strong"
		}
		return "very_strong"

	case "kolmogorov_smirnov":
		if absEffect < 0.1 {
			return "weak"
		} else if absEffect < 0.3 {
			return "moderate"
		} else if absEffect < 0.6 {
			return "strong"
		}
		return "very_strong"

	default:
		if absEffect < 0.3 {
			return "weak"
		} else if absEffect < 0.6 {
			return "moderate"
		}
		return "strong"
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 1.0
	}
	return math.Max(0, math.Min(1, v))
}
