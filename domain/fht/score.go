package fht

import (
	"math"

	"github.com/montanaflynn/stats"

	"fhtsuite/domain/core"
)

// Score composition constants. The weights sum to 1.
const (
	StabilityDivisor   = 4.0
	StabilityWeight    = 0.79
	BreakthroughWeight = 0.21
)

// ScoreSet holds the scores derived from an (original, transformed) pair
type ScoreSet struct {
	ConsciousnessScore float64 `json:"consciousness_score"` // [0,1]
	StabilityScore     float64 `json:"stability_score"`     // >= 0
	BreakthroughScore  float64 `json:"breakthrough_score"`  // >= 0
	Correlation        float64 `json:"correlation"`         // [-1,1], 0 when n <= 1
}

// Score derives stability, breakthrough, composite and correlation scores.
// An empty pair yields the zero ScoreSet.
func (e *Engine) Score(original, transformed []float64) (ScoreSet, error) {
	if len(original) != len(transformed) {
		return ScoreSet{}, core.NewLengthMismatchError(len(original), len(transformed))
	}
	n := len(original)
	if n == 0 {
		return ScoreSet{}, nil
	}

	sumAbs := 0.0
	for _, t := range transformed {
		sumAbs += math.Abs(t)
	}
	meanAbs := sumAbs / float64(n)

	stability := sumAbs / (float64(n) * StabilityDivisor)

	breakthrough := 0.0
	if meanAbs > 0 {
		sd, err := stats.StandardDeviationPopulation(transformed)
		if err == nil && !math.IsNaN(sd) {
			breakthrough = sd / meanAbs
		}
	}

	return ScoreSet{
		ConsciousnessScore: composite(stability, breakthrough),
		StabilityScore:     stability,
		BreakthroughScore:  breakthrough,
		Correlation:        Correlation(original, transformed),
	}, nil
}

func composite(stability, breakthrough float64) float64 {
	c := StabilityWeight*stability + BreakthroughWeight*breakthrough
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return math.Min(c, 1.0)
}

// Correlation is the Pearson coefficient of x and y, clamped to [-1,1].
// It is 0 for fewer than two points, mismatched lengths, or a zero-variance series.
func Correlation(x, y []float64) float64 {
	if len(x) <= 1 || len(x) != len(y) {
		return 0
	}
	// r is scale-invariant; scaling keeps the covariance sums finite for values near MaxFloat64
	sx, _ := core.ScaleByMaxAbs(x)
	sy, _ := core.ScaleByMaxAbs(y)
	r, err := stats.Pearson(sx, sy)
	if err != nil || math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}
