// Package fht implements the fractal-harmonic transform and the scores derived from it.
package fht

import (
	"math"

	"fhtsuite/domain/core"
)

// Phi is the golden ratio (1+√5)/2, the default scale and exponent.
var Phi = (1 + math.Sqrt(5)) / 2

const (
	DefaultBeta    = 1.0
	DefaultEpsilon = 1e-12
)

// Parameters configures one Engine. Immutable after construction.
type Parameters struct {
	Alpha   float64 `json:"alpha" yaml:"alpha"`     // Scale and exponent
	Beta    float64 `json:"beta" yaml:"beta"`       // Offset, also the fallback for degenerate values
	Epsilon float64 `json:"epsilon" yaml:"epsilon"` // Floor and log stabilizer, > 0
}

// DefaultParameters returns α=φ, β=1, ε=1e-12.
func DefaultParameters() Parameters {
	return Parameters{
		Alpha:   Phi,
		Beta:    DefaultBeta,
		Epsilon: DefaultEpsilon,
	}
}

// Validate rejects parameters that would invalidate every transform.
func (p Parameters) Validate() error {
	if !isFinite(p.Alpha) {
		return core.NewConfigError("alpha", "must be finite")
	}
	if !isFinite(p.Beta) {
		return core.NewConfigError("beta", "must be finite")
	}
	if !isFinite(p.Epsilon) || p.Epsilon <= 0 {
		return core.NewConfigError("epsilon", "must be finite and > 0")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
