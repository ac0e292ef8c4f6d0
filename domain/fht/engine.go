package fht

import (
	"math"
)

// Engine applies the transform and scores its output. Safe for concurrent use.
type Engine struct {
	params Parameters
}

// NewEngine validates params and returns an engine bound to them.
func NewEngine(params Parameters) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

// MustNewEngine is NewEngine for parameters known to be valid; it panics otherwise.
func MustNewEngine(params Parameters) *Engine {
	e, err := NewEngine(params)
	if err != nil {
		panic(err)
	}
	return e
}

// Parameters returns a copy of the engine's configuration
func (e *Engine) Parameters() Parameters {
	return e.params
}

// Transform applies the transform with amplification 1.0.
func (e *Engine) Transform(data []float64) []float64 {
	return e.TransformAmplified(data, 1.0)
}

// TransformAmplified maps each value x to
//
//	α · |ln(max(x,ε)+ε)|^α · sign(ln(max(x,ε)+ε)) · amplification + β
//
// Non-finite results are replaced by β, so every output element is finite.
func (e *Engine) TransformAmplified(data []float64, amplification float64) []float64 {
	out := make([]float64, len(data))
	for i, x := range data {
		out[i] = e.transformValue(x, amplification)
	}
	return out
}

func (e *Engine) transformValue(x, amplification float64) float64 {
	p := e.params

	// math.Max propagates NaN; a NaN input is floored like any other sub-epsilon value
	v := x
	if math.IsNaN(v) || v < p.Epsilon {
		v = p.Epsilon
	}

	logTerm := math.Log(v + p.Epsilon)
	phiPower := math.Pow(math.Abs(logTerm), p.Alpha)
	raw := p.Alpha*phiPower*sign(logTerm)*amplification + p.Beta

	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return p.Beta
	}
	return raw
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
