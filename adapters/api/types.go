package api

import (
	"encoding/json"

	"fhtsuite/app"
	"fhtsuite/domain/fht"
)

// ParametersRequest overrides individual transform parameters; omitted
// fields keep their defaults
type ParametersRequest struct {
	Alpha   *float64 `json:"alpha"`
	Beta    *float64 `json:"beta"`
	Epsilon *float64 `json:"epsilon"`
}

// Resolve returns nil when p is nil so the service engine is used
func (p *ParametersRequest) Resolve() *fht.Parameters {
	if p == nil {
		return nil
	}
	params := fht.DefaultParameters()
	if p.Alpha != nil {
		params.Alpha = *p.Alpha
	}
	if p.Beta != nil {
		params.Beta = *p.Beta
	}
	if p.Epsilon != nil {
		params.Epsilon = *p.Epsilon
	}
	return &params
}

// TransformRequest is the body of POST /api/transform
type TransformRequest struct {
	Data          []float64          `json:"data" binding:"required"`
	Amplification float64            `json:"amplification"` // 0 means 1.0
	Parameters    *ParametersRequest `json:"parameters,omitempty"`
}

// TransformResponse carries the transformed series
type TransformResponse struct {
	Transformed []float64      `json:"transformed"`
	Parameters  fht.Parameters `json:"parameters"`
}

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	Data       []float64          `json:"data" binding:"required"`
	Parameters *ParametersRequest `json:"parameters,omitempty"`
}

// ScoreResponse carries the transform and its scores
type ScoreResponse struct {
	Transformed []float64    `json:"transformed"`
	Metrics     fht.ScoreSet `json:"metrics"`
}

// SuiteRequest is the body of POST /api/suite
type SuiteRequest struct {
	Patterns   []string           `json:"patterns"`
	Sizes      []int              `json:"sizes"`
	Seed       *int64             `json:"seed"` // default 42
	Workers    int                `json:"workers"`
	MaxWeight  int64              `json:"max_weight"`
	Parameters *ParametersRequest `json:"parameters,omitempty"`
	Persist    bool               `json:"persist"`
	Export     bool               `json:"export"`
}

// DefaultSeed is used when a suite request carries no seed
const DefaultSeed int64 = 42

func (r SuiteRequest) toApp() app.SuiteRequest {
	seed := DefaultSeed
	if r.Seed != nil {
		seed = *r.Seed
	}
	return app.SuiteRequest{
		Patterns:   r.Patterns,
		Sizes:      r.Sizes,
		Seed:       seed,
		Workers:    r.Workers,
		MaxWeight:  r.MaxWeight,
		Parameters: r.Parameters.Resolve(),
		Persist:    r.Persist,
		Export:     r.Export,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SuiteResponse is the body of POST /api/suite; Result uses the export
// document layout so non-finite statistics encode as null
type SuiteResponse struct {
	Result  json.RawMessage `json:"result"`
	Report  string          `json:"report"`
	Files   []string        `json:"files,omitempty"`
	Warning string          `json:"warning,omitempty"`
}
