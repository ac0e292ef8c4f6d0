package validation

import (
	"context"
	"fmt"
	"time"

	"fhtsuite/adapters/stats/senses"
	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/profiling"
)

// Validator transforms a dataset, scores it, compares the transform with the
// input and appends the resulting record to its accumulator.
type Validator struct {
	engine   *fht.Engine
	senses   *senses.SenseEngine
	analyzer *profiling.DistributionAnalyzer
	acc      *Accumulator
}

// NewValidator binds a validator to an engine. A nil accumulator gets a fresh one.
func NewValidator(engine *fht.Engine, acc *Accumulator) *Validator {
	if acc == nil {
		acc = NewAccumulator()
	}
	return &Validator{
		engine:   engine,
		senses:   senses.NewSenseEngine(),
		analyzer: profiling.NewDistributionAnalyzer(),
		acc:      acc,
	}
}

// Accumulator returns the accumulator records are appended to
func (v *Validator) Accumulator() *Accumulator {
	return v.acc
}

// Validate runs the full pipeline over data. Datasets shorter than two values
// return core.ErrInsufficientData and nothing is appended.
func (v *Validator) Validate(ctx context.Context, data []float64) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) < senses.MinSampleSize {
		return nil, core.NewInsufficientDataError("validate", len(data), senses.MinSampleSize)
	}

	start := time.Now()

	transformed := v.engine.Transform(data)
	scores, err := v.engine.Score(data, transformed)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	// results follow the engine order: pearson, spearman, kolmogorov-smirnov
	results, err := v.senses.AnalyzeAll(ctx, data, transformed)
	if err != nil {
		return nil, fmt.Errorf("statistical tests: %w", err)
	}
	pearson, spearman, ks := results[0], results[1], results[2]

	elapsed := time.Since(start)

	characteristics, err := v.analyzer.Analyze(data)
	if err != nil {
		return nil, fmt.Errorf("characteristics: %w", err)
	}

	record := &Record{
		DatasetSize:    len(data),
		ProcessingTime: elapsed.Seconds(),
		Fingerprint:    core.DatasetFingerprint(data),
		Metrics:        scores,
		Tests: StatisticalTests{
			PearsonCorrelation:  pearson.Statistic,
			PearsonPValue:       pearson.PValue,
			SpearmanCorrelation: spearman.Statistic,
			SpearmanPValue:      spearman.PValue,
			KSStatistic:         ks.Statistic,
			KSPValue:            ks.PValue,
		},
		Characteristics: characteristics,
	}
	v.acc.Append(record)
	return record, nil
}
