package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal"
	"fhtsuite/ports"
)

// Options tunes an orchestrated run
type Options struct {
	Seed      int64 // passed unchanged to every Generate call
	Workers   int   // > 1 validates pairs concurrently
	MaxWeight int64 // semaphore capacity in data points; 0 means DefaultMaxWeight
}

// Orchestrator sweeps patterns × sizes through generation and validation.
// A failing pair is recorded and the sweep continues.
type Orchestrator struct {
	engine    *fht.Engine
	generator ports.DatasetGenerator
	opts      Options
	logger    *internal.Logger
}

// NewOrchestrator creates an orchestrator over engine and generator
func NewOrchestrator(engine *fht.Engine, generator ports.DatasetGenerator, opts Options) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		generator: generator,
		opts:      opts,
		logger:    internal.DefaultLogger.WithComponent("Orchestrator"),
	}
}

// Run validates every (pattern, size) pair. Empty patterns or sizes fall back
// to DefaultPatterns and DefaultSizes. Records are ordered by pattern (caller
// order) then size (ascending) whatever the worker count. The only errors are
// invalid input and context cancellation; in the latter case no result is returned.
func (o *Orchestrator) Run(ctx context.Context, patterns []string, sizes []int) (*SuiteResult, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	patterns = NormalizePatterns(patterns)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns to validate", core.ErrInvalidInput)
	}
	sizes, err := NormalizeSizes(sizes)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := &SuiteResult{
		RunID:      core.NewRunID(),
		Seed:       o.opts.Seed,
		Parameters: o.engine.Parameters(),
		Patterns:   patterns,
		Sizes:      sizes,
		Results:    make(map[string][]Record, len(patterns)),
		Failures:   []Failure{},
		StartedAt:  started.UTC(),
	}

	jobs := make([]pairJob, 0, len(patterns)*len(sizes))
	for _, pattern := range patterns {
		for _, size := range sizes {
			jobs = append(jobs, pairJob{index: len(jobs), pattern: pattern, size: size})
		}
	}

	o.logger.Info("run %s: %d patterns × %d sizes, seed %d, workers %d",
		result.RunID, len(patterns), len(sizes), o.opts.Seed, o.opts.Workers)

	var outcomes []jobOutcome
	if o.opts.Workers > 1 {
		outcomes, err = NewConcurrentExecutor(o.opts.Workers, o.opts.MaxWeight).Execute(ctx, jobs, o.runPair)
	} else {
		outcomes, err = o.runSequential(ctx, jobs)
	}
	if err != nil {
		o.logger.Warn("run %s aborted: %v", result.RunID, err)
		return nil, err
	}

	o.merge(result, jobs, outcomes)
	result.Summary = Summarize(result)
	result.Duration = time.Since(started).Seconds()

	o.logger.Info("run %s finished: %d records, %d failures in %.3fs",
		result.RunID, result.Summary.TotalTests, result.Summary.TotalFailures, result.Duration)
	return result, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, jobs []pairJob) ([]jobOutcome, error) {
	outcomes := make([]jobOutcome, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		acc := NewAccumulator()
		failure := o.runPair(ctx, job, acc)
		outcomes[job.index] = jobOutcome{acc: acc, failure: failure, duration: time.Since(start)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runPair generates and validates one dataset into acc
func (o *Orchestrator) runPair(ctx context.Context, job pairJob, acc *Accumulator) *Failure {
	data, err := o.generator.Generate(ctx, job.pattern, job.size, o.opts.Seed)
	if err != nil {
		return &Failure{Pattern: job.pattern, Size: job.size, Stage: StageGeneration, Error: err.Error()}
	}

	record, err := NewValidator(o.engine, acc).Validate(ctx, data)
	if err != nil {
		return &Failure{Pattern: job.pattern, Size: job.size, Stage: StageValidation, Error: err.Error()}
	}
	record.Pattern = job.pattern
	record.Size = job.size
	return nil
}

// merge folds job outcomes into result in job order and numbers the records
func (o *Orchestrator) merge(result *SuiteResult, jobs []pairJob, outcomes []jobOutcome) {
	combined := NewAccumulator()
	for _, pattern := range result.Patterns {
		result.Results[pattern] = []Record{}
	}

	current := ""
	for i, job := range jobs {
		if job.pattern != current {
			current = job.pattern
			o.logger.Info("validating pattern %s", current)
		}
		outcome := outcomes[i]
		if outcome.failure != nil {
			o.logger.Warn("%s/%d failed during %s: %s", job.pattern, job.size, outcome.failure.Stage, outcome.failure.Error)
			result.Failures = append(result.Failures, *outcome.failure)
			continue
		}
		o.logger.Debug("%s/%d validated in %v", job.pattern, job.size, outcome.duration)
		combined.Merge(outcome.acc)
	}

	for i, record := range combined.Records() {
		record.Sequence = i + 1
		result.Results[record.Pattern] = append(result.Results[record.Pattern], *record)
	}
}

// NormalizePatterns trims names and drops blanks and duplicates, keeping first occurrence order
func NormalizePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// NormalizeSizes de-duplicates and sorts sizes ascending; non-positive sizes are invalid
func NormalizeSizes(sizes []int) ([]int, error) {
	seen := make(map[int]bool, len(sizes))
	out := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: dataset size must be positive, got %d", core.ErrInvalidInput, s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no dataset sizes", core.ErrInvalidInput)
	}
	sort.Ints(out)
	return out, nil
}
