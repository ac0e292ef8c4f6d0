package testkit

import (
	"context"
	"fmt"
	"time"

	"fhtsuite/internal"
	"fhtsuite/internal/profiling"
)

// SuitePatterns are the patterns bundled by GenerateSuite
var SuitePatterns = []string{
	PatternFibonacci, PatternGoldenRatio, PatternPrimeModulo, PatternLogarithmic,
	PatternExponential, PatternPolynomial, PatternSinusoidal, PatternFractal,
	PatternQuantumInspired, PatternBiological,
}

// DefaultSuiteSizes are the dataset sizes bundled when none are given
var DefaultSuiteSizes = []int{1000, 10000, 50000}

// SuiteMetadata describes a generated bundle
type SuiteMetadata struct {
	Description string    `json:"description"`
	Seed        int64     `json:"generator_seed"`
	GeneratedAt time.Time `json:"generation_date"`
	Patterns    []string  `json:"patterns"`
	Sizes       []int     `json:"sizes"`
}

// Dataset is one generated series with its summary statistics
type Dataset struct {
	Pattern string    `json:"-"`
	Data    []float64 `json:"data"`
	Size    int       `json:"size"`
	Mean    float64   `json:"mean"`
	Std     float64   `json:"std"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
}

// Key is the bundle key of a dataset, e.g. "size_1000"
func (d Dataset) Key() string {
	return SizeKey(d.Size)
}

// SizeKey formats a dataset size as a bundle key
func SizeKey(size int) string {
	return fmt.Sprintf("size_%d", size)
}

// SuiteFailure is a (pattern, size) pair that could not be generated
type SuiteFailure struct {
	Pattern string `json:"pattern"`
	Size    int    `json:"size"`
	Error   string `json:"error"`
}

// Suite is a bundle of datasets keyed by pattern then SizeKey
type Suite struct {
	Metadata SuiteMetadata                 `json:"metadata"`
	Datasets map[string]map[string]Dataset `json:"datasets"`
	Failures []SuiteFailure                `json:"failures,omitempty"`
}

// Each visits every dataset in pattern then size order
func (s *Suite) Each(fn func(pattern string, d Dataset) error) error {
	for _, pattern := range s.Metadata.Patterns {
		for _, size := range s.Metadata.Sizes {
			d, ok := s.Datasets[pattern][SizeKey(size)]
			if !ok {
				continue
			}
			if err := fn(pattern, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateSuite builds a dataset bundle for patterns × sizes (SuitePatterns
// and DefaultSuiteSizes when empty). A pair that fails is recorded and skipped.
func (g *PatternGenerator) GenerateSuite(ctx context.Context, patterns []string, sizes []int, seed int64) (*Suite, error) {
	if len(patterns) == 0 {
		patterns = SuitePatterns
	}
	if len(sizes) == 0 {
		sizes = DefaultSuiteSizes
	}

	logger := internal.DefaultLogger.WithComponent("SuiteGenerator")
	profiler := profiling.NewDataProfiler()

	suite := &Suite{
		Metadata: SuiteMetadata{
			Description: "Synthetic validation datasets",
			Seed:        seed,
			GeneratedAt: time.Now().UTC(),
			Patterns:    patterns,
			Sizes:       sizes,
		},
		Datasets: make(map[string]map[string]Dataset, len(patterns)),
	}

	for _, pattern := range patterns {
		logger.Info("generating %s datasets", pattern)
		suite.Datasets[pattern] = make(map[string]Dataset, len(sizes))

		for _, size := range sizes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := g.Generate(ctx, pattern, size, seed)
			if err != nil {
				logger.Warn("%s (size %d): %v", pattern, size, err)
				suite.Failures = append(suite.Failures, SuiteFailure{Pattern: pattern, Size: size, Error: err.Error()})
				continue
			}

			c := profiler.ProfileColumn(data)
			suite.Datasets[pattern][SizeKey(size)] = Dataset{
				Pattern: pattern,
				Data:    data,
				Size:    len(data),
				Mean:    c.Mean,
				Std:     c.Std,
				Min:     c.Min,
				Max:     c.Max,
			}
			logger.Debug("%s (size %d): %d points", pattern, size, len(data))
		}
	}

	return suite, nil
}
