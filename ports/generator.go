package ports

import (
	"context"
)

// DatasetGenerator produces synthetic datasets by pattern name.
// Stochastic patterns must be reproducible: the same (pattern, size, seed)
// always yields the same values, independent of call order or goroutine.
type DatasetGenerator interface {
	Generate(ctx context.Context, pattern string, size int, seed int64) ([]float64, error)
	Patterns() []string
}
