package testkit

import (
	"context"
	"math/rand"
)

// RNGAdapter implements ports.RNGPort with named, seed-derived streams
type RNGAdapter struct{}

// NewRNGAdapter creates an RNG adapter
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream returns a fresh generator for name. The same (name, seed)
// always yields the same stream; different names get unrelated streams.
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
