package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/ports"
)

// Pattern names
const (
	PatternFibonacci       = "fibonacci"
	PatternGoldenRatio     = "golden_ratio"
	PatternPrimeModulo     = "prime_modulo"
	PatternRandom          = "random"
	PatternLinear          = "linear"
	PatternLogarithmic     = "logarithmic"
	PatternExponential     = "exponential"
	PatternPolynomial      = "polynomial"
	PatternSinusoidal      = "sinusoidal"
	PatternFractal         = "fractal"
	PatternQuantumInspired = "quantum_inspired"
	PatternBiological      = "biological"
)

// PrimeModulus is the modulus applied to the prime_modulo pattern
const PrimeModulus = 100

type patternFunc func(size int, rng *rand.Rand) []float64

// PatternGenerator implements ports.DatasetGenerator over the synthetic
// patterns. Each Generate call draws from its own seeded stream.
type PatternGenerator struct {
	rng      ports.RNGPort
	patterns map[string]patternFunc
	order    []string
}

// NewPatternGenerator creates a generator using RNGAdapter streams
func NewPatternGenerator() *PatternGenerator {
	return NewPatternGeneratorWithRNG(NewRNGAdapter())
}

// NewPatternGeneratorWithRNG creates a generator over a caller-supplied RNG port
func NewPatternGeneratorWithRNG(rng ports.RNGPort) *PatternGenerator {
	g := &PatternGenerator{rng: rng, patterns: make(map[string]patternFunc)}
	g.register(PatternFibonacci, fibonacci)
	g.register(PatternGoldenRatio, goldenRatio)
	g.register(PatternPrimeModulo, primeModulo)
	g.register(PatternRandom, uniform)
	g.register(PatternLinear, func(size int, _ *rand.Rand) []float64 { return linspace(1, 100, size) })
	g.register(PatternLogarithmic, logarithmic)
	g.register(PatternExponential, exponential)
	g.register(PatternPolynomial, polynomial)
	g.register(PatternSinusoidal, sinusoidal)
	g.register(PatternFractal, fractal)
	g.register(PatternQuantumInspired, quantumInspired)
	g.register(PatternBiological, biological)
	return g
}

func (g *PatternGenerator) register(name string, fn patternFunc) {
	g.patterns[name] = fn
	g.order = append(g.order, name)
}

// Patterns lists the supported pattern names in registration order
func (g *PatternGenerator) Patterns() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Generate produces size values of pattern. Unknown patterns, non-positive
// sizes and values that overflow float64 fail with core.ErrGenerationFailed.
func (g *PatternGenerator) Generate(ctx context.Context, pattern string, size int, seed int64) ([]float64, error) {
	fn, ok := g.patterns[pattern]
	if !ok {
		return nil, core.NewGenerationError(pattern, size, fmt.Errorf("%w: supported patterns are %v", core.ErrUnknownPattern, g.order))
	}
	if size <= 0 {
		return nil, core.NewGenerationError(pattern, size, fmt.Errorf("%w: size must be positive", core.ErrInvalidInput))
	}

	rng, err := g.rng.SeededStream(ctx, pattern, seed)
	if err != nil {
		return nil, err
	}

	data := fn(size, rng)
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.NewGenerationError(pattern, size,
				fmt.Errorf("%w at index %d", core.ErrNonFiniteValue, i))
		}
	}
	return data, nil
}

// linspace returns n evenly spaced values over [start, stop]; n = 1 yields start
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

func fibonacci(size int, _ *rand.Rand) []float64 {
	out := make([]float64, size)
	a, b := 1.0, 1.0
	for i := range out {
		out[i] = a
		a, b = b, a+b
	}
	return out
}

func goldenRatio(size int, _ *rand.Rand) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = math.Pow(fht.Phi, float64(i))
	}
	return out
}

func primeModulo(size int, _ *rand.Rand) []float64 {
	primes := firstPrimes(size)
	out := make([]float64, size)
	for i, p := range primes {
		out[i] = float64(p % PrimeModulus)
	}
	return out
}

// firstPrimes sieves up to the Rosser bound n(ln n + ln ln n), which holds for n >= 6
func firstPrimes(n int) []int {
	limit := 15
	if n >= 6 {
		fn := float64(n)
		limit = int(fn*(math.Log(fn)+math.Log(math.Log(fn)))) + 1
	}

	composite := make([]bool, limit+1)
	primes := make([]int, 0, n)
	for i := 2; i <= limit && len(primes) < n; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

func uniform(size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = rng.Float64() * 100
	}
	return out
}

func logarithmic(size int, _ *rand.Rand) []float64 {
	out := linspace(0.1, 100, size)
	for i, x := range out {
		out[i] = math.Log(x)
	}
	return out
}

func exponential(size int, _ *rand.Rand) []float64 {
	out := linspace(0.1, 5, size)
	for i, x := range out {
		out[i] = math.Exp(x)
	}
	return out
}

// polynomial evaluates a cubic with coefficients drawn from [-2, 2) over [-5, 5]
func polynomial(size int, rng *rand.Rand) []float64 {
	const degree = 3
	coefficients := make([]float64, degree+1)
	for i := range coefficients {
		coefficients[i] = rng.Float64()*4 - 2
	}

	out := linspace(-5, 5, size)
	for i, x := range out {
		y := 0.0
		for k := degree; k >= 0; k-- {
			y = y*x + coefficients[k]
		}
		out[i] = y
	}
	return out
}

func sinusoidal(size int, _ *rand.Rand) []float64 {
	out := linspace(0, 4*math.Pi, size)
	for i, x := range out {
		out[i] = math.Sin(x)
	}
	return out
}

// fractal refines [1, φ] by inserting jittered midpoints until size values exist
func fractal(size int, rng *rand.Rand) []float64 {
	seq := []float64{1, fht.Phi}
	for len(seq) < size {
		next := make([]float64, 0, 2*len(seq)-1)
		for i := 0; i < len(seq)-1; i++ {
			mid := (seq[i]+seq[i+1])/2 + rng.NormFloat64()*0.1
			next = append(next, seq[i], mid)
		}
		seq = append(next, seq[len(seq)-1])
	}
	return seq[:size]
}

// quantumInspired mimics harmonic oscillator levels (k + ½)·2π with N(0, 0.1) noise
func quantumInspired(size int, rng *rand.Rand) []float64 {
	out := make([]float64, size)
	for k := range out {
		out[k] = (float64(k)+0.5)*2*math.Pi + rng.NormFloat64()*0.1
	}
	return out
}

// biological is logistic growth (r = 0.1, K = 100) from 1.0 with N(0, 0.05) noise
func biological(size int, rng *rand.Rand) []float64 {
	const (
		rate     = 0.1
		capacity = 100.0
	)
	out := make([]float64, size)
	out[0] = 1.0
	for i := 1; i < size; i++ {
		prev := out[i-1]
		out[i] = prev + rate*prev*(1-prev/capacity) + rng.NormFloat64()*0.05
	}
	return out
}
