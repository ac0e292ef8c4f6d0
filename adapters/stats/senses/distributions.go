package senses

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatisticalDistributions provides the reference distributions used for p-values
type StatisticalDistributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// TTestPValue computes the two-tailed p-value of t under Student's t-distribution
func (sd *StatisticalDistributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	if math.IsInf(tStatistic, 0) {
		return 0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return clampUnit(2 * tDist.Survival(math.Abs(tStatistic)))
}

// CorrelationPValue computes the two-sided p-value for a correlation coefficient
// using t = r·sqrt((n-2)/(1-r²)) with n-2 degrees of freedom.
func (sd *StatisticalDistributions) CorrelationPValue(correlation float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1.0
	}
	if math.Abs(correlation) >= 1 {
		return 0
	}

	df := sampleSize - 2
	tStatistic := correlation * math.Sqrt(float64(df)/(1-correlation*correlation))

	return sd.TTestPValue(tStatistic, df)
}

// exactKSMaxN bounds the sample size that takes the exact path
const exactKSMaxN = 10000

// KolmogorovPValue returns the two-sample KS p-value for statistic d with
// sample sizes n and m. Equal sizes up to exactKSMaxN use the exact null
// distribution; anything else falls back to the asymptotic series with
// Stephens' small-sample correction.
func (sd *StatisticalDistributions) KolmogorovPValue(d float64, n, m int) float64 {
	if n <= 0 || m <= 0 {
		return 1.0
	}
	if n == m && n <= exactKSMaxN {
		return kolmogorovExactEqual(d, n)
	}
	en := math.Sqrt(float64(n) * float64(m) / float64(n+m))
	lambda := (en + 0.12 + 0.11/en) * d
	return kolmogorovSurvival(lambda)
}

// kolmogorovExactEqual returns P(D >= d) for two samples of size n. D only
// takes values h/n, so d is snapped to the nearest lattice step first. The
// probability of a lattice path leaving the band |i-j| < h is accumulated by
// reflection, one term per multiple of h.
func kolmogorovExactEqual(d float64, n int) float64 {
	h := int(math.Round(d * float64(n)))
	if h <= 0 {
		return 1.0
	}
	if h > n {
		return 0.0
	}

	p := 0.0
	for k := n / h; k >= 0; k-- {
		term := 1.0
		for j := 0; j < h; j++ {
			term = term * float64(n-k*h-j) / float64(n+k*h+j+1)
		}
		p = term * (1 - p)
	}
	return clampUnit(2 * p)
}

// kolmogorovSurvival evaluates Q(λ) = 2 Σ (-1)^(j-1) exp(-2 j² λ²).
// The alternating series is truncated once terms stop contributing.
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1.0
	}

	a2 := -2.0 * lambda * lambda
	fac := 2.0
	sum := 0.0
	prevTerm := 0.0
	for j := 1; j <= 100; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= 0.001*prevTerm || math.Abs(term) <= 1e-8*sum {
			return clampUnit(sum)
		}
		fac = -fac
		prevTerm = math.Abs(term)
	}

	// No convergence only happens for λ near 0, where Q is 1
	return 1.0
}
