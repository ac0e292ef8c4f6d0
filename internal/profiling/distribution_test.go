package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fhtsuite/domain/core"
)

func TestAnalyze_Basic(t *testing.T) {
	c, err := NewDistributionAnalyzer().Analyze([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)

	assert.InDelta(t, 5.5, c.Mean, 1e-12)
	assert.InDelta(t, 2.8722813232690143, c.Std, 1e-12) // population
	assert.Equal(t, 1.0, c.Min)
	assert.Equal(t, 10.0, c.Max)
	assert.Equal(t, 9.0, c.Range)
	assert.Equal(t, 5.5, c.Median)
	assert.InDelta(t, 0.0, c.Skewness, 1e-12)
	assert.InDelta(t, -1.2, c.Kurtosis, 1e-12)
}

func TestAnalyze_SingleValueAndConstant(t *testing.T) {
	c, err := NewDistributionAnalyzer().Analyze([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, c.Mean)
	assert.Equal(t, 0.0, c.Std)
	assert.Equal(t, 0.0, c.Range)

	c, err = NewDistributionAnalyzer().Analyze([]float64{3, 3, 3, 3, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Skewness)
	assert.Equal(t, 0.0, c.Kurtosis)
}

func TestAnalyze_LargeMagnitudesStayFinite(t *testing.T) {
	c, err := NewDistributionAnalyzer().Analyze([]float64{1e200, 2e200, 3e200, 4e200})
	require.NoError(t, err)

	assert.False(t, math.IsInf(c.Std, 0))
	assert.InEpsilon(t, math.Sqrt(1.25)*1e200, c.Std, 1e-12)
	assert.InEpsilon(t, 2.5e200, c.Mean, 1e-12)
	assert.InDelta(t, 0.0, c.Skewness, 1e-9)
	assert.InDelta(t, -1.2, c.Kurtosis, 1e-9)
}

func TestAnalyze_Empty(t *testing.T) {
	_, err := NewDistributionAnalyzer().Analyze(nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestProfileDataset(t *testing.T) {
	profiles := NewDataProfiler().ProfileDataset(map[string][]float64{
		"a": {1, 2, 3},
		"b": {},
	})

	require.Len(t, profiles, 2)
	assert.Equal(t, 2.0, profiles["a"].Mean)
	assert.Equal(t, Characteristics{}, profiles["b"])
}
