package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/testkit"
)

// mockGenerator is a testify mock of ports.DatasetGenerator
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, pattern string, size int, seed int64) ([]float64, error) {
	args := m.Called(ctx, pattern, size, seed)
	var data []float64
	if v := args.Get(0); v != nil {
		data = v.([]float64)
	}
	return data, args.Error(1)
}

func (m *mockGenerator) Patterns() []string {
	return m.Called().Get(0).([]string)
}

// rampGenerator yields 1..size scaled by the pattern name length
type rampGenerator struct{}

func (rampGenerator) Generate(_ context.Context, pattern string, size int, seed int64) ([]float64, error) {
	if pattern == "broken" {
		return nil, core.NewGenerationError(pattern, size, core.ErrUnknownPattern)
	}
	scale := float64(len(pattern)) + float64(seed%3)
	out := make([]float64, size)
	for i := range out {
		out[i] = float64(i+1) * scale
	}
	return out, nil
}

func (rampGenerator) Patterns() []string { return []string{"ramp", "broken"} }

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func newEngine(t *testing.T) *fht.Engine {
	t.Helper()
	engine, err := fht.NewEngine(fht.DefaultParameters())
	require.NoError(t, err)
	return engine
}

func TestValidator_ReferenceSequence(t *testing.T) {
	acc := NewAccumulator()
	v := NewValidator(newEngine(t), acc)

	record, err := v.Validate(context.Background(), ramp(10))
	require.NoError(t, err)

	assert.Equal(t, 10, record.DatasetSize)
	assert.GreaterOrEqual(t, record.ProcessingTime, 0.0)
	assert.InDelta(t, 0.9864219687, record.Metrics.ConsciousnessScore, 1e-6)
	assert.InDelta(t, 0.9913343347, record.Tests.PearsonCorrelation, 1e-6)
	assert.InDelta(t, 1.0, record.Tests.SpearmanCorrelation, 1e-12)
	assert.Less(t, record.Tests.SpearmanPValue, 1e-10)
	assert.InDelta(t, 0.3, record.Tests.KSStatistic, 1e-12)
	assert.InDelta(t, 0.78693, record.Tests.KSPValue, 1e-4)
	assert.InDelta(t, 5.5, record.Characteristics.Mean, 1e-12)
	assert.Equal(t, 1.0, record.Characteristics.Min)
	assert.Equal(t, 10.0, record.Characteristics.Max)
	assert.Equal(t, core.DatasetFingerprint(ramp(10)), record.Fingerprint)

	require.Equal(t, 1, acc.Len())
	assert.Same(t, record, acc.Records()[0])
}

func TestValidator_DefaultSweepMagnitudes(t *testing.T) {
	generator := testkit.NewPatternGenerator()
	v := NewValidator(newEngine(t), nil)

	for _, pattern := range []string{testkit.PatternFibonacci, testkit.PatternGoldenRatio} {
		t.Run(pattern, func(t *testing.T) {
			data, err := generator.Generate(context.Background(), pattern, 1000, 42)
			require.NoError(t, err)

			record, err := v.Validate(context.Background(), data)
			require.NoError(t, err)

			c := record.Characteristics
			for name, value := range map[string]float64{
				"mean": c.Mean, "std": c.Std, "max": c.Max, "skewness": c.Skewness, "kurtosis": c.Kurtosis,
			} {
				assert.False(t, math.IsInf(value, 0) || math.IsNaN(value), "%s = %v", name, value)
			}
			assert.Greater(t, c.Std, 1e207)

			// values near 1e208 overflow naive second moments; r on the growth curve is about 0.1335
			assert.InDelta(t, 0.1335, record.Tests.PearsonCorrelation, 1e-3)
			assert.Less(t, record.Tests.PearsonPValue, 1e-3)
			assert.InDelta(t, record.Tests.PearsonCorrelation, record.Metrics.Correlation, 1e-12)
			assert.InDelta(t, 1.0, record.Tests.SpearmanCorrelation, 1e-9)
		})
	}
}

func TestValidator_InsufficientData(t *testing.T) {
	acc := NewAccumulator()
	v := NewValidator(newEngine(t), acc)

	for _, data := range [][]float64{nil, {}, {42}} {
		record, err := v.Validate(context.Background(), data)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, core.ErrInsufficientData)
	}
	assert.Equal(t, 0, acc.Len())
}

func TestValidator_TwoElements(t *testing.T) {
	v := NewValidator(newEngine(t), nil)

	record, err := v.Validate(context.Background(), []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, record.DatasetSize)
	assert.Equal(t, 1.0, record.Tests.PearsonPValue)
	assert.Equal(t, 1, v.Accumulator().Len())
}

func TestValidator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewValidator(newEngine(t), nil)
	_, err := v.Validate(ctx, ramp(10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, v.Accumulator().Len())
}

func TestAccumulator_MergeKeepsOrder(t *testing.T) {
	a := NewAccumulator()
	b := NewAccumulator()
	a.Append(&Record{DatasetSize: 1})
	b.Append(&Record{DatasetSize: 2})
	b.Append(&Record{DatasetSize: 3})

	a.Merge(b)
	a.Merge(nil)
	a.Merge(a)

	records := a.Records()
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, i+1, r.DatasetSize)
	}
	assert.Equal(t, 2, b.Len())
}

func TestOrchestrator_IsolatesFailures(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, "good", 10, int64(7)).Return(ramp(10), nil)
	gen.On("Generate", mock.Anything, "good", 20, int64(7)).Return(ramp(20), nil)
	gen.On("Generate", mock.Anything, "bad", 10, int64(7)).
		Return(nil, core.NewGenerationError("bad", 10, errors.New("overflow")))
	gen.On("Generate", mock.Anything, "bad", 20, int64(7)).Return([]float64{1}, nil)

	o := NewOrchestrator(newEngine(t), gen, Options{Seed: 7})
	result, err := o.Run(context.Background(), []string{"good", "bad", "good"}, []int{20, 10, 20})
	require.NoError(t, err)
	gen.AssertExpectations(t)

	assert.Equal(t, []string{"good", "bad"}, result.Patterns)
	assert.Equal(t, []int{10, 20}, result.Sizes)
	assert.Equal(t, int64(7), result.Seed)
	assert.False(t, result.RunID == "")

	good := result.Results["good"]
	require.Len(t, good, 2)
	assert.Equal(t, 10, good[0].Size)
	assert.Equal(t, 20, good[1].Size)
	assert.Equal(t, 1, good[0].Sequence)
	assert.Equal(t, 2, good[1].Sequence)
	assert.Equal(t, "good", good[0].Pattern)

	bad, ok := result.Results["bad"]
	require.True(t, ok)
	assert.Empty(t, bad)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, Failure{Pattern: "bad", Size: 10, Stage: StageGeneration, Error: result.Failures[0].Error}, result.Failures[0])
	assert.Contains(t, result.Failures[0].Error, "overflow")
	assert.Equal(t, StageValidation, result.Failures[1].Stage)
	assert.Equal(t, 20, result.Failures[1].Size)

	assert.Equal(t, 2, result.Summary.TotalTests)
	assert.Equal(t, 2, result.Summary.TotalFailures)
	require.Len(t, result.Summary.Patterns, 2)
	assert.Equal(t, 2, result.Summary.Patterns[1].Failures)
	assert.Equal(t, 0, result.Summary.Patterns[1].Tests)
}

func TestOrchestrator_ParallelMatchesSequential(t *testing.T) {
	patterns := []string{"ramp", "broken", "longer_ramp"}
	sizes := []int{50, 5, 200, 1}

	seq, err := NewOrchestrator(newEngine(t), rampGenerator{}, Options{Seed: 4}).
		Run(context.Background(), patterns, sizes)
	require.NoError(t, err)

	par, err := NewOrchestrator(newEngine(t), rampGenerator{}, Options{Seed: 4, Workers: 4, MaxWeight: 120}).
		Run(context.Background(), patterns, sizes)
	require.NoError(t, err)

	strip := func(records []Record) []Record {
		out := make([]Record, len(records))
		for i, r := range records {
			r.ProcessingTime = 0
			out[i] = r
		}
		return out
	}

	assert.Equal(t, strip(seq.Records()), strip(par.Records()))
	assert.Equal(t, seq.Failures, par.Failures)

	// size 1 fails validation for both ramps, every size fails for broken
	assert.Len(t, seq.Failures, 2+len(sizes))
	assert.Len(t, seq.Records(), 6)
	for i, r := range seq.Records() {
		assert.Equal(t, i+1, r.Sequence)
	}
}

func TestOrchestrator_Defaults(t *testing.T) {
	gen := new(mockGenerator)
	for _, p := range DefaultPatterns {
		gen.On("Generate", mock.Anything, p, 8, int64(0)).Return(ramp(8), nil).Once()
	}

	result, err := NewOrchestrator(newEngine(t), gen, Options{}).Run(context.Background(), nil, []int{8})
	require.NoError(t, err)
	gen.AssertExpectations(t)

	assert.Equal(t, DefaultPatterns, result.Patterns)
	assert.Equal(t, 4, result.Summary.TotalTests)
	assert.InDelta(t, result.Summary.Patterns[0].MeanConsciousnessScore, result.Summary.MeanConsciousnessScore, 1e-12)
}

func TestOrchestrator_InvalidInput(t *testing.T) {
	o := NewOrchestrator(newEngine(t), rampGenerator{}, Options{})

	_, err := o.Run(context.Background(), []string{"ramp"}, []int{10, 0})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = o.Run(context.Background(), []string{" ", ""}, []int{10})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestOrchestrator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			o := NewOrchestrator(newEngine(t), rampGenerator{}, Options{Workers: workers})
			result, err := o.Run(ctx, []string{"ramp"}, []int{10, 20})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestSummarize(t *testing.T) {
	result := &SuiteResult{
		Patterns: []string{"a", "b"},
		Results: map[string][]Record{
			"a": {
				{Metrics: fht.ScoreSet{ConsciousnessScore: 0.2}, Tests: StatisticalTests{PearsonCorrelation: 0.5, KSStatistic: 0.1}, ProcessingTime: 1},
				{Metrics: fht.ScoreSet{ConsciousnessScore: 0.6}, Tests: StatisticalTests{PearsonCorrelation: 0.7, KSStatistic: 0.3}, ProcessingTime: 3},
			},
			"b": {},
		},
		Failures: []Failure{{Pattern: "b", Size: 5, Stage: StageGeneration, Error: "x"}},
	}

	s := Summarize(result)
	assert.Equal(t, 2, s.TotalTests)
	assert.Equal(t, 1, s.TotalFailures)
	assert.InDelta(t, 0.4, s.MeanConsciousnessScore, 1e-12)

	a := s.Patterns[0]
	assert.InDelta(t, 0.4, a.MeanConsciousnessScore, 1e-12)
	assert.InDelta(t, 0.2, a.StdConsciousnessScore, 1e-12)
	assert.InDelta(t, 0.6, a.MeanPearson, 1e-12)
	assert.InDelta(t, 0.2, a.MeanKSStatistic, 1e-12)
	assert.InDelta(t, 2.0, a.MeanProcessingTime, 1e-12)

	b := s.Patterns[1]
	assert.Equal(t, 0, b.Tests)
	assert.Equal(t, 1, b.Failures)
	assert.Equal(t, 0.0, b.MeanConsciousnessScore)
}

func TestNormalizeSizes(t *testing.T) {
	sizes, err := NormalizeSizes([]int{50, 10, 50, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 50}, sizes)

	_, err = NormalizeSizes(nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
