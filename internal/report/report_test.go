package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fhtsuite/domain/fht"
	"fhtsuite/internal/validation"
)

func TestRender(t *testing.T) {
	result := &validation.SuiteResult{
		RunID:      "run-1",
		Seed:       42,
		Parameters: fht.DefaultParameters(),
		Patterns:   []string{"fibonacci", "random"},
		Results: map[string][]validation.Record{
			"fibonacci": {{Pattern: "fibonacci", Size: 1000, Metrics: fht.ScoreSet{ConsciousnessScore: 0.75}, ProcessingTime: 0.0015}},
			"random":    {},
		},
		Failures: []validation.Failure{{Pattern: "random", Size: 1, Stage: validation.StageValidation, Error: "insufficient data"}},
	}
	result.Summary = validation.Summarize(result)

	out := Render(result)

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 80)))
	assert.Contains(t, out, "Total validation tests run: 1")
	assert.Contains(t, out, "Average consciousness score: 0.7500")
	assert.Contains(t, out, "PATTERN: FIBONACCI\n------------------\n")
	assert.Contains(t, out, "  Size 1000:\n    Consciousness score: 0.750000")
	assert.Contains(t, out, "Processing time: 1.50ms")
	assert.Contains(t, out, "Size 1 failed during validation: insufficient data")
	assert.True(t, strings.HasSuffix(out, "END OF REPORT\n"+strings.Repeat("=", 80)+"\n"))
}
