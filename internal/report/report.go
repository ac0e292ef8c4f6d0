package report

import (
	"fmt"
	"strings"

	"fhtsuite/internal/validation"
)

const width = 80

// Render formats a suite result as a plain-text validation report
func Render(result *validation.SuiteResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", width)

	b.WriteString(rule + "\n")
	b.WriteString("FRACTAL-HARMONIC TRANSFORM VALIDATION REPORT\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(&b, "Seed: %d\n", result.Seed)
	fmt.Fprintf(&b, "Parameters: alpha=%.6f beta=%.6f epsilon=%g\n\n",
		result.Parameters.Alpha, result.Parameters.Beta, result.Parameters.Epsilon)

	b.WriteString("EXECUTIVE SUMMARY\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "Total validation tests run: %d\n", result.Summary.TotalTests)
	fmt.Fprintf(&b, "Failed (pattern, size) pairs: %d\n", result.Summary.TotalFailures)
	fmt.Fprintf(&b, "Average consciousness score: %.4f\n\n", result.Summary.MeanConsciousnessScore)

	for _, ps := range result.Summary.Patterns {
		title := "PATTERN: " + strings.ToUpper(ps.Pattern)
		b.WriteString(title + "\n")
		b.WriteString(strings.Repeat("-", len(title)) + "\n")
		fmt.Fprintf(&b, "Average consciousness score: %.4f (std %.4f)\n", ps.MeanConsciousnessScore, ps.StdConsciousnessScore)
		fmt.Fprintf(&b, "Average Pearson correlation: %.4f\n", ps.MeanPearson)
		fmt.Fprintf(&b, "Average Spearman correlation: %.4f\n", ps.MeanSpearman)
		fmt.Fprintf(&b, "Average KS statistic: %.4f\n\n", ps.MeanKSStatistic)

		records := result.Results[ps.Pattern]
		if len(records) > 0 {
			b.WriteString("Detailed Results:\n")
			for _, r := range records {
				fmt.Fprintf(&b, "  Size %d:\n", r.Size)
				fmt.Fprintf(&b, "    Consciousness score: %.6f\n", r.Metrics.ConsciousnessScore)
				fmt.Fprintf(&b, "    Pearson correlation: %.4f (p=%.3g)\n", r.Tests.PearsonCorrelation, r.Tests.PearsonPValue)
				fmt.Fprintf(&b, "    Processing time: %.2fms\n", r.ProcessingTime*1000)
			}
			b.WriteString("\n")
		}

		for _, f := range result.Failures {
			if f.Pattern == ps.Pattern {
				fmt.Fprintf(&b, "  Size %d failed during %s: %s\n", f.Size, f.Stage, f.Error)
			}
		}
		if ps.Failures > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString(rule + "\n")
	b.WriteString("END OF REPORT\n")
	b.WriteString(rule + "\n")
	return b.String()
}
