package validation

import (
	"time"

	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/profiling"
)

// DefaultPatterns is the pattern set validated when the caller names none
var DefaultPatterns = []string{"fibonacci", "golden_ratio", "prime_modulo", "random"}

// DefaultSizes mirrors the reference validation sweep
var DefaultSizes = []int{1000, 10000, 50000}

// StatisticalTests holds the comparisons between a dataset and its transform
type StatisticalTests struct {
	PearsonCorrelation  float64 `json:"pearson_correlation"`
	PearsonPValue       float64 `json:"pearson_p_value"`
	SpearmanCorrelation float64 `json:"spearman_correlation"`
	SpearmanPValue      float64 `json:"spearman_p_value"`
	KSStatistic         float64 `json:"ks_statistic"`
	KSPValue            float64 `json:"ks_p_value"`
}

// Record is the outcome of validating one dataset
type Record struct {
	Pattern         string                    `json:"pattern,omitempty"`
	Size            int                       `json:"size,omitempty"`
	Sequence        int                       `json:"sequence"`
	DatasetSize     int                       `json:"dataset_size"`
	ProcessingTime  float64                   `json:"processing_time"` // seconds
	Fingerprint     core.Hash                 `json:"dataset_fingerprint"`
	Metrics         fht.ScoreSet              `json:"metrics"`
	Tests           StatisticalTests          `json:"statistical_tests"`
	Characteristics profiling.Characteristics `json:"data_characteristics"`
}

// Failure stages
const (
	StageGeneration = "generation"
	StageValidation = "validation"
)

// Failure records a (pattern, size) pair that produced no record
type Failure struct {
	Pattern string `json:"pattern"`
	Size    int    `json:"size"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
}

// PatternSummary aggregates the records of one pattern
type PatternSummary struct {
	Pattern                string  `json:"pattern"`
	Tests                  int     `json:"tests"`
	Failures               int     `json:"failures"`
	MeanConsciousnessScore float64 `json:"mean_consciousness_score"`
	StdConsciousnessScore  float64 `json:"std_consciousness_score"`
	MeanPearson            float64 `json:"mean_pearson_correlation"`
	MeanSpearman           float64 `json:"mean_spearman_correlation"`
	MeanKSStatistic        float64 `json:"mean_ks_statistic"`
	MeanProcessingTime     float64 `json:"mean_processing_time"`
}

// Summary aggregates a whole suite run
type Summary struct {
	TotalTests             int              `json:"total_tests"`
	TotalFailures          int              `json:"total_failures"`
	MeanConsciousnessScore float64          `json:"mean_consciousness_score"`
	Patterns               []PatternSummary `json:"patterns"`
}

// SuiteResult is the output of one orchestrated run. Results holds one record
// per successfully validated size, ascending, keyed by pattern; Patterns keeps
// the iteration order.
type SuiteResult struct {
	RunID      core.RunID          `json:"run_id"`
	Seed       int64               `json:"seed"`
	Parameters fht.Parameters      `json:"parameters"`
	Patterns   []string            `json:"patterns"`
	Sizes      []int               `json:"sizes"`
	Results    map[string][]Record `json:"results"`
	Failures   []Failure           `json:"failures"`
	Summary    Summary             `json:"summary"`
	StartedAt  time.Time           `json:"started_at"`
	Duration   float64             `json:"duration"` // seconds
}

// Records flattens the result in (pattern, size) order
func (r *SuiteResult) Records() []Record {
	var out []Record
	for _, pattern := range r.Patterns {
		out = append(out, r.Results[pattern]...)
	}
	return out
}

// RunSummary is the listing view of a stored run
type RunSummary struct {
	RunID        core.RunID `json:"run_id" db:"run_id"`
	Seed         int64      `json:"seed" db:"seed"`
	RecordCount  int        `json:"record_count" db:"record_count"`
	FailureCount int        `json:"failure_count" db:"failure_count"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
