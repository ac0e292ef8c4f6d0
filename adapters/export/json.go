// Package export writes validation results and datasets to JSON, CSV and XLSX,
// and loads datasets back from CSV or JSON files.
package export

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"fhtsuite/domain/core"
	"fhtsuite/domain/fht"
	"fhtsuite/internal/errors"
	"fhtsuite/internal/profiling"
	"fhtsuite/internal/validation"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Float marshals like float64 except that NaN and ±Inf become null
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON reads null back as NaN
func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type metricsDocument struct {
	ConsciousnessScore Float `json:"consciousness_score"`
	StabilityScore     Float `json:"stability_score"`
	BreakthroughScore  Float `json:"breakthrough_score"`
	Correlation        Float `json:"correlation"`
}

type testsDocument struct {
	PearsonCorrelation  Float `json:"pearson_correlation"`
	PearsonPValue       Float `json:"pearson_p_value"`
	SpearmanCorrelation Float `json:"spearman_correlation"`
	SpearmanPValue      Float `json:"spearman_p_value"`
	KSStatistic         Float `json:"ks_statistic"`
	KSPValue            Float `json:"ks_p_value"`
}

type characteristicsDocument struct {
	Mean     Float `json:"mean"`
	Std      Float `json:"std"`
	Min      Float `json:"min"`
	Max      Float `json:"max"`
	Range    Float `json:"range"`
	Median   Float `json:"median"`
	Skewness Float `json:"skewness"`
	Kurtosis Float `json:"kurtosis"`
}

type recordDocument struct {
	Sequence        int                     `json:"sequence"`
	Pattern         string                  `json:"pattern,omitempty"`
	Size            int                     `json:"size,omitempty"`
	DatasetSize     int                     `json:"dataset_size"`
	ProcessingTime  Float                   `json:"processing_time"`
	Fingerprint     string                  `json:"dataset_fingerprint"`
	Metrics         metricsDocument         `json:"metrics"`
	Tests           testsDocument           `json:"statistical_tests"`
	Characteristics characteristicsDocument `json:"data_characteristics"`
}

type resultDocument struct {
	RunID      string                      `json:"run_id"`
	Seed       int64                       `json:"seed"`
	Parameters map[string]Float            `json:"parameters"`
	Patterns   []string                    `json:"patterns"`
	Sizes      []int                       `json:"sizes"`
	StartedAt  string                      `json:"started_at"`
	Duration   Float                       `json:"duration"`
	Results    map[string][]recordDocument `json:"results"`
	Failures   []validation.Failure        `json:"failures"`
	Summary    validation.Summary          `json:"summary"`
}

func toRecordDocument(r validation.Record) recordDocument {
	return recordDocument{
		Sequence:       r.Sequence,
		Pattern:        r.Pattern,
		Size:           r.Size,
		DatasetSize:    r.DatasetSize,
		ProcessingTime: Float(r.ProcessingTime),
		Fingerprint:    r.Fingerprint.String(),
		Metrics: metricsDocument{
			ConsciousnessScore: Float(r.Metrics.ConsciousnessScore),
			StabilityScore:     Float(r.Metrics.StabilityScore),
			BreakthroughScore:  Float(r.Metrics.BreakthroughScore),
			Correlation:        Float(r.Metrics.Correlation),
		},
		Tests: testsDocument{
			PearsonCorrelation:  Float(r.Tests.PearsonCorrelation),
			PearsonPValue:       Float(r.Tests.PearsonPValue),
			SpearmanCorrelation: Float(r.Tests.SpearmanCorrelation),
			SpearmanPValue:      Float(r.Tests.SpearmanPValue),
			KSStatistic:         Float(r.Tests.KSStatistic),
			KSPValue:            Float(r.Tests.KSPValue),
		},
		Characteristics: toCharacteristicsDocument(r.Characteristics),
	}
}

// WriteRecordsJSON writes records as an indented JSON array
func WriteRecordsJSON(w io.Writer, records []validation.Record) error {
	docs := make([]recordDocument, len(records))
	for i, r := range records {
		docs[i] = toRecordDocument(r)
	}
	return encode(w, docs)
}

func toCharacteristicsDocument(c profiling.Characteristics) characteristicsDocument {
	return characteristicsDocument{
		Mean: Float(c.Mean), Std: Float(c.Std), Min: Float(c.Min), Max: Float(c.Max),
		Range: Float(c.Range), Median: Float(c.Median), Skewness: Float(c.Skewness), Kurtosis: Float(c.Kurtosis),
	}
}

func (d characteristicsDocument) characteristics() profiling.Characteristics {
	return profiling.Characteristics{
		Mean: float64(d.Mean), Std: float64(d.Std), Min: float64(d.Min), Max: float64(d.Max),
		Range: float64(d.Range), Median: float64(d.Median), Skewness: float64(d.Skewness), Kurtosis: float64(d.Kurtosis),
	}
}

// MarshalCharacteristics encodes c as compact JSON with non-finite values as null
func MarshalCharacteristics(c profiling.Characteristics) ([]byte, error) {
	return json.Marshal(toCharacteristicsDocument(c))
}

// UnmarshalCharacteristics reverses MarshalCharacteristics; null becomes NaN
func UnmarshalCharacteristics(raw []byte) (profiling.Characteristics, error) {
	var d characteristicsDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return profiling.Characteristics{}, err
	}
	return d.characteristics(), nil
}

// WriteRecordJSON writes one record as an indented JSON object
func WriteRecordJSON(w io.Writer, record validation.Record) error {
	return encode(w, toRecordDocument(record))
}

// WriteResultJSON writes a complete suite result
func WriteResultJSON(w io.Writer, result *validation.SuiteResult) error {
	doc := resultDocument{
		RunID: result.RunID.String(),
		Seed:  result.Seed,
		Parameters: map[string]Float{
			"alpha":   Float(result.Parameters.Alpha),
			"beta":    Float(result.Parameters.Beta),
			"epsilon": Float(result.Parameters.Epsilon),
		},
		Patterns:  result.Patterns,
		Sizes:     result.Sizes,
		StartedAt: result.StartedAt.Format(timestampLayout),
		Duration:  Float(result.Duration),
		Results:   make(map[string][]recordDocument, len(result.Results)),
		Failures:  result.Failures,
		Summary:   result.Summary,
	}
	for pattern, records := range result.Results {
		docs := make([]recordDocument, len(records))
		for i, r := range records {
			docs[i] = toRecordDocument(r)
		}
		doc.Results[pattern] = docs
	}
	return encode(w, doc)
}

// ReadResultJSON reads a result written by WriteResultJSON
func ReadResultJSON(r io.Reader) (*validation.SuiteResult, error) {
	var doc resultDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.InvalidInput("invalid result document: " + err.Error())
	}
	runID, err := core.ParseRunID(doc.RunID)
	if err != nil {
		return nil, err
	}
	startedAt, err := time.Parse(timestampLayout, doc.StartedAt)
	if err != nil {
		return nil, errors.InvalidInput("invalid started_at: " + err.Error())
	}

	result := &validation.SuiteResult{
		RunID: runID,
		Seed:  doc.Seed,
		Parameters: fht.Parameters{
			Alpha:   float64(doc.Parameters["alpha"]),
			Beta:    float64(doc.Parameters["beta"]),
			Epsilon: float64(doc.Parameters["epsilon"]),
		},
		Patterns:  doc.Patterns,
		Sizes:     doc.Sizes,
		Results:   make(map[string][]validation.Record, len(doc.Results)),
		Failures:  doc.Failures,
		Summary:   doc.Summary,
		StartedAt: startedAt,
		Duration:  float64(doc.Duration),
	}
	for pattern, docs := range doc.Results {
		records := make([]validation.Record, len(docs))
		for i, d := range docs {
			records[i] = fromRecordDocument(d)
		}
		result.Results[pattern] = records
	}
	return result, nil
}

func fromRecordDocument(d recordDocument) validation.Record {
	return validation.Record{
		Pattern:        d.Pattern,
		Size:           d.Size,
		Sequence:       d.Sequence,
		DatasetSize:    d.DatasetSize,
		ProcessingTime: float64(d.ProcessingTime),
		Fingerprint:    core.Hash(d.Fingerprint),
		Metrics: fht.ScoreSet{
			ConsciousnessScore: float64(d.Metrics.ConsciousnessScore),
			StabilityScore:     float64(d.Metrics.StabilityScore),
			BreakthroughScore:  float64(d.Metrics.BreakthroughScore),
			Correlation:        float64(d.Metrics.Correlation),
		},
		Tests: validation.StatisticalTests{
			PearsonCorrelation:  float64(d.Tests.PearsonCorrelation),
			PearsonPValue:       float64(d.Tests.PearsonPValue),
			SpearmanCorrelation: float64(d.Tests.SpearmanCorrelation),
			SpearmanPValue:      float64(d.Tests.SpearmanPValue),
			KSStatistic:         float64(d.Tests.KSStatistic),
			KSPValue:            float64(d.Tests.KSPValue),
		},
		Characteristics: d.Characteristics.characteristics(),
	}
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
