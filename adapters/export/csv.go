package export

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"fhtsuite/internal/errors"
	"fhtsuite/internal/testkit"
	"fhtsuite/internal/validation"
)

// RecordColumns is the header of WriteRecordsCSV and of every pattern sheet
var RecordColumns = []string{
	"sequence", "pattern", "size", "dataset_size", "processing_time",
	"consciousness_score", "stability_score", "breakthrough_score", "correlation",
	"pearson_correlation", "pearson_p_value", "spearman_correlation", "spearman_p_value",
	"ks_statistic", "ks_p_value", "mean", "std", "min", "max", "range", "dataset_fingerprint",
}

// recordRow flattens a record in RecordColumns order
func recordRow(r validation.Record) []interface{} {
	c := r.Characteristics
	return []interface{}{
		r.Sequence, r.Pattern, r.Size, r.DatasetSize, r.ProcessingTime,
		r.Metrics.ConsciousnessScore, r.Metrics.StabilityScore, r.Metrics.BreakthroughScore, r.Metrics.Correlation,
		r.Tests.PearsonCorrelation, r.Tests.PearsonPValue, r.Tests.SpearmanCorrelation, r.Tests.SpearmanPValue,
		r.Tests.KSStatistic, r.Tests.KSPValue, c.Mean, c.Std, c.Min, c.Max, c.Range, r.Fingerprint.String(),
	}
}

// WriteRecordsCSV writes one row per record; non-finite values are left empty
func WriteRecordsCSV(w io.Writer, records []validation.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordColumns); err != nil {
		return err
	}
	for _, r := range records {
		values := recordRow(r)
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatCell(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return fToStr(x)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return ""
	}
}

func fToStr(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return ""
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// WriteDatasetsCSV writes every dataset of suite to dir as <pattern>_size_<n>.csv
// with index,value columns, returning the written paths in suite order.
func WriteDatasetsCSV(dir string, suite *testkit.Suite) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.ExportError("failed to create dataset directory", err)
	}

	var paths []string
	err := suite.Each(func(pattern string, d testkit.Dataset) error {
		path := filepath.Join(dir, pattern+"_"+d.Key()+".csv")
		if err := writeSeriesCSV(path, d.Data); err != nil {
			return errors.ExportError("failed to write "+path, err)
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func writeSeriesCSV(path string, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"index", "value"}); err != nil {
		return err
	}
	for i, v := range data {
		if err := w.Write([]string{strconv.Itoa(i), fToStr(v)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
