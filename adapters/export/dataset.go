package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"fhtsuite/internal/errors"
	"fhtsuite/internal/testkit"
)

// WriteDatasetBundleJSON writes a generated suite as one JSON document
func WriteDatasetBundleJSON(w io.Writer, suite *testkit.Suite) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(suite)
}

// LoadDataset reads a series from a .csv, .json or .xlsx file.
//
// CSV and XLSX files use the "value" column when a header names one, else the
// last column. JSON files are read at jsonPath (a gjson path, e.g.
// "datasets.fibonacci.size_1000.data"); an empty path means the document root.
// For XLSX files jsonPath names the sheet; empty means the first sheet.
func LoadDataset(path, jsonPath string) ([]float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadXLSX(path, jsonPath)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read dataset %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(raw)
	case ".json":
		return ParseJSON(raw, jsonPath)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported dataset format %q (want .csv, .json or .xlsx)", filepath.Ext(path)))
	}
}

// ParseJSON extracts a numeric array from a JSON document at a gjson path
func ParseJSON(raw []byte, jsonPath string) ([]float64, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.InvalidInput("dataset is not valid JSON")
	}
	if jsonPath == "" {
		jsonPath = "@this"
	}

	result := gjson.GetBytes(raw, jsonPath)
	if !result.Exists() {
		return nil, errors.InvalidInput(fmt.Sprintf("data path '%s' not found", jsonPath))
	}
	if !result.IsArray() {
		return nil, errors.InvalidInput(fmt.Sprintf("data path '%s' is not an array", jsonPath))
	}

	items := result.Array()
	data := make([]float64, len(items))
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, errors.InvalidInput(fmt.Sprintf("value %d (%s) is not a number", i, item.Raw))
		}
		data[i] = item.Float()
	}
	if err := checkFinite(data); err != nil {
		return nil, err
	}
	return data, nil
}

func parseCSV(raw []byte) ([]float64, error) {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("malformed CSV: %v", err))
	}
	return parseRows(rows)
}

func loadXLSX(path, sheet string) ([]float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to open workbook %s", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetList()[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read sheet %q: %v", sheet, err))
	}
	return parseRows(rows)
}

// parseRows reads one numeric column from tabular rows; blank cells are skipped
func parseRows(rows [][]string) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}

	if len(rows[0]) == 0 {
		return nil, errors.InvalidInput("first row is empty")
	}
	column := len(rows[0]) - 1
	if _, err := strconv.ParseFloat(rows[0][column], 64); err != nil {
		for i, name := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(name), "value") {
				column = i
			}
		}
		rows = rows[1:]
	}

	data := make([]float64, 0, len(rows))
	for line, row := range rows {
		if column >= len(row) {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d has no column %d", line+1, column))
		}
		cell := strings.TrimSpace(row[column])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: %q is not a number", line+1, cell))
		}
		data = append(data, v)
	}
	if err := checkFinite(data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkFinite(data []float64) error {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.InvalidInput(fmt.Sprintf("value %d is not finite", i))
		}
	}
	return nil
}
