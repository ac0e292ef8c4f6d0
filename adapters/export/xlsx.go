package export

import (
	"github.com/xuri/excelize/v2"

	"fhtsuite/internal/errors"
	"fhtsuite/internal/validation"
)

// SummarySheet is the first sheet of a results workbook
const SummarySheet = "Summary"

var summaryColumns = []string{
	"pattern", "tests", "failures", "mean_consciousness_score", "std_consciousness_score",
	"mean_pearson_correlation", "mean_spearman_correlation", "mean_ks_statistic", "mean_processing_time",
}

// WriteWorkbook saves result as an XLSX file with a summary sheet and one sheet per pattern
func WriteWorkbook(path string, result *validation.SuiteResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return errors.ExportError("failed to create summary sheet", err)
	}
	if err := writeSummarySheet(f, result); err != nil {
		return errors.ExportError("failed to write summary sheet", err)
	}

	for _, pattern := range result.Patterns {
		sheet := sheetName(pattern)
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.ExportError("failed to create sheet "+sheet, err)
		}
		if err := writeRows(f, sheet, RecordColumns, recordRows(result.Results[pattern])); err != nil {
			return errors.ExportError("failed to write sheet "+sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ExportError("failed to save workbook", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *validation.SuiteResult) error {
	rows := make([][]interface{}, 0, len(result.Summary.Patterns)+1)
	for _, p := range result.Summary.Patterns {
		rows = append(rows, []interface{}{
			p.Pattern, p.Tests, p.Failures, p.MeanConsciousnessScore, p.StdConsciousnessScore,
			p.MeanPearson, p.MeanSpearman, p.MeanKSStatistic, p.MeanProcessingTime,
		})
	}
	rows = append(rows, []interface{}{
		"overall", result.Summary.TotalTests, result.Summary.TotalFailures, result.Summary.MeanConsciousnessScore,
	})
	return writeRows(f, SummarySheet, summaryColumns, rows)
}

func recordRows(records []validation.Record) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		row := recordRow(r)
		for j, v := range row {
			if x, ok := v.(float64); ok && fToStr(x) == "" {
				row[j] = nil
			}
		}
		rows[i] = row
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sheetName trims pattern names to the 31 characters a sheet name allows
func sheetName(pattern string) string {
	if len(pattern) > 31 {
		return pattern[:31]
	}
	return pattern
}
