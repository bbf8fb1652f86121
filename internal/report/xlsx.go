package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoiceguard/internal/validator"
)

const (
	sheetInvoices = "Invoices"
	sheetSummary  = "Summary"
)

// WriteXLSX writes a workbook with an Invoices sheet (one row per entry)
// and a Summary sheet with aggregate statistics.
func WriteXLSX(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetInvoices); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeInvoiceSheet(f, entries); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, entries); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeInvoiceSheet(f *excelize.File, entries []Entry) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetInvoices, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetInvoices, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	invalid, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "9A0511"}})
	if err != nil {
		return err
	}

	for i := range entries {
		row := entryToRow(&entries[i])
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetInvoices, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
		if row[colValid] == "No" {
			validCell, _ := excelize.CoordinatesToCellName(colValid+1, i+2)
			if err := f.SetCellStyle(sheetInvoices, validCell, validCell, invalid); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheetInvoices, "A", lastCol, 18)
}

func writeSummarySheet(f *excelize.File, entries []Entry) error {
	results := make([]*validator.Result, 0, len(entries))
	for i := range entries {
		if entries[i].Result != nil {
			results = append(results, entries[i].Result)
		}
	}
	stats := validator.GetValidationStatistics(results)

	rows := [][]interface{}{
		{"Total Validated", stats.TotalValidated},
		{"Valid", stats.ValidCount},
		{"Invalid", stats.InvalidCount},
		{"Average Score", stats.AverageScore},
		{},
		{"Error Code", "Count"},
	}
	for _, c := range stats.CommonErrors {
		rows = append(rows, []interface{}{c.Code, c.Count})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Warning Code", "Count"})
	for _, c := range stats.CommonWarnings {
		rows = append(rows, []interface{}{c.Code, c.Count})
	}

	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	return nil
}
