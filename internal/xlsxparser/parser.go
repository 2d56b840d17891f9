// =============================================================================
// Wisconsin Excise XML - XLSX Parser Module
// =============================================================================
//
// This module reads shipment data exported as an Excel workbook and writes
// the blank XLSX import template.
//
// WORKBOOK LAYOUT:
//   Only the first sheet is read. Row 1 holds the column headers; every
//   following non-blank row is one shipment. Header handling is the same as
//   for CSV input (see csvparser.FromRecords), so a workbook and a CSV with
//   the same cells produce the same table.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/wi-excise-xml/internal/csvparser"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name used in generated templates.
const TemplateSheet = "Shipments"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads the first sheet of the workbook at path.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened or has no header row.
func ParseFile(path string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

// Parse reads the first sheet of a workbook supplied as a stream, e.g. an
// HTTP upload.
func Parse(r io.Reader) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) (*types.Table, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return csvparser.FromRecords(rows)
}

// =============================================================================
// TEMPLATE
// =============================================================================

// WriteTemplate writes a workbook whose first row holds headers, in bold,
// with the column widths set for data entry.
func WriteTemplate(w io.Writer, headers []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TemplateSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
	}

	if len(headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		if err := f.SetCellStyle(TemplateSheet, "A1", last+"1", style); err != nil {
			return fmt.Errorf("failed to style headers: %w", err)
		}
		if err := f.SetColWidth(TemplateSheet, "A", last, 22); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
