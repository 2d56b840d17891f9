// =============================================================================
// Wisconsin Excise XML - CSV Parser Module
// =============================================================================
//
// This module turns CSV text (a pasted blob or a file on disk) into a
// types.Table. It is deliberately forgiving, since shipment exports come from
// spreadsheets and carrier portals rather than from a strict producer:
//   - Variable column counts per row
//   - Lazy quoting
//   - Leading UTF-8 byte order mark (Excel "CSV UTF-8" exports)
//   - Blank header cells (named Column_N)
//   - Blank rows (skipped)
//
// Column order is preserved in Table.Headers because the column mapper uses
// it as the precedence signal.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/wi-excise-xml/internal/config"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoHeader is returned when the input has no header row at all.
var ErrNoHeader = errors.New("CSV has no header row")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a CSV file from disk.
func ParseFile(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file, settings)
}

// ParseString parses CSV text supplied inline, e.g. pasted into a form.
func ParseString(content string, settings config.CSVSettings) (*types.Table, error) {
	return Parse(strings.NewReader(content), settings)
}

// Parse reads CSV from r.
//
// PARAMETERS:
//   - r: The CSV source. A leading UTF-8 BOM is dropped.
//   - settings: Delimiter selection.
//
// RETURNS:
//   - The parsed table. Input with a header but no data rows is valid and
//     yields a table with zero rows.
//   - ErrNoHeader for empty input, or a wrapped csv error for input whose
//     structure cannot be read.
func Parse(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	csvReader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return FromRecords(allRows)
}

// FromRecords builds a table from raw records whose first record is the
// header. It is shared with the spreadsheet reader.
func FromRecords(records [][]string) (*types.Table, error) {
	if len(records) == 0 || isRowEmpty(records[0]) {
		return nil, ErrNoHeader
	}

	headers := cleanHeaders(records[0])

	return &types.Table{
		Headers: headers,
		Rows:    extractDataRows(records[1:], headers),
	}, nil
}

// configureReader applies the delimiter and the lenient parsing options.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header names and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts raw records into rows keyed by header, skipping
// blank records. Cells beyond the header width are dropped; missing cells
// become empty strings.
func extractDataRows(records [][]string, headers []string) []types.Row {
	rows := make([]types.Row, 0, len(records))

	for _, record := range records {
		if isRowEmpty(record) {
			continue
		}

		row := make(types.Row, len(headers))
		for i, header := range headers {
			// A repeated header keeps its first non-empty cell.
			if row[header] != "" {
				continue
			}
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
