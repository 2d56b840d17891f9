package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/wi-excise-xml/internal/csvparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTemplateRoundTrip(t *testing.T) {
	headers := []string{"Ship To Company", "Ship To Address 1", "Ship To City", "LB"}

	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, headers))

	table, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, headers, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestParseFile(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Ship To Company", "", "Ship To City"},
		{"Bob", "x", "Madison"},
		{},
		{"Ann", nil, "Green Bay"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "shipments.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ship To Company", "Column_2", "Ship To City"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Bob", table.Rows[0]["Ship To Company"])
	assert.Equal(t, "Green Bay", table.Rows[1]["Ship To City"])
	assert.Equal(t, "", table.Rows[1]["Column_2"])
}

func TestParseEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := Parse(&buf)
	assert.ErrorIs(t, err, csvparser.ErrNoHeader)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}
