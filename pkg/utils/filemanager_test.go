package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.CSV"))
	touch(t, filepath.Join(dir, "a.xlsx"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := DiscoverInputFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.CSV")}, files)

	files, err = DiscoverInputFiles(dir, ".txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	_, err = DiscoverInputFiles(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{type}_{timestamp}.xml", map[string]string{"type": "CommonCarrier"})
	assert.Regexp(t, regexp.MustCompile(`^CommonCarrier_\d{8}_\d{6}\.xml$`), name)

	name = GenerateOutputFileName("{original}_{uuid}", map[string]string{"original": "../oct"})
	assert.Regexp(t, regexp.MustCompile(`^\.\._oct_[0-9a-f-]{36}\.xml$`), name)
}

func TestWriteOutputAndArchive(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "out"), filepath.Join(root, "archive"), true)
	require.NoError(t, fm.EnsureDirectories())

	path, err := fm.WriteOutput("report.xml", []byte("<x/>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "out", "report.xml"), path)
	assert.True(t, FileExists(path))

	second, err := fm.WriteOutput("report.xml", []byte("<y/>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "out", "report_1.xml"), second)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(data))

	input := filepath.Join(root, "shipments.csv")
	touch(t, input)
	archived, err := fm.ArchiveInputFile(input, "CommonCarrier")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "CommonCarrier", "shipments.csv"), archived)
	assert.False(t, FileExists(input))
	assert.True(t, FileExists(archived))

	touch(t, input)
	again, err := fm.ArchiveInputFile(input, "CommonCarrier")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "CommonCarrier", "shipments_1.csv"), again)
}

func TestArchiveDisabledLeavesInput(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, filepath.Join(root, "archive"), false)
	input := filepath.Join(root, "shipments.csv")
	touch(t, input)

	got, err := fm.ArchiveInputFile(input, "FulfillmentHouse")
	require.NoError(t, err)
	assert.Equal(t, input, got)
	assert.True(t, FileExists(input))
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Date(2025, 10, 29, 9, 30, 0, 0, time.UTC),
		FileName:     "shipments.csv",
		ReportType:   "CommonCarrier",
		ErrorType:    "validation",
		ErrorMessage: "XML validation failed",
		Report:       "PROBLEM: ZIP code is invalid\nWHERE TO FIX: Step 5\n",
	}}, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "(1 failed file(s))")
	assert.Contains(t, text, "2025-10-29 09:30:00  shipments.csv (CommonCarrier)\n")
	assert.Contains(t, text, "  [validation] XML validation failed\n")
	assert.Contains(t, text, "    PROBLEM: ZIP code is invalid\n    WHERE TO FIX: Step 5\n")
	assert.True(t, strings.HasSuffix(text, logRule+"\n"), "log is flushed and closed in full")
}

func TestWriteErrorLogReportsFailures(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	path, err := WriteErrorLog([]ErrorLogEntry{{FileName: "a.csv", ErrorType: "input", ErrorMessage: "bad"}}, blocker)
	assert.Error(t, err)
	assert.Empty(t, path)
}
