// =============================================================================
// Wisconsin Excise XML - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipeline:
//   - Input discovery (CSV and XLSX files in a directory)
//   - Output writing with configurable file names
//   - Input archival after a successful conversion
//   - Error logs holding the remediation report for rejected filings
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the archive directory only after the filing
//     passed schema validation and was written
//   - Archived inputs are grouped by report type:
//       input_archive/CommonCarrier/october.csv
//   - An archived file with the same name is never replaced
//   - Failed inputs remain in their original location
//   - Error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the pipeline.
type FileManager struct {
	// OutputDir is where generated XML files and error logs are placed.
	OutputDir string

	// InputArchiveDir receives input files after successful processing.
	InputArchiveDir string

	// ArchiveOnSuccess determines whether inputs are archived at all.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, inputArchiveDir string, archiveOnSuccess bool) *FileManager {
	return &FileManager{
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		ArchiveOnSuccess: archiveOnSuccess,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory, and the archive directory
// when archiving is enabled.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// InputExtensions are the file types the pipeline can read.
var InputExtensions = []string{".csv", ".xlsx"}

// DiscoverInputFiles lists the files in dir whose extension is one of
// extensions (case-insensitive), sorted by name. Subdirectories are not
// scanned.
//
// PARAMETERS:
//   - dir: The directory to scan.
//   - extensions: Accepted extensions with the leading dot. When empty,
//     InputExtensions is used.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func DiscoverInputFiles(dir string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = InputExtensions
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range extensions {
			if ext == strings.ToLower(want) {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutput writes data to name inside OutputDir. An existing file is
// never replaced: a numeric suffix is added instead ("report_1.xml"), so
// files converted in the same second keep distinct names.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the directory or the file cannot be written.
func (fm *FileManager) WriteOutput(name string, data []byte) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(fm.OutputDir, candidate)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}

		_, writeErr := file.Write(data)
		closeErr := file.Close()
		if writeErr != nil {
			return "", fmt.Errorf("failed to write output file: %w", writeErr)
		}
		if closeErr != nil {
			return "", fmt.Errorf("failed to write output file: %w", closeErr)
		}
		return path, nil
	}
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a converted input into the archive directory for
// its report type.
//
// PARAMETERS:
//   - filePath: The input that produced a valid filing.
//   - reportType: Subdirectory name; empty archives at the top level.
//
// RETURNS:
//   - The archived path, or filePath unchanged when archiving is disabled.
//   - An error if the file could not be moved.
func (fm *FileManager) ArchiveInputFile(filePath, reportType string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	dir := filepath.Join(fm.InputArchiveDir, reportType)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := freePath(dir, filepath.Base(filePath))
	if err := moveFile(filePath, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filepath.Base(filePath), err)
	}
	return target, nil
}

// freePath returns dir/name, or dir/name_N for the first N that does not
// exist yet.
func freePath(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for i := 1; FileExists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return candidate
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {type}      - Report type
//               {original}  - Input file name (without extension)
//   - params: A map of placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name, always ending in .xml. Path separators are
//     replaced so the name stays inside the output directory.
//
// EXAMPLE:
//   format: "{type}_{timestamp}.xml"
//   params: {"type": "CommonCarrier"}
//   output: "CommonCarrier_20251029_143022.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	result = strings.NewReplacer("/", "_", "\\", "_").Replace(result)

	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}

	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents one rejected conversion.
type ErrorLogEntry struct {
	Timestamp  time.Time
	FileName   string
	ReportType string

	// ErrorType is "input", "missing_field", "validation" or "system".
	ErrorType    string
	ErrorMessage string

	// Report is the multi-line remediation text for validation failures.
	Report string
}

const logRule = "--------------------------------------------------------------------------------"

// WriteErrorLog writes the entries to a new error_log_<timestamp>_<id>.txt
// in outputDir. Each entry lists the file, report type and error, followed
// by the remediation report indented under it.
//
// RETURNS:
//   - The path of the log, or "" when entries is empty.
//   - An error if the log cannot be written.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("error_log_%s_%s.txt", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Wisconsin Excise XML - Error Log (%d failed file(s))\n%s\n", len(entries), logRule)
	for _, entry := range entries {
		writeLogEntry(w, entry)
	}

	if err := w.Flush(); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close error log: %w", err)
	}
	return path, nil
}

func writeLogEntry(w *bufio.Writer, entry ErrorLogEntry) {
	fmt.Fprintf(w, "%s  %s", entry.Timestamp.Format(time.DateTime), entry.FileName)
	if entry.ReportType != "" {
		fmt.Fprintf(w, " (%s)", entry.ReportType)
	}
	fmt.Fprintf(w, "\n  [%s] %s\n", entry.ErrorType, entry.ErrorMessage)

	if entry.Report != "" {
		w.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(entry.Report, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	fmt.Fprintf(w, "%s\n", logRule)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// moveFile renames src to dst, copying across filesystems when a rename is
// not possible.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		in.Close()
		return err
	}

	_, copyErr := io.Copy(out, in)
	in.Close()
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(dst)
		return copyErr
	}
	return os.Remove(src)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
