// =============================================================================
// Wisconsin Excise XML - Converter Module
// =============================================================================
//
// This module contains the core pipeline. It turns a job (filer, shipments,
// defaults, tax period and acknowledgement email) into a validated filing.
//
// GENERATION PIPELINE (Generate):
//   1. Check the job for the values every filing needs
//   2. Normalize the tax period dates and each shipment date
//   3. Re-apply the current defaults to every shipment
//   4. Clean the filer's address, ZIP and TIN
//   5. Assemble the XML document
//   6. Validate it against the schema for the report type
//
// FILE PIPELINE (ConvertFile):
//   1. Parse the CSV or XLSX input
//   2. Map the headers and rows into canonical shipments
//   3. Run the generation pipeline
//   4. Write the output file, or an error log when the filing was rejected
//   5. Archive the input file
//
// A rejected filing is a normal outcome, not an error: Generate returns it
// with Validation.Valid set to false and a remediation report attached.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/wi-excise-xml/internal/config"
	"github.com/ginjaninja78/wi-excise-xml/internal/csvparser"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/ginjaninja78/wi-excise-xml/internal/validation"
	"github.com/ginjaninja78/wi-excise-xml/internal/xlsxparser"
	"github.com/ginjaninja78/wi-excise-xml/internal/xmlwriter"
	"github.com/ginjaninja78/wi-excise-xml/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// JOB STRUCTURE
// =============================================================================

// Job is one request to produce a filing.
type Job struct {
	ReportType types.ReportType

	// Filer is required; nil means no filer record was supplied.
	Filer *types.FilerInfo

	// Shipments is filled by ConvertFile from the input file.
	Shipments []types.Shipment

	// Defaults are re-applied to every shipment before assembly.
	Defaults types.DefaultsRecord

	TaxPeriodBegin string
	TaxPeriodEnd   string

	// AckEmail falls back to Defaults.AckEmail when empty.
	AckEmail string

	Amended bool
}

// JobError reports a job that is missing a value every filing needs.
type JobError struct {
	Message string
}

func (e *JobError) Error() string {
	return e.Message
}

// Output is the result of Generate.
type Output struct {
	XML        []byte
	Validation *validation.Result

	// Shipments are the records as assembled, after defaults and dates.
	Shipments []types.Shipment
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed.
	OutputFile string

	// ErrorLog is the path of the error log written for a failed file.
	ErrorLog string

	// ArchivePath is where the input was moved, when archiving is enabled.
	ArchivePath string

	// Success indicates whether a valid filing was written.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Report explains a schema rejection; nil otherwise.
	Report *validation.Report

	// Mapping describes how the input headers were understood.
	Mapping types.MappingReport

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of non-blank data rows in the input.
	RowsRead int

	// Shipments is the number of shipments written to the filing.
	Shipments int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// ErrValidationFailed is reported in Result.Error when the schema rejected
// the filing. The details are in Result.Report.
var ErrValidationFailed = errors.New("XML validation failed")

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the generation and file pipelines.
type Converter struct {
	logger     *zap.Logger
	validator  *validation.Validator
	files      *utils.FileManager
	csv        config.CSVSettings
	nameFormat string
}

// New creates a Converter.
//
// PARAMETERS:
//   - cfg: Output directories, file naming and CSV settings.
//   - validator: The schema validator used for every filing.
//   - logger: Structured logger; nil discards log output.
func New(cfg *config.MainConfig, validator *validation.Validator, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		logger:     logger,
		validator:  validator,
		files:      utils.NewFileManager(cfg.OutputDir, cfg.InputArchiveDir, cfg.ArchiveInput),
		csv:        cfg.CSV,
		nameFormat: cfg.OutputNameFormat,
	}
}

// Files returns the file manager used for output and archival.
func (c *Converter) Files() *utils.FileManager {
	return c.files
}

// =============================================================================
// GENERATION PIPELINE
// =============================================================================

// Generate assembles and validates one filing.
//
// RETURNS:
//   - The document and its validation result. A schema rejection is
//     reported through Output.Validation, not as an error.
//   - A *JobError when the job lacks a required value, a
//     *xmlwriter.MissingFieldError when a filer or shipment field is empty,
//     or a wrapped error when the validator could not run.
func (c *Converter) Generate(ctx context.Context, job Job) (*Output, error) {
	// =========================================================================
	// STEP 1: CHECK JOB
	// =========================================================================

	if strings.TrimSpace(job.AckEmail) == "" {
		job.AckEmail = job.Defaults.AckEmail
	}
	if err := checkJob(job); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2-3: DATES AND DEFAULTS
	// =========================================================================

	shipments := make([]types.Shipment, len(job.Shipments))
	for i, s := range job.Shipments {
		s.ShipmentDate = NormalizeDate(s.ShipmentDate)
		shipments[i] = MergeDefaults(s, job.ReportType, job.Defaults)
	}

	// =========================================================================
	// STEP 4-5: FILER AND ASSEMBLY
	// =========================================================================

	doc := xmlwriter.Document{
		ReportType:     job.ReportType,
		Filer:          NormalizeFiler(*job.Filer),
		Shipments:      shipments,
		TaxPeriodBegin: NormalizeDate(job.TaxPeriodBegin),
		TaxPeriodEnd:   NormalizeDate(job.TaxPeriodEnd),
		AckEmail:       strings.TrimSpace(job.AckEmail),
		Amended:        job.Amended,
	}

	data, err := xmlwriter.Assemble(doc)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Assembled XML document",
		zap.String("report_type", string(job.ReportType)),
		zap.Int("shipments", len(shipments)),
		zap.Int("bytes", len(data)),
	)

	// =========================================================================
	// STEP 6: VALIDATE
	// =========================================================================

	result, err := c.validator.Validate(ctx, data, job.ReportType)
	if err != nil {
		return nil, err
	}

	return &Output{XML: data, Validation: result, Shipments: shipments}, nil
}

// checkJob reports the first missing job-level value.
func checkJob(job Job) error {
	switch {
	case job.ReportType != types.CommonCarrier && job.ReportType != types.FulfillmentHouse:
		return &JobError{Message: fmt.Sprintf("Unknown report type %q", job.ReportType)}
	case job.Filer == nil:
		return &JobError{Message: "Filer data is required"}
	case len(job.Shipments) == 0:
		return &JobError{Message: "At least one shipment is required"}
	case strings.TrimSpace(job.TaxPeriodBegin) == "" || strings.TrimSpace(job.TaxPeriodEnd) == "":
		return &JobError{Message: "Tax period dates are required"}
	case strings.TrimSpace(job.AckEmail) == "":
		return &JobError{Message: "Acknowledgement email is required"}
	}
	return nil
}

// NormalizeFiler cleans the filer fields the schema is strict about. Empty
// values stay empty so the assembler can report them as missing.
func NormalizeFiler(f types.FilerInfo) types.FilerInfo {
	f.AddressLine1 = CleanStreetAddress(f.AddressLine1)
	f.AddressLine2 = CleanStreetAddress(f.AddressLine2)
	f.ZIP = CleanZIP(f.ZIP)
	if strings.TrimSpace(f.TINValue) != "" {
		f.TINValue = CleanTIN(f.TINValue)
	}
	if f.TINType == "" {
		f.TINType = "FEIN"
	}
	return f
}

// =============================================================================
// FILE PIPELINE
// =============================================================================

// ReadTable parses a CSV or XLSX file, chosen by extension.
func (c *Converter) ReadTable(path string) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsxparser.ParseFile(path)
	case ".csv", ".txt":
		return csvparser.ParseFile(path, c.csv)
	default:
		return nil, fmt.Errorf("unsupported input file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}

// ConvertFile runs the full pipeline for one input file. The job's
// Shipments are replaced by the rows of the file.
//
// RETURNS:
//   - A Result describing the outcome. Result.Error is ErrValidationFailed
//     when the schema rejected the filing; an error log holding the
//     remediation report is written in that case and for input errors.
func (c *Converter) ConvertFile(ctx context.Context, path string, job Job) (result Result) {
	startTime := time.Now()
	result.FilePath = path
	log := c.logger.With(zap.String("file", path), zap.String("report_type", string(job.ReportType)))

	log.Info("Processing file")

	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1-2: PARSE AND MAP
	// =========================================================================

	table, err := c.ReadTable(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse input: %w", err)
		c.writeErrorLog(&result, job, "input", nil)
		return result
	}
	result.Stats.RowsRead = len(table.Rows)
	result.Mapping = BuildMappingReport(table, job.ReportType)

	for _, warning := range result.Mapping.Warnings {
		log.Warn("Column mapping warning", zap.String("warning", warning))
	}
	if len(result.Mapping.Unmapped) > 0 {
		log.Debug("Ignoring unmapped columns", zap.Strings("columns", result.Mapping.Unmapped))
	}

	shipments, err := MapShipments(table, job.ReportType, job.Defaults)
	if err != nil {
		result.Error = err
		c.writeErrorLog(&result, job, "input", nil)
		return result
	}
	job.Shipments = shipments

	// =========================================================================
	// STEP 3: GENERATE
	// =========================================================================

	out, err := c.Generate(ctx, job)
	if err != nil {
		result.Error = err
		errorType := "system"
		var missing *xmlwriter.MissingFieldError
		var jobErr *JobError
		switch {
		case errors.As(err, &missing):
			errorType = "missing_field"
		case errors.As(err, &jobErr):
			errorType = "input"
		}
		c.writeErrorLog(&result, job, errorType, nil)
		return result
	}

	if !out.Validation.Valid {
		result.Error = ErrValidationFailed
		result.Report = out.Validation.Report
		c.writeErrorLog(&result, job, "validation", out.Validation.Report)
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	name := utils.GenerateOutputFileName(c.nameFormat, map[string]string{
		"type":     string(job.ReportType),
		"original": strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	})
	outputPath, err := c.files.WriteOutput(name, out.XML)
	if err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	result.Stats.Shipments = len(out.Shipments)
	log.Info("Wrote output", zap.String("output", outputPath), zap.Int("shipments", len(out.Shipments)))

	// =========================================================================
	// STEP 5: ARCHIVE
	// =========================================================================

	archived, err := c.files.ArchiveInputFile(path, string(job.ReportType))
	if err != nil {
		// The filing is already written; a failed move is not fatal.
		log.Warn("Failed to archive input", zap.Error(err))
	} else if archived != path {
		result.ArchivePath = archived
	}

	result.Success = true
	return result
}

func (c *Converter) writeErrorLog(result *Result, job Job, errorType string, report *validation.Report) {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     filepath.Base(result.FilePath),
		ReportType:   string(job.ReportType),
		ErrorType:    errorType,
		ErrorMessage: result.Error.Error(),
	}
	if report != nil {
		entry.Report = report.String()
	}

	path, err := utils.WriteErrorLog([]utils.ErrorLogEntry{entry}, c.files.OutputDir)
	if err != nil {
		c.logger.Error("Failed to write error log", zap.Error(err))
		return
	}
	result.ErrorLog = path
	c.logger.Warn("Conversion failed",
		zap.String("file", result.FilePath),
		zap.String("error_type", errorType),
		zap.Error(result.Error),
		zap.String("error_log", path),
	)
}
