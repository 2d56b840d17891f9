// =============================================================================
// Wisconsin Excise XML - HTTP API
// =============================================================================
//
// This module exposes the pipeline to the browser form over JSON:
//
//   GET  /api/config/filer               saved filer record
//   POST /api/config/filer               save filer record
//   GET  /api/config/defaults            saved defaults record
//   POST /api/config/defaults            save defaults record
//   GET  /api/csv/template/:reportType   header-only template (csv or xlsx)
//   POST /api/csv/parse                  raw rows of pasted CSV text or an
//                                        uploaded .csv/.xlsx file
//   POST /api/csv/map                    canonical shipments + mapping report
//   POST /api/xml/generate               assemble and validate a filing
//   POST /api/xml/save                   write a filing and send it back
//
// Every failure is answered with {"success": false, "error": ...}. A schema
// rejection also carries the remediation report and the raw validator text.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ginjaninja78/wi-excise-xml/internal/config"
	"github.com/ginjaninja78/wi-excise-xml/internal/converter"
	"github.com/ginjaninja78/wi-excise-xml/internal/csvparser"
	"github.com/ginjaninja78/wi-excise-xml/internal/store"
	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/ginjaninja78/wi-excise-xml/internal/xlsxparser"
	"github.com/ginjaninja78/wi-excise-xml/internal/xmlwriter"
	"github.com/ginjaninja78/wi-excise-xml/pkg/utils"
	"go.uber.org/zap"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// saveNameFormat names files sent back by /api/xml/save.
	saveNameFormat = "{type}_{timestamp}.xml"

	shutdownTimeout = 5 * time.Second
)

// Server serves the JSON API.
type Server struct {
	cfg       *config.MainConfig
	store     *store.Store
	converter *converter.Converter
	logger    *zap.Logger
	engine    *gin.Engine
}

// New builds the router.
//
// PARAMETERS:
//   - cfg: Listen address, gin mode and CSV settings.
//   - st: Persisted filer and defaults records.
//   - conv: The generation pipeline, also used for its output directory.
//   - logger: Request and error logging; nil discards log output.
func New(cfg *config.MainConfig, st *store.Store, conv *converter.Converter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		converter: conv,
		logger:    logger,
		engine:    gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := s.engine.Group("/api")
	{
		api.GET("/config/filer", s.getFiler)
		api.POST("/config/filer", s.saveFiler)
		api.GET("/config/defaults", s.getDefaults)
		api.POST("/config/defaults", s.saveDefaults)

		api.GET("/csv/template/:reportType", s.template)
		api.POST("/csv/parse", s.parseCSV)
		api.POST("/csv/map", s.mapCSV)

		api.POST("/xml/generate", s.generateXML)
		api.POST("/xml/save", s.saveXML)
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// =============================================================================
// CONFIGURATION RECORDS
// =============================================================================

func (s *Server) getFiler(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.LoadFiler())
}

func (s *Server) saveFiler(c *gin.Context) {
	var filer types.FilerInfo
	if err := c.ShouldBindJSON(&filer); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SaveFiler(filer); err != nil {
		s.logger.Error("Failed to save filer record", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Filer configuration saved"})
}

func (s *Server) getDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.LoadDefaults())
}

func (s *Server) saveDefaults(c *gin.Context) {
	var defaults types.DefaultsRecord
	if err := c.ShouldBindJSON(&defaults); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SaveDefaults(defaults); err != nil {
		s.logger.Error("Failed to save defaults record", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Defaults saved"})
}

// =============================================================================
// CSV INPUT
// =============================================================================

// template sends the header row for a report type. ?format=xlsx returns a
// workbook instead of CSV text.
func (s *Server) template(c *gin.Context) {
	rt, err := types.ParseReportType(c.Param("reportType"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if c.Query("format") == "xlsx" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.xlsx"`, rt))
		c.Header("Content-Type", xlsxContentType)
		c.Status(http.StatusOK)
		if err := xlsxparser.WriteTemplate(c.Writer, converter.TemplateHeaders(rt)); err != nil {
			s.logger.Error("Failed to write XLSX template", zap.Error(err))
		}
		return
	}

	content, err := converter.CSVTemplate(rt)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, rt))
	c.Data(http.StatusOK, "text/csv", []byte(content))
}

type parseRequest struct {
	CSVContent string `json:"csv_content" binding:"required"`
	ReportType string `json:"report_type"`
}

// parseCSV accepts either a JSON body with pasted CSV text or a multipart
// upload whose "file" part is a .csv or .xlsx file.
func (s *Server) parseCSV(c *gin.Context) {
	var (
		table *types.Table
		err   error
	)
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		table, err = s.parseUpload(c)
	} else {
		var req parseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		table, err = csvparser.ParseString(req.CSVContent, s.cfg.CSV)
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"headers": table.Headers,
		"rows":    table.Rows,
		"count":   len(table.Rows),
	})
}

func (s *Server) parseUpload(c *gin.Context) (*types.Table, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file uploaded: %w", err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		return xlsxparser.Parse(file)
	case ".csv", ".txt":
		return csvparser.Parse(file, s.cfg.CSV)
	default:
		return nil, fmt.Errorf("unsupported upload %q (expected .csv or .xlsx)", header.Filename)
	}
}

type mapRequest struct {
	CSVContent string                `json:"csv_content" binding:"required"`
	ReportType string                `json:"report_type"`
	Defaults   *types.DefaultsRecord `json:"defaults"`
}

// importFailed is the message shown when pasted CSV cannot be mapped.
func importFailed(err error) string {
	return "CSV IMPORT FAILED\n\n" +
		fmt.Sprintf("Error: %v\n\n", err) +
		"COMMON FIXES:\n" +
		"  - Make sure your CSV has headers in the first row\n" +
		"  - Check that you copied the entire data (including headers)\n" +
		"  - Try removing any special formatting from Excel before copying\n" +
		"  - Save as CSV file first, then copy from there\n"
}

func (s *Server) mapCSV(c *gin.Context) {
	var req mapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	rt, err := reportTypeOrDefault(req.ReportType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	defaults := s.defaultsOr(req.Defaults)

	table, err := csvparser.ParseString(req.CSVContent, s.cfg.CSV)
	if err != nil {
		fail(c, http.StatusBadRequest, importFailed(err))
		return
	}

	report := converter.BuildMappingReport(table, rt)
	shipments, err := converter.MapShipments(table, rt, defaults)
	if err != nil {
		fail(c, http.StatusBadRequest, importFailed(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"shipments":      shipments,
		"count":          len(shipments),
		"mapping_report": report,
		"feedback":       converter.ImportFeedback(report, len(shipments)),
	})
}

// =============================================================================
// XML OUTPUT
// =============================================================================

type generateRequest struct {
	ReportType     string                `json:"report_type"`
	FilerData      *types.FilerInfo      `json:"filer_data"`
	Shipments      []types.Shipment      `json:"shipments"`
	TaxPeriodBegin string                `json:"tax_period_begin"`
	TaxPeriodEnd   string                `json:"tax_period_end"`
	AckEmail       string                `json:"ack_email"`
	Amended        bool                  `json:"amended"`
	Defaults       *types.DefaultsRecord `json:"defaults"`
}

func (s *Server) generateXML(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	rt, err := reportTypeOrDefault(req.ReportType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.converter.Generate(c.Request.Context(), converter.Job{
		ReportType:     rt,
		Filer:          req.FilerData,
		Shipments:      req.Shipments,
		Defaults:       s.defaultsOr(req.Defaults),
		TaxPeriodBegin: req.TaxPeriodBegin,
		TaxPeriodEnd:   req.TaxPeriodEnd,
		AckEmail:       req.AckEmail,
		Amended:        req.Amended,
	})
	if err != nil {
		var jobErr *converter.JobError
		var missing *xmlwriter.MissingFieldError
		if errors.As(err, &jobErr) || errors.As(err, &missing) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("XML generation failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !out.Validation.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":           false,
			"error":             converter.ErrValidationFailed.Error(),
			"validation_error":  out.Validation.Report.String(),
			"validation_detail": out.Validation.Violation.Raw,
			"report":            out.Validation.Report,
			"xml":               string(out.XML),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"xml":        string(out.XML),
		"validation": "passed",
	})
}

type saveRequest struct {
	XML        string `json:"xml"`
	ReportType string `json:"report_type"`
}

func (s *Server) saveXML(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.XML == "" {
		fail(c, http.StatusBadRequest, "No XML provided")
		return
	}

	rt, err := reportTypeOrDefault(req.ReportType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	name := utils.GenerateOutputFileName(saveNameFormat, map[string]string{"type": string(rt)})
	path, err := s.converter.Files().WriteOutput(name, []byte(req.XML))
	if err != nil {
		s.logger.Error("Failed to save XML", zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("Saved XML", zap.String("path", path))

	c.Header("Content-Type", "application/xml")
	c.FileAttachment(path, filepath.Base(path))
}

// =============================================================================
// HELPERS
// =============================================================================

// reportTypeOrDefault parses rt, treating an empty value as CommonCarrier.
func reportTypeOrDefault(rt string) (types.ReportType, error) {
	if rt == "" {
		return types.CommonCarrier, nil
	}
	return types.ParseReportType(rt)
}

// defaultsOr returns the request's defaults, or the saved record when the
// request carried none.
func (s *Server) defaultsOr(d *types.DefaultsRecord) types.DefaultsRecord {
	if d != nil {
		return *d
	}
	return s.store.LoadDefaults()
}
