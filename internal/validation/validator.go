// =============================================================================
// Wisconsin Excise XML - Validation
// =============================================================================
//
// This module checks an assembled filing against the state schema for its
// report type and, when the document is rejected, explains the FIRST
// violation in plain language. Only one error is reported per run; the user
// fixes it and validates again.
//
// The schema check itself is behind SchemaValidator so the pipeline and the
// HTTP layer can be tested without xmllint installed.
//
// =============================================================================

package validation

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"go.uber.org/zap"
)

// SchemaValidator checks a document against the schema for a report type.
// It returns nil, nil when the document is valid and an error only when the
// check itself could not run.
type SchemaValidator interface {
	Validate(ctx context.Context, doc []byte, rt types.ReportType) (*Violation, error)
}

// Result is the outcome of validating one document.
type Result struct {
	Valid bool

	// Violation and Report are set when Valid is false.
	Violation *Violation
	Report    *Report
}

// Validator pairs a schema check with the remediation translator.
type Validator struct {
	schema SchemaValidator
	logger *zap.Logger
}

// New returns a Validator. A nil logger discards log output.
func New(schema SchemaValidator, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{schema: schema, logger: logger}
}

// Validate checks doc against the schema for rt.
//
// RETURNS:
//   - A Result; Valid is false with a Report when the schema rejects doc.
//   - An error only when the schema check could not be performed.
func (v *Validator) Validate(ctx context.Context, doc []byte, rt types.ReportType) (*Result, error) {
	violation, err := v.schema.Validate(ctx, doc, rt)
	if err != nil {
		return nil, fmt.Errorf("schema validation could not run: %w", err)
	}
	if violation == nil {
		return &Result{Valid: true}, nil
	}

	report := Translate(*violation, doc)
	v.logger.Info("XML rejected by schema",
		zap.String("report_type", string(rt)),
		zap.String("kind", string(report.Kind)),
		zap.Int("line", violation.Line),
		zap.String("location", report.Location.Section),
	)
	return &Result{Violation: violation, Report: report}, nil
}
