package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"go.uber.org/zap"
)

// XMLLint validates documents by running the libxml2 xmllint tool against
// the embedded schemas. The document is passed on stdin.
type XMLLint struct {
	path   string
	logger *zap.Logger
}

// NewXMLLint returns a validator using the executable at path; a bare name
// is resolved through PATH.
func NewXMLLint(path string, logger *zap.Logger) *XMLLint {
	if path == "" {
		path = "xmllint"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XMLLint{path: path, logger: logger}
}

// Validate implements SchemaValidator.
//
// RETURNS:
//   - nil, nil when xmllint accepts the document (exit 0).
//   - The first violation when xmllint rejects it (exit 1 or 3, or 4 for
//     malformed input on newer libxml2 releases).
//   - An error when the tool cannot be run or exits any other way.
func (x *XMLLint) Validate(ctx context.Context, doc []byte, rt types.ReportType) (*Violation, error) {
	schema, err := SchemaPath(rt)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, x.path, "--noout", "--schema", schema, "-")
	cmd.Stdin = bytes.NewReader(doc)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		x.logger.Debug("Schema validation passed", zap.String("schema", rt.SchemaName()))
		return nil, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("failed to run %s: %w", x.path, err)
	}

	switch exitErr.ExitCode() {
	case 1, 3, 4:
		v := ParseLintOutput(stderr.String())
		x.logger.Debug("Schema validation failed",
			zap.String("schema", rt.SchemaName()),
			zap.Int("line", v.Line),
			zap.String("element", v.Element),
		)
		return &v, nil
	default:
		return nil, fmt.Errorf("%s exited with status %d: %s", x.path, exitErr.ExitCode(), bytes.TrimSpace(stderr.Bytes()))
	}
}
