package validation

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
)

//go:embed schemas/*.xsd
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaDir  string
	schemaErr  error
)

// Schema returns the embedded XSD for a report type.
func Schema(rt types.ReportType) ([]byte, error) {
	data, err := schemaFS.ReadFile("schemas/" + rt.SchemaName() + ".xsd")
	if err != nil {
		return nil, fmt.Errorf("no schema for report type %q: %w", rt, err)
	}
	return data, nil
}

// SchemaPath returns a file path holding the XSD for a report type. The
// schemas are written to a temporary directory on first use and reused for
// the life of the process.
func SchemaPath(rt types.ReportType) (string, error) {
	schemaOnce.Do(func() {
		schemaDir, schemaErr = writeSchemas()
	})
	if schemaErr != nil {
		return "", schemaErr
	}
	return filepath.Join(schemaDir, rt.SchemaName()+".xsd"), nil
}

func writeSchemas() (string, error) {
	dir, err := os.MkdirTemp("", "excise-schemas-")
	if err != nil {
		return "", fmt.Errorf("failed to create schema directory: %w", err)
	}
	for _, rt := range types.ReportTypes {
		data, err := Schema(rt)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, rt.SchemaName()+".xsd")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write schema %s: %w", path, err)
		}
	}
	return dir, nil
}
