// =============================================================================
// Wisconsin Excise XML - Persisted Configuration
// =============================================================================
//
// This module persists the two user records that survive between runs:
//
//   filer_config.json   the business submitting the report (types.FilerInfo)
//   defaults.json       consignor, manufacturer, permits and ack email
//                       (types.DefaultsRecord)
//
// Each file holds one whole JSON document and is rewritten in full on save.
// A missing or unreadable record is not an error: the built-in defaults are
// returned so a first run starts with a usable form.
//
// =============================================================================

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/wi-excise-xml/internal/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	// FilerFile is the file name of the filer record.
	FilerFile = "filer_config.json"

	// DefaultsFile is the file name of the defaults record.
	DefaultsFile = "defaults.json"
)

// Store reads and writes the persisted records in one directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New returns a Store rooted at dir. The directory is created on first save.
func New(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string {
	return s.dir
}

// DefaultFiler is the filer record used before one has been saved.
func DefaultFiler() types.FilerInfo {
	return types.FilerInfo{TINType: "FEIN", State: "WI"}
}

// DefaultDefaults is the defaults record used before one has been saved.
func DefaultDefaults() types.DefaultsRecord {
	return types.DefaultsRecord{
		Consignor:    types.PartyDefaults{State: "WI"},
		Manufacturer: types.PartyDefaults{State: "WI"},
	}
}

// =============================================================================
// FILER
// =============================================================================

// LoadFiler returns the saved filer record, or DefaultFiler when none is
// saved or the file cannot be decoded.
func (s *Store) LoadFiler() types.FilerInfo {
	filer := DefaultFiler()
	if !s.load(FilerFile, &filer) {
		return DefaultFiler()
	}
	return filer
}

// SaveFiler replaces the saved filer record.
func (s *Store) SaveFiler(filer types.FilerInfo) error {
	return s.save(FilerFile, filer)
}

// =============================================================================
// DEFAULTS
// =============================================================================

// LoadDefaults returns the saved defaults record, or DefaultDefaults when
// none is saved or the file cannot be decoded.
func (s *Store) LoadDefaults() types.DefaultsRecord {
	defaults := DefaultDefaults()
	if !s.load(DefaultsFile, &defaults) {
		return DefaultDefaults()
	}
	return defaults
}

// SaveDefaults replaces the saved defaults record.
func (s *Store) SaveDefaults(defaults types.DefaultsRecord) error {
	return s.save(DefaultsFile, defaults)
}

// =============================================================================
// FILE ACCESS
// =============================================================================

// load decodes name into v and reports whether a saved record was used.
func (s *Store) load(name string, v any) bool {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Could not read saved record, using built-in defaults",
				zap.String("path", path), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Saved record is malformed, using built-in defaults",
			zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Debug("Saved record", zap.String("path", path))
	return nil
}
