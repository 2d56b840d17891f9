// =============================================================================
// Wisconsin Excise XML - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved in
// this order, later sources winning:
//   1. Built-in defaults
//   2. The main YAML file (config.yaml)
//   3. A .env file, if present
//   4. EXCISE_* environment variables
//
// The filer record and the shipment defaults are NOT part of this file; they
// are user data persisted by the store package in ConfigDir.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir is where generated XML files and error logs are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful conversion
	// when ArchiveInput is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ConfigDir holds filer_config.json and defaults.json.
	// Default: "./config"
	ConfigDir string `yaml:"config_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the encoder: "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {type}      - Report type (CommonCarrier or FulfillmentHouse)
	//   {original}  - Input file name without extension
	// Default: "{type}_{timestamp}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// ArchiveInput moves input files into InputArchiveDir after success.
	// Default: false
	ArchiveInput bool `yaml:"archive_input"`

	// =========================================================================
	// VALIDATION SETTINGS
	// =========================================================================

	// XMLLintPath is the schema validator executable.
	// Default: "xmllint" (resolved through PATH)
	XMLLintPath string `yaml:"xmllint_path"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	CSV CSVSettings `yaml:"csv"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	Server ServerSettings `yaml:"server"`
}

// CSVSettings controls how CSV input is read.
type CSVSettings struct {
	// Delimiter is the field separator: ",", "tab", "pipe", ";" or any
	// single character.
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// ServerSettings controls the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	// Default: "127.0.0.1:5000"
	Addr string `yaml:"addr"`

	// ReleaseMode switches gin into release mode.
	ReleaseMode bool `yaml:"release_mode"`
}

// =============================================================================
// LOADER
// =============================================================================

// envPrefix is prepended to every environment override.
const envPrefix = "EXCISE_"

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: Path to the YAML file. A missing file is not an error; the
//     built-in defaults are used instead.
//   - envFile: Path to a .env file. Ignored when empty or missing.
//
// RETURNS:
//   - The resolved configuration.
//   - An error if a file exists but cannot be parsed, or if validation fails.
func LoadMainConfig(configPath, envFile string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := applyEnvOverrides(&config); err != nil {
		return nil, err
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyEnvOverrides copies EXCISE_* variables over file values.
func applyEnvOverrides(config *MainConfig) error {
	overrides := map[string]*string{
		"OUTPUT_DIR":         &config.OutputDir,
		"INPUT_ARCHIVE_DIR":  &config.InputArchiveDir,
		"CONFIG_DIR":         &config.ConfigDir,
		"LOG_LEVEL":          &config.LogLevel,
		"LOG_FORMAT":         &config.LogFormat,
		"OUTPUT_NAME_FORMAT": &config.OutputNameFormat,
		"XMLLINT_PATH":       &config.XMLLintPath,
		"CSV_DELIMITER":      &config.CSV.Delimiter,
		"ADDR":               &config.Server.Addr,
	}
	for key, dst := range overrides {
		if value, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = value
		}
	}

	if value, ok := os.LookupEnv(envPrefix + "ARCHIVE_INPUT"); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %sARCHIVE_INPUT %q: %w", envPrefix, value, err)
		}
		config.ArchiveInput = b
	}

	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ConfigDir == "" {
		config.ConfigDir = "./config"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{type}_{timestamp}.xml"
	}
	if config.XMLLintPath == "" {
		config.XMLLintPath = "xmllint"
	}
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.Server.Addr == "" {
		config.Server.Addr = "127.0.0.1:5000"
	}
}

// validateMainConfig reports every invalid setting at once.
func validateMainConfig(config *MainConfig) error {
	var result *multierror.Error

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log_level %q must be one of debug, info, warn, error", config.LogLevel))
	}

	switch config.LogFormat {
	case "console", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log_format %q must be console or json", config.LogFormat))
	}

	if !strings.Contains(config.OutputNameFormat, "{timestamp}") && !strings.Contains(config.OutputNameFormat, "{uuid}") {
		result = multierror.Append(result, fmt.Errorf("output_name_format %q must contain {timestamp} or {uuid}", config.OutputNameFormat))
	}

	if strings.ContainsAny(config.OutputNameFormat, `/\`) {
		result = multierror.Append(result, fmt.Errorf("output_name_format %q must not contain path separators", config.OutputNameFormat))
	}

	if !strings.Contains(config.Server.Addr, ":") {
		result = multierror.Append(result, fmt.Errorf("server.addr %q must be host:port", config.Server.Addr))
	}

	return result.ErrorOrNil()
}
