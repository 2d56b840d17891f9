package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMainConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "127.0.0.1:5000", cfg.Server.Addr)
	assert.Equal(t, "xmllint", cfg.XMLLintPath)
}

func TestLoadMainConfigFromYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
output_dir: /tmp/excise-out
log_level: debug
log_format: json
output_name_format: "{type}_{uuid}.xml"
archive_input: true
csv:
  delimiter: tab
server:
  addr: 0.0.0.0:8080
`)
	cfg, err := LoadMainConfig(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/excise-out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "{type}_{uuid}.xml", cfg.OutputNameFormat)
	assert.True(t, cfg.ArchiveInput)
	assert.Equal(t, "tab", cfg.CSV.Delimiter)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "./config", cfg.ConfigDir)
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	t.Setenv("EXCISE_OUTPUT_DIR", "/env/out")
	t.Setenv("EXCISE_ARCHIVE_INPUT", "true")

	path := writeFile(t, "config.yaml", "output_dir: /file/out\n")
	cfg, err := LoadMainConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, "/env/out", cfg.OutputDir)
	assert.True(t, cfg.ArchiveInput)
}

func TestLoadMainConfigEnvFile(t *testing.T) {
	// Register cleanup for the variable godotenv is about to set.
	t.Setenv("EXCISE_XMLLINT_PATH", "")
	require.NoError(t, os.Unsetenv("EXCISE_XMLLINT_PATH"))

	envFile := writeFile(t, ".env", "EXCISE_XMLLINT_PATH=/opt/libxml2/bin/xmllint\n")
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "/opt/libxml2/bin/xmllint", cfg.XMLLintPath)
}

func TestLoadMainConfigInvalidBoolEnv(t *testing.T) {
	t.Setenv("EXCISE_ARCHIVE_INPUT", "sometimes")
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}

func TestLoadMainConfigMalformedYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "output_dir: [unclosed\n")
	_, err := LoadMainConfig(path, "")
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidateMainConfigCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.LogFormat = "xml"
	cfg.OutputNameFormat = "out/report.xml"
	cfg.Server.Addr = "localhost"

	err := validateMainConfig(cfg)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
}
