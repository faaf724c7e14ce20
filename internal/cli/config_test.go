package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salesdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("format", DefaultFormat, "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("config", "", "")
	fs.String("log-level", DefaultLogLevel, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "export", cfg.ExportDir)
	assert.Empty(t, cfg.File)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, "format: json\nlog_level: debug\nexport_dir: out\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "out", cfg.ExportDir)
	assert.Equal(t, path, cfg.File)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "export_dir: from-file\n")
	t.Setenv("SALESDB_EXPORT_DIR", "from-env")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ExportDir)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SALESDB_FORMAT", "text")
	t.Setenv("SALESDB_LOG_LEVEL", "error")

	cfg, err := LoadConfig("", testFlags(t, "--format", "json"))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	// Unchanged flags do not mask env values
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadConfig_KebabFlagMapsToSnakeKey(t *testing.T) {
	cfg, err := LoadConfig("", testFlags(t, "--log-level", "info"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_InvalidFormat(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "format: xml\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	_, err := LoadConfig("", testFlags(t, "--log-level", "loud"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestNewLogger_VerboseLowersLevel(t *testing.T) {
	cfg := &Config{LogLevel: "error", Verbose: true}
	logger := newLogger(cfg, os.Stderr)

	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
}
