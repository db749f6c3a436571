package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tablekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/app.db
  driver: sqlite
  wal_mode: false
  busy_timeout: 250
rows:
  form: struct
  page_size: 50
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/app.db", cfg.Database.Path)
	assert.Equal(t, store.DriverPureGo, cfg.Database.Driver)
	assert.False(t, cfg.Database.WALMode)
	assert.Equal(t, 250, cfg.Database.BusyTimeout)
	assert.Equal(t, "struct", cfg.Rows.Form)
	assert.Equal(t, 50, cfg.Rows.PageSize)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "rows:\n  form: struct\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, "struct", cfg.Rows.Form)
	assert.Equal(t, def.Rows.PageSize, cfg.Rows.PageSize)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/tablekit.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "database: [unclosed"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/env/db.sqlite")
	t.Setenv(EnvDBDriver, "sqlite")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(writeConfig(t, "database:\n  path: /file/db.sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "/env/db.sqlite", cfg.Database.Path)
	assert.Equal(t, store.DriverPureGo, cfg.Database.Driver)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = " "
	cfg.Database.Driver = "postgres"
	cfg.Rows.Form = "tuple"
	cfg.Rows.PageSize = -1
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"database.path", "database.driver", "rows.form", "rows.page_size", "logging.level", "logging.format"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestDatabaseOptions(t *testing.T) {
	cfg := Default()
	cfg.Rows.Form = "struct"
	cfg.Database.WALMode = false
	logger := slog.New(slog.DiscardHandler)

	opts, err := cfg.DatabaseOptions(logger)
	require.NoError(t, err)
	assert.Equal(t, row.FormStruct, opts.Form)
	assert.True(t, opts.Store.DisableWAL)
	assert.Equal(t, store.DriverCGO, opts.Store.Driver)
	assert.Same(t, logger, opts.Logger)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
