package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tablekit/internal/database"
	"github.com/roach88/tablekit/internal/row"
	"github.com/roach88/tablekit/internal/store"
)

// Environment variables that override file values.
const (
	EnvDBPath   = "TABLEKIT_DB_PATH"
	EnvDBDriver = "TABLEKIT_DB_DRIVER"
	EnvLogLevel = "TABLEKIT_LOG_LEVEL"
)

// Config is the complete tablekit configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Rows     RowsConfig     `yaml:"rows"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the database file and engine settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	Driver      string `yaml:"driver"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"` // milliseconds
}

// RowsConfig controls row materialization.
type RowsConfig struct {
	Form     string `yaml:"form"` // map or struct
	PageSize int    `yaml:"page_size"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a Config with defaults applied.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "tablekit.db",
			Driver:      store.DriverCGO,
			WALMode:     true,
			BusyTimeout: store.DefaultBusyTimeout,
		},
		Rows: RowsConfig{
			Form:     row.FormMap.String(),
			PageSize: database.DefaultPageSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch c.Database.Driver {
	case store.DriverCGO, store.DriverPureGo:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not %q or %q", c.Database.Driver, store.DriverCGO, store.DriverPureGo))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("database.busy_timeout must not be negative, got %d", c.Database.BusyTimeout))
	}

	if _, err := row.ParseForm(c.Rows.Form); err != nil {
		errs = append(errs, fmt.Errorf("rows.form: %w", err))
	}
	if c.Rows.PageSize < 0 {
		errs = append(errs, fmt.Errorf("rows.page_size must not be negative, got %d", c.Rows.PageSize))
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not text or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// DatabaseOptions converts the config into database.Open options.
func (c *Config) DatabaseOptions(logger *slog.Logger) (database.Options, error) {
	form, err := row.ParseForm(c.Rows.Form)
	if err != nil {
		return database.Options{}, err
	}
	return database.Options{
		Path: c.Database.Path,
		Store: store.Options{
			Driver:      c.Database.Driver,
			BusyTimeout: c.Database.BusyTimeout,
			DisableWAL:  !c.Database.WALMode,
			Logger:      logger,
		},
		Form:     form,
		PageSize: c.Rows.PageSize,
		Logger:   logger,
	}, nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
