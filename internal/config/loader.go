package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/kalender/internal/logging"
	"github.com/example/kalender/internal/persistence"
)

// Config captures the storage and logging settings for the calendar.
type Config struct {
	// Storage is the page encoding. Empty means the user is asked at startup.
	Storage   persistence.Format
	DataFile  string
	DataDir   string
	SQLiteDSN string
	LogLevel  slog.Level
	LogFormat logging.Format
	// LogFile, when set, receives log output instead of stderr.
	LogFile string
}

// fileConfig is the YAML representation read from KALENDER_CONFIG.
type fileConfig struct {
	Storage   string `yaml:"storage"`
	DataFile  string `yaml:"data_file"`
	DataDir   string `yaml:"data_dir"`
	SQLiteDSN string `yaml:"sqlite_dsn"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DataFile:  "pages.txt",
		DataDir:   "pages",
		SQLiteDSN: "kalender.db",
		LogLevel:  slog.LevelWarn,
		LogFormat: logging.FormatText,
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by KALENDER_CONFIG, then the KALENDER_* environment variables.
//
// Invalid values are collected and reported together, naming each key.
func Load() (Config, error) {
	cfg := Default()
	var invalid []string

	if path := strings.TrimSpace(os.Getenv("KALENDER_CONFIG")); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		invalid = append(invalid, cfg.apply(fc, yamlKeys)...)
	}

	env := fileConfig{
		Storage:   os.Getenv("KALENDER_STORAGE"),
		DataFile:  os.Getenv("KALENDER_DATA_FILE"),
		DataDir:   os.Getenv("KALENDER_DATA_DIR"),
		SQLiteDSN: os.Getenv("KALENDER_SQLITE_DSN"),
		LogLevel:  os.Getenv("KALENDER_LOG_LEVEL"),
		LogFormat: os.Getenv("KALENDER_LOG_FORMAT"),
		LogFile:   os.Getenv("KALENDER_LOG_FILE"),
	}
	invalid = append(invalid, cfg.apply(env, envKeys)...)

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("ogiltiga konfigurationsvärden: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// keyNames labels each setting in error messages.
type keyNames struct {
	storage, logLevel, logFormat string
}

var (
	envKeys  = keyNames{storage: "KALENDER_STORAGE", logLevel: "KALENDER_LOG_LEVEL", logFormat: "KALENDER_LOG_FORMAT"}
	yamlKeys = keyNames{storage: "storage", logLevel: "log_level", logFormat: "log_format"}
)

// apply overlays the non-empty values of src and returns the keys whose
// values could not be parsed.
func (c *Config) apply(src fileConfig, keys keyNames) []string {
	var invalid []string

	if v := strings.TrimSpace(src.Storage); v != "" {
		format, err := persistence.ParseFormat(v)
		if err != nil {
			invalid = append(invalid, keys.storage)
		} else {
			c.Storage = format
		}
	}
	if v := strings.TrimSpace(src.DataFile); v != "" {
		c.DataFile = v
	}
	if v := strings.TrimSpace(src.DataDir); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(src.SQLiteDSN); v != "" {
		c.SQLiteDSN = v
	}
	if v := strings.TrimSpace(src.LogLevel); v != "" {
		level, err := logging.ParseLevel(v)
		if err != nil {
			invalid = append(invalid, keys.logLevel)
		} else {
			c.LogLevel = level
		}
	}
	if v := strings.TrimSpace(src.LogFormat); v != "" {
		format, err := logging.ParseFormat(v)
		if err != nil {
			invalid = append(invalid, keys.logFormat)
		} else {
			c.LogFormat = format
		}
	}
	if v := strings.TrimSpace(src.LogFile); v != "" {
		c.LogFile = v
	}
	return invalid
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fc, fmt.Errorf("konfigurationsfilen finns inte: %s", path)
		}
		return fc, fmt.Errorf("kunde inte läsa konfigurationsfilen %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("ogiltig YAML i %s: %w", path, err)
	}
	return fc, nil
}
