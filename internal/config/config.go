package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Environment variable names recognized for secrets.
const (
	EnvPartnerToken     = "PLATEN_PARTNER_TOKEN"
	EnvStorageAccessKey = "PLATEN_STORAGE_ACCESS_KEY"
)

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	FontsDir string `toml:"fonts_dir"`
}

// Partner contains configuration for the manufacturing partner API.
type Partner struct {
	BaseURL        string `toml:"base_url"`
	APIToken       string `toml:"-"`
	BaseProductID  int64  `toml:"base_product_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Storage contains configuration for the object storage service.
type Storage struct {
	Endpoint       string `toml:"endpoint"`
	Bucket         string `toml:"bucket"`
	PublicBaseURL  string `toml:"public_base_url"`
	AccessKey      string `toml:"-"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Fonts contains configuration for the font registry.
type Fonts struct {
	FallbackFamily string `toml:"fallback_family"`
}

// Resolver contains configuration for variant resolution.
type Resolver struct {
	// MappingTablePath optionally overrides the embedded legacy SKU table.
	MappingTablePath string `toml:"mapping_table_path"`
}

// Workflow contains retry and backoff tuning for external calls.
type Workflow struct {
	StorageRetryAttempts int `toml:"storage_retry_attempts"`
	SubmitRetryAttempts  int `toml:"submit_retry_attempts"`
	RetryBaseSeconds     int `toml:"retry_base_seconds"`
	RetryMaxSeconds      int `toml:"retry_max_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the pipeline.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Partner  Partner  `toml:"partner"`
	Storage  Storage  `toml:"storage"`
	Fonts    Fonts    `toml:"fonts"`
	Resolver Resolver `toml:"resolver"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/platen/config.toml")
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. An empty path
// falls back to the default location; a missing file at the default
// location yields defaults. Secrets are read from the environment after
// an optional .env file in the working directory is applied.
func Load(path string) (*Config, string, error) {
	resolved := strings.TrimSpace(path)
	usedDefault := false
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		resolved = defaultPath
		usedDefault = true
	} else {
		expanded, err := expandPath(resolved)
		if err != nil {
			return nil, "", err
		}
		resolved = expanded
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist) && usedDefault:
		// Defaults only; explicit paths must exist.
	case errors.Is(err, fs.ErrNotExist):
		return nil, "", fmt.Errorf("config file %s not found", resolved)
	default:
		return nil, "", fmt.Errorf("read config %s: %w", resolved, err)
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	cfg.Partner.APIToken = strings.TrimSpace(os.Getenv(EnvPartnerToken))
	cfg.Storage.AccessKey = strings.TrimSpace(os.Getenv(EnvStorageAccessKey))

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

// EnsureDirectories creates the configured data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the fulfillment run database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "runs.db")
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir, &c.Paths.FontsDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Partner.BaseURL = strings.TrimRight(strings.TrimSpace(c.Partner.BaseURL), "/")
	c.Storage.Endpoint = strings.TrimRight(strings.TrimSpace(c.Storage.Endpoint), "/")
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	c.Fonts.FallbackFamily = strings.TrimSpace(c.Fonts.FallbackFamily)
	if c.Resolver.MappingTablePath != "" {
		expanded, err := expandPath(c.Resolver.MappingTablePath)
		if err != nil {
			return err
		}
		c.Resolver.MappingTablePath = expanded
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
