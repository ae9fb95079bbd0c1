package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"platen/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvPartnerToken, "tok")
	t.Setenv(config.EnvStorageAccessKey, "key")

	cfg, path, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected resolved config path")
	}
	if cfg.Partner.BaseURL == "" || cfg.Fonts.FallbackFamily == "" {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
	if cfg.Partner.APIToken != "tok" || cfg.Storage.AccessKey != "key" {
		t.Fatal("secrets must come from the environment")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("explicit config paths must exist")
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
data_dir = "~/platen-data"

[partner]
base_url = "https://partner.test.example"
base_product_id = 99
request_timeout = 10

[storage]
endpoint = "https://storage.test.example"
bucket = "prints"
request_timeout = 10

[workflow]
storage_retry_attempts = 2
submit_retry_attempts = 3
retry_base_seconds = 1
retry_max_seconds = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved = %q", resolved)
	}
	if cfg.Paths.DataDir != filepath.Join(home, "platen-data") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.DataDir)
	}
	if cfg.Partner.BaseProductID != 99 || cfg.Workflow.SubmitRetryAttempts != 3 {
		t.Fatalf("values not applied: %#v", cfg)
	}
	// Unset sections keep their defaults.
	if cfg.Fonts.FallbackFamily != "Noto Sans JP" {
		t.Fatalf("fallback family default lost: %q", cfg.Fonts.FallbackFamily)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[partner]
base_url = ""
request_timeout = 0

[workflow]
retry_base_seconds = 5
retry_max_seconds = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{
		"partner.base_url",
		"partner.request_timeout",
		"workflow.retry_max_seconds",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should mention %s: %q", want, msg)
		}
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/var/lib/platen"
	if got := cfg.DatabasePath(); got != "/var/lib/platen/runs.db" {
		t.Fatalf("DatabasePath = %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
	}
}
