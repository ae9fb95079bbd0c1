// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"platen/internal/config"
	"platen/internal/runs"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.FontsDir = filepath.Join(base, "fonts")
	cfg.Partner.BaseURL = "http://127.0.0.1:0"
	cfg.Partner.APIToken = "test"
	cfg.Partner.BaseProductID = 71
	cfg.Storage.Endpoint = "http://127.0.0.1:0"
	cfg.Storage.Bucket = "test-bucket"
	cfg.Storage.PublicBaseURL = "https://cdn.test.example"
	cfg.Storage.AccessKey = "test"
	cfg.Workflow.RetryBaseSeconds = 1
	cfg.Workflow.RetryMaxSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithPartnerBaseURL points the partner client at a test server.
func WithPartnerBaseURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Partner.BaseURL = url
	}
}

// WithStorageEndpoint points the object storage client at a test server.
func WithStorageEndpoint(url string) ConfigOption {
	return func(c *config.Config) {
		c.Storage.Endpoint = url
	}
}

// MustOpenStore opens a run store backed by the config's temp data dir
// and closes it when the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *runs.Store {
	t.Helper()

	store, err := runs.Open(cfg)
	if err != nil {
		t.Fatalf("open run store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedRun inserts a run for the given order key and returns it.
func SeedRun(t testing.TB, store *runs.Store, orderID, lineItemID int64) *runs.Run {
	t.Helper()

	run, existed, err := store.CreateOrGet(context.Background(), orderID, lineItemID, Snapshot(t, "seed"), "{}")
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if existed {
		t.Fatalf("run for order %d item %d already existed", orderID, lineItemID)
	}
	return run
}

// Snapshot returns a minimal valid layout snapshot document carrying the
// provided text.
func Snapshot(t testing.TB, text string) string {
	t.Helper()

	doc := map[string]any{
		"version": 2,
		"printArea": map[string]any{
			"widthIn":  3.5,
			"heightIn": 4.5,
			"dpi":      150,
		},
		"origin":   "top-left",
		"canvasPx": map[string]any{"w": 525, "h": 675},
		"layers": []any{
			map[string]any{
				"font": map[string]any{
					"family":          "Go",
					"sizePt":          24,
					"lineHeight":      1.4,
					"letterSpacingEm": 0.0,
					"vertical":        false,
					"textOrientation": "upright",
					"hyphenPolicy":    "jp-long-vbar",
				},
				"color": "#1a1a1a",
				"align": map[string]any{"h": "center", "v": "baseline"},
				"textBlocks": []any{
					map[string]any{
						"text":   text,
						"xIn":    1.75,
						"yIn":    2.25,
						"anchor": "center-baseline",
					},
				},
			},
		},
		"meta": map[string]any{
			"baseFontSizeRequested": 24,
			"orientation":           "horizontal",
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return string(raw)
}

// OrderKey formats an order/line-item pair the way log lines and
// failure messages render it, for assertion convenience.
func OrderKey(orderID, lineItemID int64) string {
	return fmt.Sprintf("order %d item %d", orderID, lineItemID)
}
