package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	content := fmt.Sprintf(`
[paths]
data_dir = %q
log_dir = %q
fonts_dir = %q

[partner]
base_url = "http://127.0.0.1:0"
base_product_id = 71
request_timeout = 5

[storage]
endpoint = "http://127.0.0.1:0"
bucket = "prints"
request_timeout = 5

[workflow]
storage_retry_attempts = 1
submit_retry_attempts = 1
retry_base_seconds = 1
retry_max_seconds = 1

[logging]
format = "json"
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "fonts"))

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("expected version output")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output should name the target: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second init without --overwrite must refuse.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "prints") || !strings.Contains(out, "Base product:      71") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunsListEmpty(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", path, "runs", "list")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, "No fulfillment runs recorded") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderCommandWritesPNG(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	snapshotPath := filepath.Join(base, "snapshot.json")
	snapshot := `{
		"version": 2,
		"printArea": {"widthIn": 2, "heightIn": 2, "dpi": 100},
		"origin": "top-left",
		"canvasPx": {"w": 200, "h": 200},
		"layers": [{
			"font": {
				"family": "Go",
				"sizePt": 18,
				"lineHeight": 1.2,
				"letterSpacingEm": 0,
				"textOrientation": "upright",
				"hyphenPolicy": "jp-long-vbar"
			},
			"color": "#000000",
			"align": {"h": "center", "v": "baseline"},
			"textBlocks": [{"text": "CLI", "xIn": 1, "yIn": 1, "anchor": "center-baseline"}]
		}],
		"meta": {"baseFontSizeRequested": 18, "orientation": "horizontal"}
	}`
	if err := os.WriteFile(snapshotPath, []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	output := filepath.Join(base, "out.png")
	out, err := runCommand(t, "--config", configPath, "render", snapshotPath, "--output", output)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(out, "200x200") {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read rendered png: %v", err)
	}
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatal("output is not a PNG")
	}
}

func TestRenderCommandRejectsInvalidSnapshot(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	snapshotPath := filepath.Join(base, "bad.json")
	if err := os.WriteFile(snapshotPath, []byte(`{"version":1}`), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	_, err := runCommand(t, "--config", configPath, "render", snapshotPath)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Fatalf("error should name the violation: %v", err)
	}
}

func TestParseHints(t *testing.T) {
	hints, err := parseHints(42, " SKU-1 ", " Black / S ", []string{"Color=Black", "Size=S"})
	if err != nil {
		t.Fatalf("parseHints failed: %v", err)
	}
	if hints.VariantID != 42 || hints.SKU != "SKU-1" || hints.VariantTitle != "Black / S" {
		t.Fatalf("unexpected hints: %#v", hints)
	}
	if hints.Properties["Color"] != "Black" || hints.Properties["Size"] != "S" {
		t.Fatalf("properties wrong: %#v", hints.Properties)
	}

	if _, err := parseHints(0, "", "", []string{"no-separator"}); err == nil {
		t.Fatal("expected error for malformed property")
	}
}

func TestFulfillRequiresFlags(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	if _, err := runCommand(t, "--config", path, "fulfill"); err == nil {
		t.Fatal("expected missing required flags to fail")
	}
}
