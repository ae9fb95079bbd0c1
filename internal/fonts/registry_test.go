package fonts_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"platen/internal/fonts"
	"platen/internal/logging"
)

func TestResolveFamilyBuiltinAlwaysAvailable(t *testing.T) {
	reg := fonts.NewRegistry(t.TempDir(), "Noto Sans JP", logging.NewNop())

	family, substituted := reg.ResolveFamily(fonts.BuiltinFamily)
	if substituted {
		t.Fatal("built-in family should never be substituted")
	}
	if family.Name != fonts.BuiltinFamily || family.Font == nil {
		t.Fatalf("unexpected family: %#v", family)
	}
}

func TestResolveFamilySubstitutesUnknown(t *testing.T) {
	reg := fonts.NewRegistry(t.TempDir(), "Noto Sans JP", logging.NewNop())

	// No assets on disk, so the fallback itself degrades to the built-in.
	family, substituted := reg.ResolveFamily("Comic Sans MS")
	if !substituted {
		t.Fatal("expected substitution for unknown family")
	}
	if family.Name != fonts.BuiltinFamily {
		t.Fatalf("expected built-in fallback, got %q", family.Name)
	}
}

func TestResolveFamilyUsesOnDiskAsset(t *testing.T) {
	dir := t.TempDir()
	// Register a real parsable font under a known asset name.
	if err := os.WriteFile(filepath.Join(dir, "Inter-Regular.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font asset: %v", err)
	}
	reg := fonts.NewRegistry(dir, "Noto Sans JP", logging.NewNop())

	family, substituted := reg.ResolveFamily("Inter")
	if substituted {
		t.Fatal("expected Inter to resolve without substitution")
	}
	if family.Name != "Inter" || family.Font == nil {
		t.Fatalf("unexpected family: %#v", family)
	}
}

func TestResolveFamilySkipsCorruptAsset(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Inter-Regular.ttf"), []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write corrupt asset: %v", err)
	}
	reg := fonts.NewRegistry(dir, "Noto Sans JP", logging.NewNop())

	family, substituted := reg.ResolveFamily("Inter")
	if !substituted {
		t.Fatal("expected corrupt asset to be skipped and substituted")
	}
	if family.Name != fonts.BuiltinFamily {
		t.Fatalf("expected built-in fallback, got %q", family.Name)
	}
}

func TestFaceBuildsAtRequestedSize(t *testing.T) {
	reg := fonts.NewRegistry(t.TempDir(), "", logging.NewNop())
	family, _ := reg.ResolveFamily(fonts.BuiltinFamily)

	face, err := fonts.Face(family, 32)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	if metrics.Height <= 0 || metrics.Ascent <= 0 {
		t.Fatalf("unexpected face metrics: %+v", metrics)
	}
}

func TestFaceRejectsEmptyFamily(t *testing.T) {
	if _, err := fonts.Face(fonts.Family{Name: "empty"}, 16); err == nil {
		t.Fatal("expected error for family with no font")
	}
}
