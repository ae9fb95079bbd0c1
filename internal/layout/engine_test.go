package layout_test

import (
	"strings"
	"testing"

	"platen/internal/fonts"
	"platen/internal/layout"
	"platen/internal/logging"
	"platen/internal/snapshot"
	"platen/internal/testsupport"
)

func newEngine(t *testing.T) *layout.Engine {
	t.Helper()
	registry := fonts.NewRegistry(t.TempDir(), "", logging.NewNop())
	return layout.NewEngine(registry, logging.NewNop())
}

func mustSnapshot(t *testing.T, raw string) *snapshot.LayoutSnapshot {
	t.Helper()
	snap, err := snapshot.Validate([]byte(raw))
	if err != nil {
		t.Fatalf("snapshot invalid: %v", err)
	}
	return snap
}

func TestLayoutCanvasDimensions(t *testing.T) {
	engine := newEngine(t)
	snap := mustSnapshot(t, testsupport.Snapshot(t, "DIMS"))

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	// 3.5in x 4.5in at 150 dpi.
	if out.WidthPx != 525 || out.HeightPx != 675 {
		t.Fatalf("unexpected canvas %dx%d", out.WidthPx, out.HeightPx)
	}
}

func TestLayoutCentersHorizontalRun(t *testing.T) {
	engine := newEngine(t)
	snap := mustSnapshot(t, testsupport.Snapshot(t, "AB"))

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	glyphs := out.Layers[0].Blocks[0].Glyphs
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}

	// Anchor is at 1.75in x 2.25in on a 150 dpi canvas.
	anchorX, anchorY := 263, 338
	first, last := glyphs[0], glyphs[1]
	if first.Y != anchorY || last.Y != anchorY {
		t.Fatalf("baseline should sit at anchor y %d, got %d/%d", anchorY, first.Y, last.Y)
	}
	if first.X >= anchorX || last.X <= first.X {
		t.Fatalf("run should straddle anchor x %d: first=%d last=%d", anchorX, first.X, last.X)
	}
}

func TestLayoutAdvancesBaselinePerLine(t *testing.T) {
	engine := newEngine(t)
	snap := mustSnapshot(t, testsupport.Snapshot(t, "one\ntwo"))

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	glyphs := out.Layers[0].Blocks[0].Glyphs

	// 24pt -> 32px, line height 1.4 -> 44px baseline advance.
	sizePx := fonts.PointsToPixels(24)
	wantAdvance := int(float64(sizePx) * 1.4)
	firstLineY := glyphs[0].Y
	secondLineY := glyphs[len(glyphs)-1].Y
	if secondLineY-firstLineY != wantAdvance {
		t.Fatalf("baseline advance = %d, want %d", secondLineY-firstLineY, wantAdvance)
	}
}

func TestLayoutMarksSubstitutedFamily(t *testing.T) {
	engine := newEngine(t)
	raw := strings.Replace(testsupport.Snapshot(t, "x"), `"family":"Go"`, `"family":"Nonexistent Family"`, 1)
	snap := mustSnapshot(t, raw)

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	layer := out.Layers[0]
	if !layer.Substituted {
		t.Fatal("expected substitution flag")
	}
	if layer.Family != fonts.BuiltinFamily {
		t.Fatalf("expected built-in fallback, got %q", layer.Family)
	}
}

func TestVerticalLayoutStacksDownward(t *testing.T) {
	engine := newEngine(t)
	raw := strings.Replace(testsupport.Snapshot(t, "AB"), `"vertical":false`, `"vertical":true`, 1)
	snap := mustSnapshot(t, raw)

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	glyphs := out.Layers[0].Blocks[0].Glyphs
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}
	if glyphs[1].Y <= glyphs[0].Y {
		t.Fatalf("vertical glyphs should advance downward: %d then %d", glyphs[0].Y, glyphs[1].Y)
	}
	sizePx := fonts.PointsToPixels(24)
	if got := glyphs[1].Y - glyphs[0].Y; got != sizePx {
		t.Fatalf("cell advance = %d, want %d", got, sizePx)
	}
}

func TestVerticalLayoutWidensNarrowRunes(t *testing.T) {
	engine := newEngine(t)
	raw := strings.Replace(testsupport.Snapshot(t, "A"), `"vertical":false`, `"vertical":true`, 1)
	snap := mustSnapshot(t, raw)

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	glyphs := out.Layers[0].Blocks[0].Glyphs
	if glyphs[0].Rune != 'Ａ' {
		t.Fatalf("expected fullwidth A, got %q", glyphs[0].Rune)
	}
}

func TestVerticalLayoutMapsLongVowelMarksToVerticalBar(t *testing.T) {
	engine := newEngine(t)
	for _, mark := range []string{"ー", "－", "—", "―", "–", "-"} {
		raw := strings.Replace(testsupport.Snapshot(t, mark), `"vertical":false`, `"vertical":true`, 1)
		snap := mustSnapshot(t, raw)

		out, err := engine.Layout(snap)
		if err != nil {
			t.Fatalf("Layout failed for %q: %v", mark, err)
		}
		glyphs := out.Layers[0].Blocks[0].Glyphs
		if glyphs[0].Rune != '｜' {
			t.Fatalf("expected %q to render as fullwidth vertical bar, got %q", mark, glyphs[0].Rune)
		}
	}
}

func TestHorizontalLayoutKeepsLongVowelMarks(t *testing.T) {
	engine := newEngine(t)
	snap := mustSnapshot(t, testsupport.Snapshot(t, "ー"))

	out, err := engine.Layout(snap)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	glyphs := out.Layers[0].Blocks[0].Glyphs
	if glyphs[0].Rune != 'ー' {
		t.Fatalf("horizontal text must not rewrite runes, got %q", glyphs[0].Rune)
	}
}
