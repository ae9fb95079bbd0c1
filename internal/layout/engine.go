package layout

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"golang.org/x/image/font"

	"platen/internal/fonts"
	"platen/internal/logging"
	"platen/internal/snapshot"
)

// Glyph is a single positioned glyph. X,Y locate the baseline origin
// (the drawing dot) in device pixels relative to the top-left canvas
// origin.
type Glyph struct {
	Rune rune
	X    int
	Y    int
}

// Block is one placed text run.
type Block struct {
	Text   string
	Glyphs []Glyph
}

// Layer carries everything the rasterizer needs to paint one text layer.
// Paint order equals slice order in Layout.Layers.
type Layer struct {
	Family      string
	Substituted bool
	SizePx      int
	Color       color.NRGBA
	Vertical    bool
	Face        font.Face
	Blocks      []Block
}

// Layout is the pixel-space placement of an entire snapshot.
type Layout struct {
	WidthPx  int
	HeightPx int
	Layers   []Layer
}

// Engine computes glyph placements for validated snapshots.
type Engine struct {
	registry *fonts.Registry
	logger   *slog.Logger
}

// NewEngine constructs a layout engine over the given font registry.
func NewEngine(registry *fonts.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "layout"),
	}
}

// Layout converts the snapshot's physical units into device pixels at
// the snapshot's target DPI and anchors every text block. Later layers
// paint over earlier ones; no collision detection is performed.
func (e *Engine) Layout(snap *snapshot.LayoutSnapshot) (*Layout, error) {
	dpi := snap.PrintArea.DPI
	out := &Layout{
		WidthPx:  fonts.InchesToPixels(snap.PrintArea.WidthIn, dpi),
		HeightPx: fonts.InchesToPixels(snap.PrintArea.HeightIn, dpi),
	}
	if out.WidthPx <= 0 || out.HeightPx <= 0 {
		return nil, fmt.Errorf("degenerate canvas %dx%d at %g dpi", out.WidthPx, out.HeightPx, dpi)
	}

	for i, src := range snap.Layers {
		layer, err := e.layoutLayer(src, dpi)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		out.Layers = append(out.Layers, layer)
	}
	return out, nil
}

func (e *Engine) layoutLayer(src snapshot.TextLayer, dpi float64) (Layer, error) {
	family, substituted := e.registry.ResolveFamily(src.Font.Family)

	sizePx := fonts.PointsToPixels(src.Font.SizePt)
	if sizePx <= 0 {
		return Layer{}, fmt.Errorf("font size %gpt rounds to zero pixels", src.Font.SizePt)
	}
	face, err := fonts.Face(family, sizePx)
	if err != nil {
		return Layer{}, err
	}

	col, err := ParseHexColor(src.Color)
	if err != nil {
		return Layer{}, err
	}

	spacingPx := int(float64(sizePx) * src.Font.LetterSpacingEm)
	lineAdvancePx := int(float64(sizePx) * src.Font.LineHeight)
	if lineAdvancePx <= 0 {
		lineAdvancePx = sizePx
	}

	layer := Layer{
		Family:      family.Name,
		Substituted: substituted,
		SizePx:      sizePx,
		Color:       col,
		Vertical:    src.Font.Vertical,
		Face:        face,
	}

	for _, block := range src.TextBlocks {
		x := fonts.InchesToPixels(block.XIn, dpi)
		y := fonts.InchesToPixels(block.YIn, dpi)
		var placed Block
		if src.Font.Vertical {
			placed = placeVertical(face, block.Text, x, y, sizePx, spacingPx, lineAdvancePx)
		} else {
			placed = placeHorizontal(face, block.Text, x, y, spacingPx, lineAdvancePx)
		}
		layer.Blocks = append(layer.Blocks, placed)
	}
	return layer, nil
}

// placeHorizontal anchors each line of text center-baseline: the run is
// horizontally centered on x and its baseline sits at y. Additional
// lines advance the baseline downward by the line height.
func placeHorizontal(face font.Face, text string, x, y, spacingPx, lineAdvancePx int) Block {
	block := Block{Text: text}
	baseline := y
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		if len(runes) == 0 {
			baseline += lineAdvancePx
			continue
		}

		advances := make([]int, len(runes))
		total := 0
		for i, r := range runes {
			advances[i] = runeAdvancePx(face, r)
			total += advances[i]
		}
		total += spacingPx * (len(runes) - 1)

		dot := x - total/2
		for i, r := range runes {
			block.Glyphs = append(block.Glyphs, Glyph{Rune: r, X: dot, Y: baseline})
			dot += advances[i] + spacingPx
		}
		baseline += lineAdvancePx
	}
	return block
}

func runeAdvancePx(face font.Face, r rune) int {
	adv := font.MeasureString(face, string(r))
	return adv.Ceil()
}
