package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"platen/internal/layout"
	"platen/internal/logging"
)

// Rasterizer draws placed layers in order onto a white surface sized to
// the print area and encodes them losslessly. The stdlib PNG encoder
// embeds no timestamps or ancillary metadata, so identical layouts yield
// identical bytes.
type Rasterizer struct {
	logger *slog.Logger
}

// NewRasterizer constructs a rasterizer.
func NewRasterizer(logger *slog.Logger) *Rasterizer {
	return &Rasterizer{logger: logging.NewComponentLogger(logger, "render")}
}

// Render paints the layout and returns PNG bytes.
func (r *Rasterizer) Render(l *layout.Layout) ([]byte, error) {
	if l == nil || l.WidthPx <= 0 || l.HeightPx <= 0 {
		return nil, fmt.Errorf("render: missing or degenerate layout")
	}

	surface := image.NewRGBA(image.Rect(0, 0, l.WidthPx, l.HeightPx))
	draw.Draw(surface, surface.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	glyphs := 0
	for _, layer := range l.Layers {
		drawer := font.Drawer{
			Dst:  surface,
			Src:  image.NewUniform(layer.Color),
			Face: layer.Face,
		}
		for _, block := range layer.Blocks {
			for _, glyph := range block.Glyphs {
				drawer.Dot = fixed.P(glyph.X, glyph.Y)
				drawer.DrawString(string(glyph.Rune))
				glyphs++
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	r.logger.Debug("rendered layout",
		logging.Int("width_px", l.WidthPx),
		logging.Int("height_px", l.HeightPx),
		logging.Int("layers", len(l.Layers)),
		logging.Int("glyphs", glyphs),
		logging.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
