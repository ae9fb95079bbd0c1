package layout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/text/width"
)

// verticalOverrides maps runes that need a rotated vertical variant when
// laid out upright top-to-bottom. The `jp-long-vbar` hyphen policy: long
// vowel marks and dash-like punctuation become the fullwidth vertical
// bar instead of a horizontal stroke.
var verticalOverrides = map[rune]rune{
	'ー': '｜', // katakana-hiragana prolonged sound mark
	'－': '｜', // fullwidth hyphen-minus
	'—': '｜', // em dash
	'―': '｜', // horizontal bar
	'–': '｜', // en dash
	'-': '｜',
}

// verticalCellRune selects the glyph actually drawn for r in an upright
// vertical column. Narrow forms are widened to their fullwidth
// counterparts so Latin and halfwidth kana occupy a full cell.
func verticalCellRune(r rune) rune {
	if v, ok := verticalOverrides[r]; ok {
		return v
	}
	widened := []rune(width.Widen.String(string(r)))
	if len(widened) == 1 {
		return widened[0]
	}
	return r
}

// placeVertical stacks glyphs top-to-bottom in a single column per line:
// the column is horizontally centered on x, the first glyph's baseline
// sits at y, and each following glyph advances downward by the em box
// plus letter spacing. Additional newline-separated lines start a new
// column advancing leftward, per vertical CJK convention.
func placeVertical(face font.Face, text string, x, y, sizePx, spacingPx, lineAdvancePx int) Block {
	block := Block{Text: text}
	columnX := x
	for _, line := range strings.Split(text, "\n") {
		baseline := y
		for _, r := range []rune(line) {
			cell := verticalCellRune(r)
			adv := runeAdvancePx(face, cell)
			block.Glyphs = append(block.Glyphs, Glyph{
				Rune: cell,
				X:    columnX - adv/2,
				Y:    baseline,
			})
			baseline += sizePx + spacingPx
		}
		columnX -= lineAdvancePx
	}
	return block
}
