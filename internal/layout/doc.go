// Package layout converts a validated layout snapshot from physical
// units into device-pixel glyph placements: canvas sizing at the target
// DPI, font and size resolution per layer, center/baseline anchoring per
// text block, and top-to-bottom column layout for vertical CJK text.
package layout
