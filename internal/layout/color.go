package layout

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHexColor parses a "#rrggbb" string into an opaque color. The
// validator guarantees the shape for snapshot input; this re-checks so
// the function is safe on its own.
func ParseHexColor(s string) (color.NRGBA, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q is not a 6-digit hex value", s)
	}
	value, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not a 6-digit hex value", s)
	}
	return color.NRGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xFF,
	}, nil
}
