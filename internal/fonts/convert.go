package fonts

import "math"

// PointsToPixels converts typographic points to device pixels at the CSS
// reference density (96 px per 72 pt), rounded to the nearest pixel.
func PointsToPixels(pt float64) int {
	return int(math.Round(pt * 96.0 / 72.0))
}

// InchesToPixels converts a physical length to device pixels at the
// given DPI, rounded to the nearest pixel.
func InchesToPixels(in, dpi float64) int {
	return int(math.Round(in * dpi))
}
