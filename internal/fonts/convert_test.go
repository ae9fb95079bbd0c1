package fonts_test

import (
	"testing"

	"platen/internal/fonts"
)

func TestPointsToPixels(t *testing.T) {
	cases := []struct {
		pt   float64
		want int
	}{
		{72, 96},
		{36, 48},
		{24, 32},
		{12, 16},
		{10.5, 14},
		{0.1, 0},
	}
	for _, tc := range cases {
		if got := fonts.PointsToPixels(tc.pt); got != tc.want {
			t.Errorf("PointsToPixels(%v) = %d, want %d", tc.pt, got, tc.want)
		}
	}
}

func TestInchesToPixels(t *testing.T) {
	cases := []struct {
		in   float64
		dpi  float64
		want int
	}{
		{1, 300, 300},
		{3.5, 150, 525},
		{4.5, 150, 675},
		{0.333, 300, 100},
	}
	for _, tc := range cases {
		if got := fonts.InchesToPixels(tc.in, tc.dpi); got != tc.want {
			t.Errorf("InchesToPixels(%v, %v) = %d, want %d", tc.in, tc.dpi, got, tc.want)
		}
	}
}
