package layout_test

import (
	"image/color"
	"testing"

	"platen/internal/layout"
)

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#000000", color.NRGBA{A: 0xFF}},
		{"#ffffff", color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}},
		{"#1a2b3c", color.NRGBA{R: 0x1A, G: 0x2B, B: 0x3C, A: 0xFF}},
		{" #FF0000 ", color.NRGBA{R: 0xFF, A: 0xFF}},
	}
	for _, tc := range cases {
		got, err := layout.ParseHexColor(tc.in)
		if err != nil {
			t.Errorf("ParseHexColor(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseHexColor(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "#fff", "red", "#12345g", "123456789"} {
		if _, err := layout.ParseHexColor(bad); err == nil {
			t.Errorf("ParseHexColor(%q) should fail", bad)
		}
	}
}
