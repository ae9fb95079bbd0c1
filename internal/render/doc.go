// Package render paints computed glyph placements onto an off-screen
// pixel surface and encodes the result as a lossless PNG. The output is
// deterministic: identical input produces byte-identical bytes, which
// the content-addressed artifact keys depend on.
package render
