package snapshot

// SchemaVersion is the only layout snapshot version this pipeline
// accepts. Any other value is rejected outright; relaxing the schema is
// a version bump, never a silent acceptance.
const SchemaVersion = 2

// Fixed literals the v2 schema pins down. The schema intentionally
// under-specifies flexibility it does not yet support.
const (
	OriginTopLeft         = "top-left"
	TextOrientationUpright = "upright"
	HyphenPolicyJPLongVbar = "jp-long-vbar"
	AnchorCenterBaseline   = "center-baseline"

	OrientationHorizontal = "horizontal"
	OrientationVertical   = "vertical"
)

// PrintArea is the physical print region in inches at a target DPI.
type PrintArea struct {
	WidthIn  float64 `json:"widthIn" validate:"gt=0"`
	HeightIn float64 `json:"heightIn" validate:"gt=0"`
	DPI      float64 `json:"dpi" validate:"gt=0"`
}

// CanvasPx is the design-time pixel canvas used by the authoring tool.
// It scales proportionally; it never decides the final raster size.
type CanvasPx struct {
	W int `json:"w" validate:"gt=0"`
	H int `json:"h" validate:"gt=0"`
}

// Font describes the typeface request for a text layer.
type Font struct {
	Family          string  `json:"family" validate:"required"`
	SizePt          float64 `json:"sizePt" validate:"gt=0"`
	LineHeight      float64 `json:"lineHeight" validate:"gt=0"`
	LetterSpacingEm float64 `json:"letterSpacingEm" validate:"gte=0"`
	Vertical        bool    `json:"vertical"`
	TextOrientation string  `json:"textOrientation" validate:"eq=upright"`
	HyphenPolicy    string  `json:"hyphenPolicy" validate:"eq=jp-long-vbar"`
}

// Align anchors text placement. The v2 schema supports only
// center/baseline anchoring.
type Align struct {
	H string `json:"h" validate:"eq=center"`
	V string `json:"v" validate:"eq=baseline"`
}

// TextBlock positions one run of text in inches from the origin.
type TextBlock struct {
	Text   string  `json:"text" validate:"required"`
	XIn    float64 `json:"xIn" validate:"gte=0"`
	YIn    float64 `json:"yIn" validate:"gte=0"`
	Anchor string  `json:"anchor" validate:"eq=center-baseline"`
}

// TextLayer is one paintable layer; array order is paint order.
type TextLayer struct {
	Font       Font        `json:"font"`
	Color      string      `json:"color" validate:"hex6color"`
	Align      Align       `json:"align"`
	TextBlocks []TextBlock `json:"textBlocks" validate:"min=1,dive"`
}

// Meta carries auxiliary authoring hints. Optional fields may be absent.
type Meta struct {
	BaseFontSizeRequested float64   `json:"baseFontSizeRequested" validate:"gte=0"`
	Orientation           string    `json:"orientation" validate:"oneof=horizontal vertical"`
	PrintBoxPx            *CanvasPx `json:"printBoxPx,omitempty"`
	CanvasPx              *CanvasPx `json:"canvasPx,omitempty"`
}

// LayoutSnapshot is the versioned document describing text layers and
// their placement on a print canvas. Immutable once validated.
type LayoutSnapshot struct {
	Version   int         `json:"version" validate:"eq=2"`
	PrintArea PrintArea   `json:"printArea"`
	Origin    string      `json:"origin" validate:"eq=top-left"`
	CanvasPx  CanvasPx    `json:"canvasPx"`
	Layers    []TextLayer `json:"layers" validate:"min=1,dive"`
	Meta      Meta        `json:"meta"`
}
