package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"platen/internal/logging"
)

// BuiltinFamily is always available: the Go typeface compiled into the
// binary. It keeps rendering alive when no font assets exist on disk
// (notably in tests); it is not CJK-capable.
const BuiltinFamily = "Go"

// familyAssets maps the canonical family names from the authoring tool's
// vocabulary to their on-disk assets. Matching is case-sensitive on
// purpose: the tool emits these exact strings.
var familyAssets = map[string]string{
	"Inter":           "Inter-Regular.ttf",
	"Noto Sans JP":    "NotoSansJP-Regular.ttf",
	"Noto Serif JP":   "NotoSerifJP-Regular.ttf",
	"Zen Maru Gothic": "ZenMaruGothic-Regular.ttf",
}

// Family is a renderable typeface resolved by the registry.
type Family struct {
	Name string
	Font *sfnt.Font
}

// Registry loads the fixed set of typefaces once per process lifetime
// and maps requested family names to renderable families. Reads are safe
// for concurrent use after initialization.
type Registry struct {
	dir      string
	fallback string
	logger   *slog.Logger

	once     sync.Once
	families map[string]*sfnt.Font
}

// NewRegistry constructs a registry reading assets from dir. The
// fallback family receives all requests for unknown names; when its own
// asset is unavailable the built-in family takes its place.
func NewRegistry(dir, fallbackFamily string, logger *slog.Logger) *Registry {
	if strings.TrimSpace(fallbackFamily) == "" {
		fallbackFamily = "Noto Sans JP"
	}
	return &Registry{
		dir:      dir,
		fallback: fallbackFamily,
		logger:   logging.NewComponentLogger(logger, "fonts"),
	}
}

func (r *Registry) ensureLoaded() {
	r.once.Do(func() {
		r.families = make(map[string]*sfnt.Font, len(familyAssets)+1)

		builtin, err := opentype.Parse(goregular.TTF)
		if err != nil {
			// goregular is a compile-time asset; a parse failure here is a
			// build defect, not a runtime condition.
			panic(fmt.Sprintf("parse built-in font: %v", err))
		}
		r.families[BuiltinFamily] = builtin

		for family, asset := range familyAssets {
			path := filepath.Join(r.dir, asset)
			data, err := os.ReadFile(path)
			if err != nil {
				r.logger.Warn("font asset unavailable, family skipped",
					logging.String("family", family),
					logging.String("path", path),
					logging.Error(err))
				continue
			}
			if len(data) == 0 {
				r.logger.Warn("font asset empty, family skipped",
					logging.String("family", family),
					logging.String("path", path))
				continue
			}
			parsed, err := opentype.Parse(data)
			if err != nil {
				r.logger.Warn("font asset unparsable, family skipped",
					logging.String("family", family),
					logging.String("path", path),
					logging.Error(err))
				continue
			}
			r.families[family] = parsed
		}
	})
}

// ResolveFamily returns the registered family exactly matching the
// requested name, or the fallback family. The second return reports
// whether a substitution happened.
func (r *Registry) ResolveFamily(requested string) (Family, bool) {
	r.ensureLoaded()

	if f, ok := r.families[requested]; ok {
		return Family{Name: requested, Font: f}, false
	}

	fallback := r.fallbackFamily()
	r.logger.Warn("requested font family not registered, substituting",
		logging.String(logging.FieldEventType, "font_substituted"),
		logging.String("requested_family", requested),
		logging.String("substituted_family", fallback.Name))
	return fallback, true
}

// Fallback returns the family substitutions resolve to.
func (r *Registry) Fallback() Family {
	r.ensureLoaded()
	return r.fallbackFamily()
}

// Families lists the family names available for rendering.
func (r *Registry) Families() []string {
	r.ensureLoaded()
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	return names
}

func (r *Registry) fallbackFamily() Family {
	if f, ok := r.families[r.fallback]; ok {
		return Family{Name: r.fallback, Font: f}
	}
	return Family{Name: BuiltinFamily, Font: r.families[BuiltinFamily]}
}

// Face builds a renderable face for the family at the given pixel size.
// Size and DPI are chosen so one font unit equals one device pixel.
func Face(family Family, sizePx int) (font.Face, error) {
	if family.Font == nil {
		return nil, fmt.Errorf("family %q has no loaded font", family.Name)
	}
	face, err := opentype.NewFace(family.Font, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face for %q at %dpx: %w", family.Name, sizePx, err)
	}
	return face, nil
}
