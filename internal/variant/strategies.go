package variant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"platen/internal/services/partner"
)

// directIDStrategy uses the supplied variant ID when the current catalog
// independently confirms it exists.
type directIDStrategy struct {
	catalog Catalog
}

func (s *directIDStrategy) Method() Method { return MethodDirectID }

func (s *directIDStrategy) Resolve(ctx context.Context, hints Hints) (*Resolution, error) {
	if hints.VariantID == 0 {
		return nil, errors.New("no variantId hint present")
	}
	if _, err := s.catalog.GetVariant(ctx, hints.VariantID); err != nil {
		if partner.IsNotFound(err) {
			return nil, fmt.Errorf("variantId %d not found in current catalog", hints.VariantID)
		}
		return nil, fmt.Errorf("catalog confirmation failed: %w", err)
	}
	return &Resolution{VariantID: hints.VariantID, Method: MethodDirectID, Confidence: 1.0}, nil
}

// mappingTableStrategy consults the legacy SKU mapping table.
type mappingTableStrategy struct {
	table map[string]int64
}

func (s *mappingTableStrategy) Method() Method { return MethodSKUMappingTable }

func (s *mappingTableStrategy) Resolve(_ context.Context, hints Hints) (*Resolution, error) {
	sku := strings.TrimSpace(hints.SKU)
	if sku == "" {
		return nil, errors.New("no sku hint present")
	}
	id, ok := s.table[sku]
	if !ok {
		return nil, fmt.Errorf("sku %q has no mapping-table entry", sku)
	}
	return &Resolution{VariantID: id, Method: MethodSKUMappingTable, Confidence: 0.97}, nil
}

// catalogSKUPattern matches catalog-style SKUs whose leading numeric
// component is plausible as a catalog variant ID (at least 6 digits)
// followed by a color/size suffix, e.g. "3990245_Black_S".
var catalogSKUPattern = regexp.MustCompile(`^(\d{6,})_`)

// catalogSKUStrategy parses the SKU's numeric prefix as a candidate
// catalog variant ID and confirms it by lookup.
type catalogSKUStrategy struct {
	catalog Catalog
}

func (s *catalogSKUStrategy) Method() Method { return MethodCatalogLookupFallback }

func (s *catalogSKUStrategy) Resolve(ctx context.Context, hints Hints) (*Resolution, error) {
	sku := strings.TrimSpace(hints.SKU)
	if sku == "" {
		return nil, errors.New("no sku hint present")
	}
	match := catalogSKUPattern.FindStringSubmatch(sku)
	if match == nil {
		return nil, fmt.Errorf("sku %q has no plausible catalog variant prefix", sku)
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("sku prefix %q is not a variant id", match[1])
	}
	if _, err := s.catalog.GetVariant(ctx, id); err != nil {
		if partner.IsNotFound(err) {
			return nil, fmt.Errorf("sku prefix %d not found in current catalog", id)
		}
		return nil, fmt.Errorf("catalog confirmation failed: %w", err)
	}
	return &Resolution{VariantID: id, Method: MethodCatalogLookupFallback, Confidence: 0.9}, nil
}

// titleParseStrategy parses a "<Color> / <Size>" variant title and finds
// the matching variant of the configured base product.
type titleParseStrategy struct {
	catalog   Catalog
	productID int64
}

func (s *titleParseStrategy) Method() Method { return MethodTitleParse }

func (s *titleParseStrategy) Resolve(ctx context.Context, hints Hints) (*Resolution, error) {
	title := strings.TrimSpace(hints.VariantTitle)
	if title == "" {
		return nil, errors.New("no variantTitle hint present")
	}
	parts := strings.Split(title, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("variantTitle %q is not in \"Color / Size\" form", title)
	}
	colorName, size := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	id, err := findByColorSize(ctx, s.catalog, s.productID, colorName, size)
	if err != nil {
		return nil, err
	}
	return &Resolution{VariantID: id, Method: MethodTitleParse, Confidence: 0.85}, nil
}

// propertyParseStrategy reads discrete Color/Size line item properties
// and matches them against the configured base product.
type propertyParseStrategy struct {
	catalog   Catalog
	productID int64
}

func (s *propertyParseStrategy) Method() Method { return MethodPropertyParse }

func (s *propertyParseStrategy) Resolve(ctx context.Context, hints Hints) (*Resolution, error) {
	if len(hints.Properties) == 0 {
		return nil, errors.New("no properties hint present")
	}
	colorName := propertyValue(hints.Properties, "Color")
	size := propertyValue(hints.Properties, "Size")
	if colorName == "" || size == "" {
		return nil, fmt.Errorf("properties lack Color/Size entries (have %v)", propertyNames(hints.Properties))
	}
	id, err := findByColorSize(ctx, s.catalog, s.productID, colorName, size)
	if err != nil {
		return nil, err
	}
	return &Resolution{VariantID: id, Method: MethodPropertyParse, Confidence: 0.8}, nil
}

func propertyValue(props map[string]string, name string) string {
	for key, value := range props {
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func propertyNames(props map[string]string) []string {
	names := make([]string, 0, len(props))
	for key := range props {
		names = append(names, key)
	}
	return names
}

// findByColorSize pages through the base product's catalog variants
// looking for a case-insensitive color+size match.
func findByColorSize(ctx context.Context, catalog Catalog, productID int64, colorName, size string) (int64, error) {
	if productID == 0 {
		return 0, errors.New("no base product configured for color/size matching")
	}
	offset := 0
	for {
		page, err := catalog.ListVariants(ctx, productID, partner.MaxPageLimit, offset)
		if err != nil {
			return 0, fmt.Errorf("list catalog variants of product %d: %w", productID, err)
		}
		for _, v := range page.Variants {
			if strings.EqualFold(strings.TrimSpace(v.Color), colorName) && strings.EqualFold(strings.TrimSpace(v.Size), size) {
				return v.ID, nil
			}
		}
		offset += len(page.Variants)
		if len(page.Variants) == 0 || offset >= page.Total {
			break
		}
	}
	return 0, fmt.Errorf("no variant of product %d matches color %q size %q", productID, colorName, size)
}
