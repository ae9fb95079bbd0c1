package variant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"platen/internal/logging"
	"platen/internal/services/partner"
)

// Method identifies which strategy produced a resolution.
type Method string

const (
	MethodDirectID              Method = "direct-id"
	MethodSKUMappingTable       Method = "sku-mapping-table"
	MethodCatalogLookupFallback Method = "catalog-lookup-fallback"
	MethodTitleParse            Method = "title-parse"
	MethodPropertyParse         Method = "property-parse"
)

// Hints is the identifying data a storefront order line supplies. Any
// field may be absent; SKU data may be stale.
type Hints struct {
	VariantID    int64             `json:"variantId,omitempty"`
	SKU          string            `json:"sku,omitempty"`
	VariantTitle string            `json:"variantTitle,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

func (h Hints) describe() string {
	var present []string
	if h.VariantID != 0 {
		present = append(present, fmt.Sprintf("variantId=%d", h.VariantID))
	}
	if h.SKU != "" {
		present = append(present, fmt.Sprintf("sku=%q", h.SKU))
	}
	if h.VariantTitle != "" {
		present = append(present, fmt.Sprintf("variantTitle=%q", h.VariantTitle))
	}
	if len(h.Properties) > 0 {
		present = append(present, fmt.Sprintf("properties=%v", h.Properties))
	}
	if len(present) == 0 {
		return "no hints present"
	}
	return strings.Join(present, ", ")
}

// Resolution is the authoritative outcome of variant resolution.
// Computed once per fulfillment attempt; the catalog can change between
// orders, so it is never cached across runs.
type Resolution struct {
	VariantID  int64
	Method     Method
	Confidence float64
}

// Attempt records why one strategy could not resolve the hints.
type Attempt struct {
	Method Method
	Reason string
}

// ResolutionError reports an exhaustive strategy failure. It names the
// hints that were present so the report is actionable for manual
// remediation.
type ResolutionError struct {
	Hints    Hints
	Attempts []Attempt
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	sb.WriteString("variant resolution failed (")
	sb.WriteString(e.Hints.describe())
	sb.WriteString(")")
	for _, attempt := range e.Attempts {
		fmt.Fprintf(&sb, "; %s: %s", attempt.Method, attempt.Reason)
	}
	return sb.String()
}

// Catalog is the partner catalog surface resolution needs.
type Catalog interface {
	GetVariant(ctx context.Context, id int64) (*partner.Variant, error)
	ListVariants(ctx context.Context, productID int64, limit, offset int) (*partner.VariantPage, error)
}

// Strategy resolves hints into a catalog variant, or explains why it
// cannot.
type Strategy interface {
	Method() Method
	Resolve(ctx context.Context, hints Hints) (*Resolution, error)
}

// Resolver runs an ordered strategy list; precedence is the slice order.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewResolver builds the production resolver with the canonical strategy
// precedence: direct-id, sku-mapping-table, catalog-lookup-fallback,
// title-parse, property-parse.
func NewResolver(catalog Catalog, table map[string]int64, baseProductID int64, logger *slog.Logger) *Resolver {
	return NewResolverWithStrategies(logger,
		&directIDStrategy{catalog: catalog},
		&mappingTableStrategy{table: table},
		&catalogSKUStrategy{catalog: catalog},
		&titleParseStrategy{catalog: catalog, productID: baseProductID},
		&propertyParseStrategy{catalog: catalog, productID: baseProductID},
	)
}

// NewResolverWithStrategies builds a resolver over an explicit strategy
// list (used to test precedence and isolation).
func NewResolverWithStrategies(logger *slog.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		logger:     logging.NewComponentLogger(logger, "variant"),
	}
}

// Resolve tries each strategy in order and returns the first success.
// An exhaustive failure returns a *ResolutionError that must be surfaced
// verbatim to the caller.
func (r *Resolver) Resolve(ctx context.Context, hints Hints) (*Resolution, error) {
	resErr := &ResolutionError{Hints: hints}
	for _, strategy := range r.strategies {
		resolution, err := strategy.Resolve(ctx, hints)
		if err != nil {
			resErr.Attempts = append(resErr.Attempts, Attempt{Method: strategy.Method(), Reason: err.Error()})
			continue
		}
		r.logger.Info("variant resolved",
			logging.Int64("variant_id", resolution.VariantID),
			logging.String("method", string(resolution.Method)),
			logging.Float64("confidence", resolution.Confidence))
		return resolution, nil
	}
	return nil, resErr
}
