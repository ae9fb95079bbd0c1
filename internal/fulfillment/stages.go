package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"platen/internal/artifact"
	"platen/internal/layout"
	"platen/internal/render"
	"platen/internal/runs"
	"platen/internal/services"
	"platen/internal/services/partner"
	"platen/internal/snapshot"
	"platen/internal/stage"
	"platen/internal/variant"
)

// validateHandler checks the raw snapshot against the v2 schema.
type validateHandler struct{}

func (h *validateHandler) Execute(_ context.Context, run *runs.Run) error {
	if _, err := snapshot.Validate([]byte(run.SnapshotJSON)); err != nil {
		return services.Wrap(services.ErrValidation, "validate", "snapshot", "", err)
	}
	return nil
}

func (h *validateHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("validate")
}

// renderHandler lays out and rasterizes the snapshot, writing the PNG to
// a staging file for the store stage.
type renderHandler struct {
	engine     *layout.Engine
	rasterizer *render.Rasterizer
	stagingDir string
}

func (h *renderHandler) Execute(_ context.Context, run *runs.Run) error {
	snap, err := snapshot.Validate([]byte(run.SnapshotJSON))
	if err != nil {
		// A snapshot that passed the validate stage cannot fail here
		// unless the stored document was tampered with.
		return services.Wrap(services.ErrValidation, "render", "re-validate snapshot", "", err)
	}

	placed, err := h.engine.Layout(snap)
	if err != nil {
		return services.Wrap(services.ErrRender, "render", "layout", "", err)
	}
	png, err := h.rasterizer.Render(placed)
	if err != nil {
		return services.Wrap(services.ErrRender, "render", "rasterize", "", err)
	}

	if err := os.MkdirAll(h.stagingDir, 0o755); err != nil {
		return services.Wrap(services.ErrRender, "render", "create staging dir", "", err)
	}
	path := filepath.Join(h.stagingDir, fmt.Sprintf("order-%d-item-%d.png", run.OrderID, run.LineItemID))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return services.Wrap(services.ErrRender, "render", "write staging file", "", err)
	}

	run.RenderedFile = path
	run.ContentHash = artifact.ContentHash(png)
	return nil
}

func (h *renderHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("render")
}

// storeHandler uploads the rendered PNG under its content-derived key,
// retrying transient storage faults with backoff.
type storeHandler struct {
	artifacts *artifact.Store
	retry     services.RetryPolicy
}

func (h *storeHandler) Execute(ctx context.Context, run *runs.Run) error {
	data, err := os.ReadFile(run.RenderedFile)
	if err != nil {
		return services.Wrap(services.ErrRender, "store", "read rendered file", "rerun rendering", err)
	}

	var stored artifact.Stored
	err = h.retry.Do(ctx, "artifact upload", nil, func() error {
		var putErr error
		stored, putErr = h.artifacts.Put(ctx, data, run.OrderID, run.LineItemID)
		if putErr != nil {
			return services.Wrap(services.ErrStorage, "store", "upload artifact", "", putErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.ArtifactKey = stored.Key
	run.ArtifactURL = stored.PublicURL
	run.ContentHash = stored.ContentHash
	return nil
}

func (h *storeHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("store")
}

// resolveHandler maps the run's variant hints to a catalog variant ID.
// Resolution failures are data problems, never retried.
type resolveHandler struct {
	resolver *variant.Resolver
}

func (h *resolveHandler) Execute(ctx context.Context, run *runs.Run) error {
	hints, err := decodeHints(run.HintsJSON)
	if err != nil {
		return services.Wrap(services.ErrResolution, "resolve", "decode hints", "", err)
	}

	resolution, err := h.resolver.Resolve(ctx, hints)
	if err != nil {
		return services.Wrap(services.ErrResolution, "resolve", "variant", "", err)
	}

	run.ResolvedVariantID = resolution.VariantID
	run.ResolutionMethod = string(resolution.Method)
	run.ResolutionConfidence = resolution.Confidence
	return nil
}

func (h *resolveHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("resolve")
}

// submitHandler places the partner fulfillment order carrying the
// resolved variant and the stored artifact URL.
type submitHandler struct {
	client partner.API
	retry  services.RetryPolicy
}

func (h *submitHandler) Execute(ctx context.Context, run *runs.Run) error {
	req := partner.CreateOrderRequest{
		ExternalOrderID: strconv.FormatInt(run.OrderID, 10),
		Items: []partner.OrderItem{{
			ExternalLineItemID: strconv.FormatInt(run.LineItemID, 10),
			VariantID:          run.ResolvedVariantID,
			Quantity:           1,
			Files:              []partner.FileRef{{Type: "default", URL: run.ArtifactURL}},
		}},
	}

	var order *partner.Order
	err := h.retry.Do(ctx, "order submission", nil, func() error {
		var submitErr error
		order, submitErr = h.client.CreateOrder(ctx, req)
		if submitErr != nil {
			return classifySubmission(submitErr, run)
		}
		return nil
	})
	if err != nil {
		return err
	}

	run.PartnerOrderID = order.ID
	return nil
}

func (h *submitHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("submit")
}

// confirmHandler verifies the submitted order exists on the partner
// side. It only reads, so an interrupted confirmation can always be
// replayed without a second submission.
type confirmHandler struct {
	client partner.API
	retry  services.RetryPolicy
}

func (h *confirmHandler) Execute(ctx context.Context, run *runs.Run) error {
	if run.PartnerOrderID == 0 {
		return services.Wrap(services.ErrSubmissionTerminal, "confirm", "order", "run submitted without a partner order id", nil)
	}
	return h.retry.Do(ctx, "order confirmation", nil, func() error {
		if _, err := h.client.GetOrder(ctx, run.PartnerOrderID); err != nil {
			return classifySubmission(err, run)
		}
		return nil
	})
}

func (h *confirmHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("confirm")
}

// classifySubmission splits partner failures into retryable transport
// faults and terminal rejections. A 4xx mentioning the variant after
// resolution claimed success is a resolution/catalog mismatch and is
// surfaced distinctly.
func classifySubmission(err error, run *runs.Run) error {
	var apiErr *partner.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Retryable() {
			return services.Wrap(services.ErrSubmission, "submit", "partner api", "", err)
		}
		if mentionsVariant(apiErr.Message) {
			detail := fmt.Sprintf("partner rejected variant %d resolved via %s", run.ResolvedVariantID, run.ResolutionMethod)
			return services.Wrap(services.ErrSubmissionTerminal, "submit", "variant mismatch", detail, err)
		}
		return services.Wrap(services.ErrSubmissionTerminal, "submit", "partner api", "", err)
	}
	// Transport-level failure with no partner response.
	return services.Wrap(services.ErrSubmission, "submit", "partner api", "", err)
}

func mentionsVariant(message string) bool {
	return strings.Contains(strings.ToLower(message), "variant")
}

func decodeHints(hintsJSON string) (variant.Hints, error) {
	var hints variant.Hints
	if hintsJSON == "" {
		return hints, nil
	}
	if err := json.Unmarshal([]byte(hintsJSON), &hints); err != nil {
		return hints, err
	}
	return hints, nil
}
