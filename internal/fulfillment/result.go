package fulfillment

import (
	"encoding/json"
	"fmt"

	"platen/internal/runs"
	"platen/internal/variant"
)

// Request is the orchestrator's entry contract, decoded from the
// upstream webhook layer.
type Request struct {
	OrderID      int64           `json:"orderId"`
	LineItemID   int64           `json:"lineItemId"`
	RawSnapshot  json.RawMessage `json:"rawSnapshot"`
	VariantHints variant.Hints   `json:"variantHints"`
}

// Result is the success record of a fulfillment run.
type Result struct {
	OrderID           int64  `json:"orderId"`
	LineItemID        int64  `json:"lineItemId"`
	ArtifactURL       string `json:"artifactUrl"`
	ResolvedVariantID int64  `json:"resolvedVariantId"`
	ResolutionMethod  string `json:"resolutionMethod"`
	PartnerOrderID    int64  `json:"partnerOrderId"`
}

// StageFailure is the tagged failure half of the ingress contract. It
// always carries the stage, the reason, and the order/line identifiers
// needed to reproduce.
type StageFailure struct {
	OrderID    int64  `json:"orderId"`
	LineItemID int64  `json:"lineItemId"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`

	err error
}

func (f *StageFailure) Error() string {
	return fmt.Sprintf("fulfillment of order %d item %d failed at %s: %s",
		f.OrderID, f.LineItemID, f.Stage, f.Reason)
}

func (f *StageFailure) Unwrap() error {
	return f.err
}

func resultFromRun(run *runs.Run) *Result {
	return &Result{
		OrderID:           run.OrderID,
		LineItemID:        run.LineItemID,
		ArtifactURL:       run.ArtifactURL,
		ResolvedVariantID: run.ResolvedVariantID,
		ResolutionMethod:  run.ResolutionMethod,
		PartnerOrderID:    run.PartnerOrderID,
	}
}
