package runs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a fulfillment run.
type Status string

const (
	StatusReceived        Status = "received"
	StatusValidating      Status = "validating"
	StatusValidated       Status = "validated"
	StatusRendering       Status = "rendering"
	StatusRendered        Status = "rendered"
	StatusStoring         Status = "storing"
	StatusStored          Status = "stored"
	StatusResolving       Status = "resolving"
	StatusVariantResolved Status = "variant_resolved"
	StatusSubmitting      Status = "submitting"
	StatusSubmitted       Status = "submitted"
	StatusConfirmed       Status = "confirmed"
	StatusFailed          Status = "failed"
)

var allStatuses = []Status{
	StatusReceived,
	StatusValidating,
	StatusValidated,
	StatusRendering,
	StatusRendered,
	StatusStoring,
	StatusStored,
	StatusResolving,
	StatusVariantResolved,
	StatusSubmitting,
	StatusSubmitted,
	StatusConfirmed,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusValidating: {},
	StatusRendering:  {},
	StatusStoring:    {},
	StatusResolving:  {},
	StatusSubmitting: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// Run represents a fulfillment run persisted in SQLite.
type Run struct {
	ID            int64
	OrderID       int64
	LineItemID    int64
	CorrelationID string
	Status        Status

	SnapshotJSON string
	HintsJSON    string

	RenderedFile string
	ArtifactKey  string
	ArtifactURL  string
	ContentHash  string

	ResolvedVariantID    int64
	ResolutionMethod     string
	ResolutionConfidence float64

	PartnerOrderID int64

	FailureStage string
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (r Run) IsProcessing() bool {
	return IsProcessingStatus(r.Status)
}

// Submitted reports whether the run already reached the partner. A run
// in this state must never be re-rendered or re-submitted; callers
// re-report the stored outcome instead.
func (r Run) Submitted() bool {
	return r.Status == StatusSubmitted || r.Status == StatusConfirmed
}

// Terminal reports whether the run can make no further progress.
func (r Run) Terminal() bool {
	return r.Status == StatusConfirmed || r.Status == StatusFailed
}

// SetFailed marks the run failed at the given stage with a diagnostic
// message.
func (r *Run) SetFailed(stage, message string) {
	r.Status = StatusFailed
	r.FailureStage = stage
	r.ErrorMessage = message
}
