package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for stage failure classification. Stages wrap their
// errors with one of these so the orchestrator can decide retry versus
// terminal failure on structured data instead of message matching.
var (
	// ErrValidation marks a malformed layout snapshot. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrRender marks a font, layout, or raster failure. Not retried.
	ErrRender = errors.New("render error")
	// ErrStorage marks an artifact upload fault. Retryable with backoff.
	ErrStorage = errors.New("storage error")
	// ErrResolution marks an unmappable SKU or variant hint set. Terminal;
	// requires the originating hints for manual remediation.
	ErrResolution = errors.New("resolution error")
	// ErrSubmission marks a transient partner order submission failure
	// (network fault or 5xx). Retryable with backoff.
	ErrSubmission = errors.New("submission error")
	// ErrSubmissionTerminal marks a partner 4xx rejection, including the
	// unknown-variant case where resolution claimed success but the
	// catalog disagrees. Never retried.
	ErrSubmissionTerminal = errors.New("terminal submission error")
	// ErrConfiguration marks invalid or missing runtime configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks a generic retryable fault.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging
// it with the provided marker for later classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error is worth retrying with backoff.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrStorage), errors.Is(err, ErrSubmission), errors.Is(err, ErrTransient):
		return true
	default:
		return false
	}
}

// FailureStage maps a stage error to the failure stage tag recorded on
// the fulfillment run. Unrecognized errors are attributed to submission
// since that is the last stage with external effects.
func FailureStage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrSubmissionTerminal), errors.Is(err, ErrSubmission):
		return "submission"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "submission"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
