package services_test

import (
	"errors"
	"strings"
	"testing"

	"platen/internal/services"
)

func TestWrapTagsMarkerAndContext(t *testing.T) {
	cause := errors.New("disk full")
	err := services.Wrap(services.ErrStorage, "store", "upload artifact", "", cause)

	if !errors.Is(err, services.ErrStorage) {
		t.Fatal("wrapped error should match its marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	msg := err.Error()
	if !strings.Contains(msg, "store") || !strings.Contains(msg, "upload artifact") || !strings.Contains(msg, "disk full") {
		t.Fatalf("message missing context: %q", msg)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "validate", "snapshot", "version must be 2", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatal("expected validation marker")
	}
	if !strings.Contains(err.Error(), "version must be 2") {
		t.Fatalf("message missing detail: %q", err.Error())
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name   string
		marker error
		want   bool
	}{
		{"storage", services.ErrStorage, true},
		{"submission", services.ErrSubmission, true},
		{"transient", services.ErrTransient, true},
		{"validation", services.ErrValidation, false},
		{"render", services.ErrRender, false},
		{"resolution", services.ErrResolution, false},
		{"terminal submission", services.ErrSubmissionTerminal, false},
		{"configuration", services.ErrConfiguration, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := services.Wrap(tc.marker, "stage", "op", "", nil)
			if got := services.Retryable(err); got != tc.want {
				t.Fatalf("Retryable = %v, want %v", got, tc.want)
			}
		})
	}
	if services.Retryable(nil) {
		t.Fatal("nil error is never retryable")
	}
}

func TestFailureStage(t *testing.T) {
	cases := []struct {
		marker error
		want   string
	}{
		{services.ErrValidation, "validation"},
		{services.ErrRender, "render"},
		{services.ErrStorage, "storage"},
		{services.ErrResolution, "resolution"},
		{services.ErrSubmission, "submission"},
		{services.ErrSubmissionTerminal, "submission"},
		{services.ErrConfiguration, "configuration"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "s", "o", "", nil)
		if got := services.FailureStage(err); got != tc.want {
			t.Errorf("FailureStage(%v) = %q, want %q", tc.marker, got, tc.want)
		}
	}
}
