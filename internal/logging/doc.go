// Package logging configures slog-based structured logging for the
// fulfillment pipeline: a human-readable console handler, a JSON handler
// for machine consumption, standardized attribute helpers, and
// context-derived fields (run, order key, stage, correlation ID).
package logging
