// Package fulfillment drives a print order line through the end-to-end
// pipeline: validate the layout snapshot, render it to a print-ready
// PNG, persist the artifact under a content-derived key, resolve the
// partner catalog variant, and submit the fulfillment order. The
// orchestrator owns the state machine, idempotency on the
// (orderID, lineItemID) key, and retry-versus-terminal decisions.
package fulfillment
