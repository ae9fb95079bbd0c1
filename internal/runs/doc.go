// Package runs persists fulfillment runs in SQLite. A run is the unit
// of idempotency, keyed by (orderID, lineItemID); durable state is what
// lets a retried webhook delivery short-circuit instead of re-submitting
// a partner order.
package runs
