// Package artifact persists rendered print images to durable object
// storage under content-derived keys. Identical bytes always map to the
// identical key within an order/line scope, so re-uploads are idempotent
// and content changes can never overwrite a previously fulfilled
// artifact.
package artifact
