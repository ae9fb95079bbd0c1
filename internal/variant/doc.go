// Package variant maps order-line identifying data (partner variant ID,
// SKU, variant title, free-form properties) onto a single authoritative
// partner catalog variant ID through an explicit ordered strategy list.
// The first strategy to succeed wins; if every strategy fails the
// resolver reports which hints were present and why each strategy
// failed, and never silently defaults to an arbitrary variant.
package variant
