// Package partner is a typed client for the manufacturing partner's
// fulfillment REST API: order lifecycle, order line items, and catalog
// product/variant lookups. Error responses carry machine-readable
// partner text which the client surfaces verbatim, never just the HTTP
// status.
package partner
