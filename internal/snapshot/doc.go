// Package snapshot defines the versioned layout-snapshot document
// authored by the design tool and validates raw snapshot JSON against
// the fixed v2 schema before any rendering work happens.
package snapshot
