// Package fonts owns the process-wide typeface registry. Font assets are
// loaded from disk exactly once, on first use, behind a sync.Once so
// concurrent first-use cannot double-register families. A request for an
// unknown family resolves to a designated CJK-capable fallback rather
// than failing the render.
package fonts
