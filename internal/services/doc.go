// Package services provides shared infrastructure for pipeline stages
// and external service clients: sentinel error markers used for
// retry-vs-terminal classification, context annotation helpers, and a
// bounded exponential-backoff retry policy.
package services
