// Package stage defines the contract the fulfillment orchestrator needs
// from each pipeline stage.
package stage

import (
	"context"

	"platen/internal/runs"
)

// Handler executes one pipeline stage against a run. Execute mutates the
// run's fields; the orchestrator persists them and owns status
// transitions and retry decisions.
type Handler interface {
	Execute(context.Context, *runs.Run) error
	HealthCheck(context.Context) Health
}
