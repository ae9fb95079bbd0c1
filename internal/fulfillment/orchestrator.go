package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"platen/internal/artifact"
	"platen/internal/config"
	"platen/internal/fonts"
	"platen/internal/layout"
	"platen/internal/logging"
	"platen/internal/render"
	"platen/internal/runs"
	"platen/internal/services"
	"platen/internal/services/objstore"
	"platen/internal/services/partner"
	"platen/internal/stage"
	"platen/internal/variant"
)

// pipelineStage binds a handler to the status transitions it owns. A
// stage with an empty processing status commits straight from start to
// done, which keeps read-only stages replayable after a crash.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      runs.Status
	processingStatus runs.Status
	doneStatus       runs.Status
}

// Orchestrator drives a run through the fulfillment stages, persisting
// every transition so interrupted runs resume where they stopped.
type Orchestrator struct {
	store  *runs.Store
	stages []pipelineStage
	logger *slog.Logger
}

// New wires the production pipeline from configuration.
func New(cfg *config.Config, store *runs.Store, partnerClient partner.API, storageClient objstore.API, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	// Constructors attach their own component attribute, so they get
	// the base logger rather than a pre-tagged one.
	registry := fonts.NewRegistry(cfg.Paths.FontsDir, cfg.Fonts.FallbackFamily, logger)
	engine := layout.NewEngine(registry, logger)
	rasterizer := render.NewRasterizer(logger)
	artifacts := artifact.NewStore(storageClient, logger)

	table, err := variant.LoadMappingTable(cfg.Resolver.MappingTablePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fulfillment", "load mapping table", "", err)
	}
	resolver := variant.NewResolver(partnerClient, table, cfg.Partner.BaseProductID, logger)

	base := time.Duration(cfg.Workflow.RetryBaseSeconds) * time.Second
	max := time.Duration(cfg.Workflow.RetryMaxSeconds) * time.Second
	storageRetry := services.NewRetryPolicy(cfg.Workflow.StorageRetryAttempts, base, max)
	submitRetry := services.NewRetryPolicy(cfg.Workflow.SubmitRetryAttempts, base, max)

	handlers := Handlers{
		Validate: &validateHandler{},
		Render: &renderHandler{
			engine:     engine,
			rasterizer: rasterizer,
			stagingDir: filepath.Join(cfg.Paths.DataDir, "staging"),
		},
		Store:   &storeHandler{artifacts: artifacts, retry: storageRetry},
		Resolve: &resolveHandler{resolver: resolver},
		Submit:  &submitHandler{client: partnerClient, retry: submitRetry},
		Confirm: &confirmHandler{client: partnerClient, retry: submitRetry},
	}
	return NewWithHandlers(store, handlers, logger), nil
}

// Handlers carries the per-stage implementations so tests can swap in
// fakes without standing up the full production wiring.
type Handlers struct {
	Validate stage.Handler
	Render   stage.Handler
	Store    stage.Handler
	Resolve  stage.Handler
	Submit   stage.Handler
	Confirm  stage.Handler
}

// NewWithHandlers builds an orchestrator over explicit stage handlers.
func NewWithHandlers(store *runs.Store, handlers Handlers, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:  store,
		logger: logging.NewComponentLogger(logger, "fulfillment"),
		stages: []pipelineStage{
			{
				name:             "validate",
				handler:          handlers.Validate,
				startStatus:      runs.StatusReceived,
				processingStatus: runs.StatusValidating,
				doneStatus:       runs.StatusValidated,
			},
			{
				name:             "render",
				handler:          handlers.Render,
				startStatus:      runs.StatusValidated,
				processingStatus: runs.StatusRendering,
				doneStatus:       runs.StatusRendered,
			},
			{
				name:             "store",
				handler:          handlers.Store,
				startStatus:      runs.StatusRendered,
				processingStatus: runs.StatusStoring,
				doneStatus:       runs.StatusStored,
			},
			{
				name:             "resolve",
				handler:          handlers.Resolve,
				startStatus:      runs.StatusStored,
				processingStatus: runs.StatusResolving,
				doneStatus:       runs.StatusVariantResolved,
			},
			{
				name:             "submit",
				handler:          handlers.Submit,
				startStatus:      runs.StatusVariantResolved,
				processingStatus: runs.StatusSubmitting,
				doneStatus:       runs.StatusSubmitted,
			},
			{
				name:        "confirm",
				handler:     handlers.Confirm,
				startStatus: runs.StatusSubmitted,
				doneStatus:  runs.StatusConfirmed,
			},
		},
	}
}

// Fulfill processes one order line item end to end. Calling it again
// for the same (order, line item) pair after a submission is a no-op
// that replays the stored outcome.
func (o *Orchestrator) Fulfill(ctx context.Context, req Request) (*Result, error) {
	if req.OrderID <= 0 || req.LineItemID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "fulfillment", "request", "order id and line item id must be positive", nil)
	}
	if len(req.RawSnapshot) == 0 {
		return nil, services.Wrap(services.ErrValidation, "fulfillment", "request", "raw snapshot is required", nil)
	}

	hintsJSON, err := encodeHints(req.VariantHints)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "fulfillment", "encode hints", "", err)
	}

	run, existed, err := o.store.CreateOrGet(ctx, req.OrderID, req.LineItemID, string(req.RawSnapshot), hintsJSON)
	if err != nil {
		return nil, err
	}

	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithOrderKey(ctx, run.OrderID, run.LineItemID)
	ctx = services.WithRequestID(ctx, run.CorrelationID)

	if existed {
		if run.Submitted() && run.Status != runs.StatusSubmitted {
			logging.WithContext(ctx, o.logger).Info("run already completed, replaying stored outcome",
				logging.String(logging.FieldEventType, "run_replayed"),
				logging.String("status", string(run.Status)))
			return resultFromRun(run), nil
		}
		if run.Status == runs.StatusFailed {
			logging.WithContext(ctx, o.logger).Info("retrying failed run",
				logging.String(logging.FieldEventType, "run_retried"),
				logging.String("failure_stage", run.FailureStage))
			// A run that already reached the partner retries from the
			// confirm stage only; creating a second partner order for
			// the same key is never allowed.
			if run.PartnerOrderID != 0 {
				run.Status = runs.StatusSubmitted
			} else {
				run.Status = runs.StatusReceived
			}
			run.FailureStage = ""
			run.ErrorMessage = ""
			if err := o.store.Update(ctx, run); err != nil {
				return nil, err
			}
		}
		if run.IsProcessing() {
			// An in-flight status on an existing row means a previous
			// process died mid-stage. Fold back to the stage's start so
			// the handler runs again from a clean state.
			run.Status = o.rewindProcessing(run.Status)
			if err := o.store.Update(ctx, run); err != nil {
				return nil, err
			}
		}
	}

	return o.advance(ctx, run)
}

// advance runs every stage whose start status matches the run, in
// pipeline order, until the run is confirmed or a stage fails.
func (o *Orchestrator) advance(ctx context.Context, run *runs.Run) (*Result, error) {
	for _, st := range o.stages {
		if run.Status != st.startStatus {
			continue
		}

		stageCtx := services.WithStage(ctx, st.name)
		stageLogger := logging.WithContext(stageCtx, o.logger)
		started := time.Now()
		stageLogger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_started"))

		if st.processingStatus != "" {
			run.Status = st.processingStatus
			if err := o.store.Update(stageCtx, run); err != nil {
				return nil, err
			}
		}

		if err := st.handler.Execute(stageCtx, run); err != nil {
			return nil, o.fail(stageCtx, run, st.name, err)
		}

		run.Status = st.doneStatus
		if err := o.store.Update(stageCtx, run); err != nil {
			return nil, err
		}

		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_completed"),
			logging.Duration("elapsed", time.Since(started)))
	}

	if run.Status != runs.StatusConfirmed {
		return nil, services.Wrap(services.ErrConfiguration, "fulfillment", "pipeline",
			fmt.Sprintf("run stalled in status %s", run.Status), nil)
	}
	return resultFromRun(run), nil
}

// fail records the failure on the run and wraps it in the tagged
// ingress failure contract.
func (o *Orchestrator) fail(ctx context.Context, run *runs.Run, stageName string, err error) error {
	failureStage := services.FailureStage(err)
	if failureStage == "" {
		failureStage = stageName
	}
	logger := logging.WithContext(ctx, o.logger)
	run.SetFailed(failureStage, err.Error())
	if updateErr := o.store.Update(ctx, run); updateErr != nil {
		logger.Error("failed to persist run failure", logging.Error(updateErr))
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failed"),
		logging.String("failure_stage", failureStage),
		logging.Error(err))

	return &StageFailure{
		OrderID:    run.OrderID,
		LineItemID: run.LineItemID,
		Stage:      failureStage,
		Reason:     err.Error(),
		err:        err,
	}
}

// rewindProcessing maps an in-flight status back to the start status of
// the stage that owns it.
func (o *Orchestrator) rewindProcessing(status runs.Status) runs.Status {
	for _, st := range o.stages {
		if st.processingStatus == status {
			return st.startStatus
		}
	}
	return runs.StatusReceived
}

// HealthCheck reports readiness of every stage handler.
func (o *Orchestrator) HealthCheck(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(o.stages))
	for _, st := range o.stages {
		checks = append(checks, st.handler.HealthCheck(ctx))
	}
	return checks
}

func encodeHints(hints variant.Hints) (string, error) {
	data, err := json.Marshal(hints)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
