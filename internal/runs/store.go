package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"platen/internal/config"
)

// ErrNotFound indicates no run exists for the requested key.
var ErrNotFound = errors.New("run not found")

// Store manages fulfillment run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the run database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// CreateOrGet inserts a new run for the (orderID, lineItemID) key or
// returns the existing one. The second return reports whether the run
// already existed.
func (s *Store) CreateOrGet(ctx context.Context, orderID, lineItemID int64, snapshotJSON, hintsJSON string) (*Run, bool, error) {
	existing, err := s.GetByKey(ctx, orderID, lineItemID)
	switch {
	case err == nil:
		return existing, true, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`INSERT INTO fulfillment_runs (
            order_id, line_item_id, correlation_id, status,
            snapshot_json, hints_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (order_id, line_item_id) DO NOTHING`,
		orderID, lineItemID, uuid.NewString(), StatusReceived,
		snapshotJSON, hintsJSON, now, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert run: %w", err)
	}

	// A concurrent insert for the same key may have won the conflict.
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		run, err := s.GetByKey(ctx, orderID, lineItemID)
		return run, true, err
	}

	run, err := s.GetByKey(ctx, orderID, lineItemID)
	return run, false, err
}

// GetByKey fetches the run for an (orderID, lineItemID) idempotency key.
func (s *Store) GetByKey(ctx context.Context, orderID, lineItemID int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+" FROM fulfillment_runs WHERE order_id = ? AND line_item_id = ?",
		orderID, lineItemID)
	return scanRun(row)
}

// GetByID fetches a run by its database identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM fulfillment_runs WHERE id = ?", id)
	return scanRun(row)
}

// Update persists the run's mutable fields.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil || run.ID == 0 {
		return errors.New("update requires a persisted run")
	}
	run.UpdatedAt = time.Now().UTC()
	err := s.execWithoutResultRetry(ctx,
		`UPDATE fulfillment_runs SET
            status = ?, snapshot_json = ?, hints_json = ?,
            rendered_file = ?, artifact_key = ?, artifact_url = ?, content_hash = ?,
            resolved_variant_id = ?, resolution_method = ?, resolution_confidence = ?,
            partner_order_id = ?, failure_stage = ?, error_message = ?, updated_at = ?
        WHERE id = ?`,
		run.Status, run.SnapshotJSON, run.HintsJSON,
		run.RenderedFile, run.ArtifactKey, run.ArtifactURL, run.ContentHash,
		run.ResolvedVariantID, run.ResolutionMethod, run.ResolutionConfidence,
		run.PartnerOrderID, run.FailureStage, run.ErrorMessage,
		run.UpdatedAt.Format(time.RFC3339Nano),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", run.ID, err)
	}
	return nil
}

// List returns runs ordered newest-first, up to limit (0 = all).
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := selectColumns + " FROM fulfillment_runs ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Stats aggregates run counts per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM fulfillment_runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

const selectColumns = `SELECT
    id, order_id, line_item_id, correlation_id, status,
    snapshot_json, hints_json, rendered_file, artifact_key, artifact_url, content_hash,
    resolved_variant_id, resolution_method, resolution_confidence,
    partner_order_id, failure_stage, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt, updatedAt string
	err := row.Scan(
		&run.ID, &run.OrderID, &run.LineItemID, &run.CorrelationID, &run.Status,
		&run.SnapshotJSON, &run.HintsJSON, &run.RenderedFile, &run.ArtifactKey, &run.ArtifactURL, &run.ContentHash,
		&run.ResolvedVariantID, &run.ResolutionMethod, &run.ResolutionConfidence,
		&run.PartnerOrderID, &run.FailureStage, &run.ErrorMessage, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if run.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if run.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
