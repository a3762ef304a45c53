package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_decision_store.go -package=mocks agent-relay/internal/storage DecisionStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DecisionStore defines the interface for decision journal operations.
type DecisionStore interface {
	// Insert stores a record. An empty ID is replaced with a new UUID.
	Insert(ctx context.Context, rec *DecisionRecord) error
	// CountByOutcome returns the number of records per outcome.
	CountByOutcome(ctx context.Context) (map[string]int, error)
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]DecisionRecord, error)
	// GetByID gets a record by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DecisionRecord, error)
	// Ping verifies the journal is reachable.
	Ping(ctx context.Context) error
}

// DecisionRepo provides methods for decision journal operations.
// It implements the DecisionStore interface.
type DecisionRepo struct {
	db *sql.DB
}

// NewDecisionRepo creates a new DecisionRepo.
func NewDecisionRepo(db *sql.DB) *DecisionRepo {
	return &DecisionRepo{db: db}
}

// Insert stores a record. ID and CreatedAt are filled in when empty.
func (r *DecisionRepo) Insert(ctx context.Context, rec *DecisionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decisions (id, request_id, created_at, history_len, outcome, tool_name, latency_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RequestID, rec.CreatedAt, rec.HistoryLen, rec.Outcome, rec.ToolName, rec.LatencyMs, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// Record stores rec in the journal. It lets the repo act as the service's recorder.
func (r *DecisionRepo) Record(ctx context.Context, rec DecisionRecord) error {
	return r.Insert(ctx, &rec)
}

// CountByOutcome returns the number of records per outcome.
// Outcomes with no records are absent from the map.
func (r *DecisionRepo) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM decisions GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// ListRecent returns up to limit records ordered by creation time, newest first.
// Returns an empty slice if no records exist (not an error).
func (r *DecisionRepo) ListRecent(ctx context.Context, limit int) ([]DecisionRecord, error) {
	if limit <= 0 {
		return []DecisionRecord{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, request_id, created_at, history_len, outcome, tool_name, latency_ms, error
		FROM decisions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []DecisionRecord{}
	for rows.Next() {
		rec, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// GetByID gets a record by its ID. Returns ErrNotFound if not found.
func (r *DecisionRepo) GetByID(ctx context.Context, id string) (*DecisionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, request_id, created_at, history_len, outcome, tool_name, latency_ms, error
		FROM decisions WHERE id = ?`,
		id,
	)

	rec, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Ping verifies the journal database is reachable.
func (r *DecisionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(s scanner) (*DecisionRecord, error) {
	var (
		rec       DecisionRecord
		requestID sql.NullString
		errText   sql.NullString
	)
	err := s.Scan(&rec.ID, &requestID, &rec.CreatedAt, &rec.HistoryLen, &rec.Outcome, &rec.ToolName, &rec.LatencyMs, &errText)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan decision: %w", err)
	}
	rec.RequestID = requestID.String
	rec.Error = errText.String
	return &rec, nil
}
