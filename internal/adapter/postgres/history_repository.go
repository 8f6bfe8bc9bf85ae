package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

type historyRepository struct {
	db DB
}

func NewHistoryRepository(db DB) interfaces.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.StateHistoryEntry) error {
	query := `
		INSERT INTO order_state_log (order_id, stage, started_at, ended_at, employee_id, task_token, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`

	var token *string
	if entry.TaskToken != "" {
		token = &entry.TaskToken
	}

	err := r.db.QueryRow(ctx, query,
		entry.OrderID, entry.Stage, entry.StartedAt, entry.EndedAt,
		entry.EmployeeID, token, entry.Details,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (r *historyRepository) LatestOpen(ctx context.Context, orderID string) (*domain.StateHistoryEntry, error) {
	// seq is a monotonic sequence, so descending order is insertion order
	// regardless of clock skew between writers.
	query := `
		SELECT seq, order_id, stage, started_at, ended_at, employee_id, task_token, details
		FROM order_state_log
		WHERE order_id = $1 AND ended_at IS NULL
		ORDER BY seq DESC
		LIMIT 1
	`

	entry, err := r.scanEntry(r.db.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoOpenEntry
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query open entry: %w", err)
	}
	return entry, nil
}

func (r *historyRepository) Close(ctx context.Context, orderID string, seq int64, endedAt time.Time) error {
	query := `
		UPDATE order_state_log
		SET ended_at = $1
		WHERE order_id = $2 AND seq = $3
	`
	if _, err := r.db.Exec(ctx, query, endedAt, orderID, seq); err != nil {
		return fmt.Errorf("failed to close history entry: %w", err)
	}
	return nil
}

func (r *historyRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.StateHistoryEntry, error) {
	query := `
		SELECT seq, order_id, stage, started_at, ended_at, employee_id, task_token, details
		FROM order_state_log
		WHERE order_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.StateHistoryEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *historyRepository) scanEntry(row Row) (*domain.StateHistoryEntry, error) {
	var entry domain.StateHistoryEntry
	var token *string
	err := row.Scan(
		&entry.Seq, &entry.OrderID, &entry.Stage, &entry.StartedAt,
		&entry.EndedAt, &entry.EmployeeID, &token, &entry.Details,
	)
	if err != nil {
		return nil, err
	}
	if token != nil {
		entry.TaskToken = *token
	}
	return &entry, nil
}
