package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/domain"
	"github.com/EV081/Proyecto-de-200-millas-websocket/internal/interfaces"
)

type inventoryRepository struct {
	db DB
}

func NewInventoryRepository(db DB) interfaces.InventoryRepository {
	return &inventoryRepository{db: db}
}

// Decrement is the only concurrency-sensitive write in the system. The
// check and the update are a single statement, so concurrent decrements
// against the same product serialize at the row level and quantity can
// never go negative.
func (r *inventoryRepository) Decrement(ctx context.Context, localID, productID string, qty int) error {
	query := `
		UPDATE inventory
		SET quantity = quantity - $3
		WHERE local_id = $1 AND product_id = $2 AND quantity >= $3
	`
	tag, err := r.db.Exec(ctx, query, localID, productID, qty)
	if err != nil {
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows means either a shortage or a missing product; probe to
	// report them distinctly.
	var current int
	err = r.db.QueryRow(ctx,
		`SELECT quantity FROM inventory WHERE local_id = $1 AND product_id = $2`,
		localID, productID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", domain.ErrProductNotFound, localID, productID)
	}
	if err != nil {
		return fmt.Errorf("failed to check inventory: %w", err)
	}
	return fmt.Errorf("%w: %s/%s has %d, need %d", domain.ErrInsufficientStock, localID, productID, current, qty)
}

// DecrementAll runs the batch inside a transaction. Any shortage or
// missing product rolls back every decrement already applied, so a failed
// multi-item attempt leaves stock exactly where it was.
func (r *inventoryRepository) DecrementAll(ctx context.Context, items []domain.OrderItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin inventory transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE inventory
		SET quantity = quantity - $3
		WHERE local_id = $1 AND product_id = $2 AND quantity >= $3
	`
	for _, item := range items {
		tag, err := tx.Exec(ctx, query, item.LocalID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement inventory: %w", err)
		}
		if tag.RowsAffected() > 0 {
			continue
		}

		var current int
		err = tx.QueryRow(ctx,
			`SELECT quantity FROM inventory WHERE local_id = $1 AND product_id = $2`,
			item.LocalID, item.ProductID,
		).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s/%s", domain.ErrProductNotFound, item.LocalID, item.ProductID)
		}
		if err != nil {
			return fmt.Errorf("failed to check inventory: %w", err)
		}
		return fmt.Errorf("%w: %s/%s has %d, need %d",
			domain.ErrInsufficientStock, item.LocalID, item.ProductID, current, item.Quantity)
	}

	return tx.Commit(ctx)
}
