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

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Find(ctx context.Context, localID, orderID string) (*domain.Order, error) {
	query := `
		SELECT local_id, order_id, status, assigned_employee, created_at, updated_at
		FROM orders
		WHERE local_id = $1 AND order_id = $2
	`

	var order domain.Order
	err := r.db.QueryRow(ctx, query, localID, orderID).Scan(
		&order.LocalID, &order.OrderID, &order.Status,
		&order.AssignedEmployee, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	itemsQuery := `
		SELECT product_id, local_id, quantity
		FROM order_items
		WHERE local_id = $1 AND order_id = $2
	`
	rows, err := r.db.Query(ctx, itemsQuery, localID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.LocalID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, localID, orderID string, status domain.Stage, employee string) error {
	query := `
		UPDATE orders
		SET status = $1, assigned_employee = $2, updated_at = $3
		WHERE local_id = $4 AND order_id = $5
	`
	tag, err := r.db.Exec(ctx, query, status, employee, time.Now(), localID, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
