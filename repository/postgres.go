// repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitbill/splitbill-backend/models"
)

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store on top of lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle and ensures the schema
// exists.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetItem retrieves a line item by ID.
func (s *PostgresStore) GetItem(ctx context.Context, itemID string) (*models.LineItem, error) {
	var item models.LineItem
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bill_id, name, unit_price_cents, quantity, reserved_quantity, amount_cents
         FROM line_items WHERE id = $1`,
		itemID,
	).Scan(&item.ID, &item.BillID, &item.Name, &item.UnitPrice, &item.Quantity,
		&item.ReservedQuantity, &item.Amount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %v", err)
	}
	return &item, nil
}

// ListItems retrieves all line items for a bill.
func (s *PostgresStore) ListItems(ctx context.Context, billID string) ([]models.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, name, unit_price_cents, quantity, reserved_quantity, amount_cents
         FROM line_items WHERE bill_id = $1 ORDER BY name, id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %v", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.Name, &item.UnitPrice,
			&item.Quantity, &item.ReservedQuantity, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan item: %v", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteItem removes a line item; its assignments cascade at the
// database level.
func (s *PostgresStore) DeleteItem(ctx context.Context, itemID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM line_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %v", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TryReserve increases reserved_quantity by delta only if the result
// stays within the item's total quantity. The check and the increment
// are one conditional UPDATE, so concurrent claims on the same item
// serialize at the row and can never double-book the last unit.
func (s *PostgresStore) TryReserve(ctx context.Context, itemID string, delta int64) (int64, bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE line_items
         SET reserved_quantity = reserved_quantity + $2
         WHERE id = $1 AND reserved_quantity + $2 <= quantity`,
		itemID, delta,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to reserve quantity: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read reserve result: %v", err)
	}
	if affected > 0 {
		return 0, true, nil
	}

	// Lost the reservation; report how much is still available.
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return 0, false, err
	}
	return item.AvailableQuantity(), false, nil
}

// Release decreases reserved_quantity by delta, floored at zero.
func (s *PostgresStore) Release(ctx context.Context, itemID string, delta int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE line_items
         SET reserved_quantity = GREATEST(reserved_quantity - $2, 0)
         WHERE id = $1`,
		itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to release quantity: %v", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
