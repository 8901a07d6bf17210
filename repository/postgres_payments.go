// repository/postgres_payments.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/splitbill/splitbill-backend/models"
)

// CreatePayment saves a new payment record.
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, bill_id, from_user_id, amount_cents, method, status, created_at, completed_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.BillID, payment.FromUserID, payment.Amount,
		payment.Method, payment.Status, payment.CreatedAt, payment.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %v", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *PostgresStore) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, bill_id, from_user_id, amount_cents, method, status, created_at, completed_at
         FROM payments WHERE id = $1`,
		paymentID,
	).Scan(&payment.ID, &payment.BillID, &payment.FromUserID, &payment.Amount,
		&payment.Method, &payment.Status, &payment.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %v", err)
	}
	if completedAt.Valid {
		payment.CompletedAt = &completedAt.Time
	}
	return &payment, nil
}

// UpdatePaymentStatus moves a payment to a new status, stamping
// completed_at when it completes.
func (s *PostgresStore) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	var completedAt *time.Time
	if status == models.PaymentStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE payments SET status = $2, completed_at = COALESCE($3, completed_at) WHERE id = $1",
		paymentID, status, completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %v", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPaymentsByBill retrieves all payments for a bill, newest first.
func (s *PostgresStore) ListPaymentsByBill(ctx context.Context, billID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bill_id, from_user_id, amount_cents, method, status, created_at, completed_at
         FROM payments WHERE bill_id = $1 ORDER BY created_at DESC, id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %v", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		var completedAt sql.NullTime
		if err := rows.Scan(&payment.ID, &payment.BillID, &payment.FromUserID,
			&payment.Amount, &payment.Method, &payment.Status, &payment.CreatedAt,
			&completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %v", err)
		}
		if completedAt.Valid {
			payment.CompletedAt = &completedAt.Time
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
