// repository/postgres_bills.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/splitbill/splitbill-backend/models"
)

// CreateBill saves a bill, its participants and its line items in one
// transaction.
func (s *PostgresStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills
         (id, code, name, payer_id, subtotal_cents, tax_cents, tip_cents, total_cents, status, creation_time)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		bill.ID, bill.Code, bill.Name, bill.PayerID, bill.Subtotal, bill.Tax,
		bill.Tip, bill.Total, bill.Status, bill.CreationTime,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert bill: %v", err)
	}

	for _, participant := range bill.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_participants (bill_id, user_id) VALUES ($1, $2)",
			bill.ID, participant,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill participant: %v", err)
		}
	}

	for _, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO line_items
             (id, bill_id, name, unit_price_cents, quantity, reserved_quantity, amount_cents)
             VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, bill.ID, item.Name, item.UnitPrice, item.Quantity,
			item.ReservedQuantity, item.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %v", err)
		}
	}

	return tx.Commit()
}

// GetBill retrieves a bill with its participants and line items.
func (s *PostgresStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.getBill(ctx, "id", billID)
}

// GetBillByCode retrieves a bill by its share code.
func (s *PostgresStore) GetBillByCode(ctx context.Context, code string) (*models.Bill, error) {
	return s.getBill(ctx, "code", code)
}

func (s *PostgresStore) getBill(ctx context.Context, column, value string) (*models.Bill, error) {
	var bill models.Bill
	query := fmt.Sprintf(
		`SELECT id, code, name, payer_id, subtotal_cents, tax_cents, tip_cents, total_cents, status, creation_time
         FROM bills WHERE %s = $1`, column)
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&bill.ID, &bill.Code, &bill.Name, &bill.PayerID, &bill.Subtotal,
		&bill.Tax, &bill.Tip, &bill.Total, &bill.Status, &bill.CreationTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %v", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM bill_participants WHERE bill_id = $1 ORDER BY user_id",
		bill.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %v", err)
		}
		bill.Participants = append(bill.Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %v", err)
	}

	items, err := s.ListItems(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	bill.Items = items

	return &bill, nil
}

// UpdateBillStatus changes a bill's status.
func (s *PostgresStore) UpdateBillStatus(ctx context.Context, billID, status string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE bills SET status = $2 WHERE id = $1", billID, status)
	if err != nil {
		return fmt.Errorf("failed to update bill status: %v", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddParticipant adds a participant to a bill if not already present.
func (s *PostgresStore) AddParticipant(ctx context.Context, billID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_participants (bill_id, user_id) VALUES ($1, $2)
         ON CONFLICT (bill_id, user_id) DO NOTHING`,
		billID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add participant: %v", err)
	}
	return nil
}

// IsParticipant reports whether the user is a member of the bill.
func (s *PostgresStore) IsParticipant(ctx context.Context, billID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM bill_participants WHERE bill_id = $1 AND user_id = $2)",
		billID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %v", err)
	}
	return exists, nil
}

// UpsertBalance replaces the balance snapshot for one (bill, user) pair.
// Recompute overwrites rather than accumulates, which is what makes the
// ledger idempotent.
func (s *PostgresStore) UpsertBalance(ctx context.Context, balance *models.ParticipantBalance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participant_balances
         (bill_id, user_id, total_owed_cents, amount_paid_cents, balance_remaining_cents, payment_status)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (bill_id, user_id) DO UPDATE SET
             total_owed_cents = EXCLUDED.total_owed_cents,
             amount_paid_cents = EXCLUDED.amount_paid_cents,
             balance_remaining_cents = EXCLUDED.balance_remaining_cents,
             payment_status = EXCLUDED.payment_status`,
		balance.BillID, balance.UserID, balance.TotalOwed, balance.AmountPaid,
		balance.BalanceRemaining, balance.PaymentStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %v", err)
	}
	return nil
}

// GetBalance retrieves the balance row for one participant.
func (s *PostgresStore) GetBalance(ctx context.Context, billID, userID string) (*models.ParticipantBalance, error) {
	var balance models.ParticipantBalance
	err := s.db.QueryRowContext(ctx,
		`SELECT bill_id, user_id, total_owed_cents, amount_paid_cents, balance_remaining_cents, payment_status
         FROM participant_balances WHERE bill_id = $1 AND user_id = $2`,
		billID, userID,
	).Scan(&balance.BillID, &balance.UserID, &balance.TotalOwed,
		&balance.AmountPaid, &balance.BalanceRemaining, &balance.PaymentStatus)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %v", err)
	}
	return &balance, nil
}

// ListBalances retrieves every balance row for a bill.
func (s *PostgresStore) ListBalances(ctx context.Context, billID string) ([]models.ParticipantBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT bill_id, user_id, total_owed_cents, amount_paid_cents, balance_remaining_cents, payment_status
         FROM participant_balances WHERE bill_id = $1 ORDER BY user_id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %v", err)
	}
	defer rows.Close()

	var balances []models.ParticipantBalance
	for rows.Next() {
		var balance models.ParticipantBalance
		if err := rows.Scan(&balance.BillID, &balance.UserID, &balance.TotalOwed,
			&balance.AmountPaid, &balance.BalanceRemaining, &balance.PaymentStatus); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %v", err)
		}
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}
