// repository/postgres_assignments.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/splitbill/splitbill-backend/models"
)

const assignmentColumns = "id, item_id, bill_id, user_id, quantity, amount_cents, creation_time"

// CreateAssignment saves a new assignment. The (item_id, user_id) unique
// constraint rejects duplicate claims at the database level too.
func (s *PostgresStore) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, item_id, bill_id, user_id, quantity, amount_cents, creation_time)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		assignment.ID, assignment.ItemID, assignment.BillID, assignment.UserID,
		assignment.Quantity, assignment.Amount, assignment.CreationTime,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert assignment: %v", err)
	}
	return nil
}

// GetAssignment retrieves an assignment by ID.
func (s *PostgresStore) GetAssignment(ctx context.Context, assignmentID string) (*models.Assignment, error) {
	return s.scanAssignment(s.db.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE id = $1", assignmentID))
}

// GetAssignmentByItemUser retrieves the assignment for one (item, user)
// pair, or ErrNotFound.
func (s *PostgresStore) GetAssignmentByItemUser(ctx context.Context, itemID, userID string) (*models.Assignment, error) {
	return s.scanAssignment(s.db.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE item_id = $1 AND user_id = $2",
		itemID, userID))
}

func (s *PostgresStore) scanAssignment(row *sql.Row) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.ItemID, &a.BillID, &a.UserID, &a.Quantity, &a.Amount, &a.CreationTime)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %v", err)
	}
	return &a, nil
}

// UpdateAssignment persists a changed quantity and amount.
func (s *PostgresStore) UpdateAssignment(ctx context.Context, assignment *models.Assignment) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE assignments SET quantity = $2, amount_cents = $3 WHERE id = $1",
		assignment.ID, assignment.Quantity, assignment.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %v", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAssignment removes an assignment.
func (s *PostgresStore) DeleteAssignment(ctx context.Context, assignmentID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", assignmentID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %v", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssignmentsByItem retrieves all assignments for a line item.
func (s *PostgresStore) ListAssignmentsByItem(ctx context.Context, itemID string) ([]models.Assignment, error) {
	return s.listAssignments(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE item_id = $1 ORDER BY creation_time, id", itemID)
}

// ListAssignmentsByBill retrieves all assignments for a bill.
func (s *PostgresStore) ListAssignmentsByBill(ctx context.Context, billID string) ([]models.Assignment, error) {
	return s.listAssignments(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE bill_id = $1 ORDER BY creation_time, id", billID)
}

func (s *PostgresStore) listAssignments(ctx context.Context, query, arg string) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %v", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.BillID, &a.UserID, &a.Quantity,
			&a.Amount, &a.CreationTime); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %v", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
