// Package repository provides persistence for bills, items, assignments,
// balances and payments.
package repository

import (
	"context"
	"errors"

	"github.com/splitbill/splitbill-backend/models"
)

// Sentinel errors shared by every Store implementation.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store defines the persistence operations the engine needs. The handle
// is constructed once in main and passed into services explicitly; there
// is no package-level database singleton.
//
// TryReserve and Release are the allocation pool: TryReserve must perform
// its check-and-increment as a single atomic step per item, so two
// concurrent claims on the last unit can never both succeed.
type Store interface {
	// Bills
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	GetBillByCode(ctx context.Context, code string) (*models.Bill, error)
	UpdateBillStatus(ctx context.Context, billID, status string) error
	AddParticipant(ctx context.Context, billID, userID string) error
	IsParticipant(ctx context.Context, billID, userID string) (bool, error)

	// Line items and the allocation pool
	GetItem(ctx context.Context, itemID string) (*models.LineItem, error)
	ListItems(ctx context.Context, billID string) ([]models.LineItem, error)
	DeleteItem(ctx context.Context, itemID string) error
	TryReserve(ctx context.Context, itemID string, delta int64) (available int64, ok bool, err error)
	Release(ctx context.Context, itemID string, delta int64) error

	// Assignments
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	GetAssignment(ctx context.Context, assignmentID string) (*models.Assignment, error)
	GetAssignmentByItemUser(ctx context.Context, itemID, userID string) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, assignment *models.Assignment) error
	DeleteAssignment(ctx context.Context, assignmentID string) error
	ListAssignmentsByItem(ctx context.Context, itemID string) ([]models.Assignment, error)
	ListAssignmentsByBill(ctx context.Context, billID string) ([]models.Assignment, error)

	// Participant balances (derived, upsert-only)
	UpsertBalance(ctx context.Context, balance *models.ParticipantBalance) error
	GetBalance(ctx context.Context, billID, userID string) (*models.ParticipantBalance, error)
	ListBalances(ctx context.Context, billID string) ([]models.ParticipantBalance, error)

	// Payments
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
	ListPaymentsByBill(ctx context.Context, billID string) ([]models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
