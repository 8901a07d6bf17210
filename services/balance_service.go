// services/balance_service.go
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/repository"
	"github.com/splitbill/splitbill-backend/utils"
)

// BalanceService derives per-participant owed/paid/remaining state for
// a bill. Recompute is a pure fold over the current assignments and
// completed payments, written back as an overwrite: running it twice
// with no intervening change produces identical rows.
type BalanceService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(store repository.Store, logger *slog.Logger) *BalanceService {
	return &BalanceService{store: store, logger: logger}
}

// RecomputeBalances rebuilds every participant balance for a bill from
// scratch and upserts one row per participant who has assignments or
// completed payments.
func (s *BalanceService) RecomputeBalances(ctx context.Context, billID string) ([]models.ParticipantBalance, error) {
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Bill")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}

	assignments, err := s.store.ListAssignmentsByBill(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	payments, err := s.store.ListPaymentsByBill(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}

	owed := make(map[string]models.Money)
	for _, assignment := range assignments {
		owed[assignment.UserID] = owed[assignment.UserID].Add(assignment.Amount)
	}
	paid := make(map[string]models.Money)
	for _, payment := range payments {
		if payment.Status != models.PaymentStatusCompleted {
			continue
		}
		paid[payment.FromUserID] = paid[payment.FromUserID].Add(payment.Amount)
	}

	users := make(map[string]bool)
	for user := range owed {
		users[user] = true
	}
	for user := range paid {
		users[user] = true
	}
	// Rebuild rows that already exist too, so a participant who
	// unassigned everything is reset instead of left stale.
	existing, err := s.store.ListBalances(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	for _, balance := range existing {
		users[balance.UserID] = true
	}

	var balances []models.ParticipantBalance
	for user := range users {
		balance := buildBalance(billID, user, owed[user], paid[user])
		if err := s.store.UpsertBalance(ctx, &balance); err != nil {
			return nil, utils.NewInternalError("Failed to store data")
		}
		balances = append(balances, balance)
	}

	// Re-read for a stable, sorted snapshot.
	stored, err := s.store.ListBalances(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return stored, nil
}

// ApplyPayment refreshes only the paying participant's balance after a
// payment completes, avoiding a full-bill recompute for a one-row
// change. The full recompute remains the authority and heals any drift.
func (s *BalanceService) ApplyPayment(ctx context.Context, payment *models.Payment) (*models.ParticipantBalance, error) {
	assignments, err := s.store.ListAssignmentsByBill(ctx, payment.BillID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	payments, err := s.store.ListPaymentsByBill(ctx, payment.BillID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}

	var totalOwed, amountPaid models.Money
	for _, assignment := range assignments {
		if assignment.UserID == payment.FromUserID {
			totalOwed = totalOwed.Add(assignment.Amount)
		}
	}
	for _, p := range payments {
		if p.FromUserID == payment.FromUserID && p.Status == models.PaymentStatusCompleted {
			amountPaid = amountPaid.Add(p.Amount)
		}
	}

	balance := buildBalance(payment.BillID, payment.FromUserID, totalOwed, amountPaid)
	if err := s.store.UpsertBalance(ctx, &balance); err != nil {
		return nil, utils.NewInternalError("Failed to store data")
	}
	return &balance, nil
}

// ListBalances returns the current balance snapshot for a bill.
func (s *BalanceService) ListBalances(ctx context.Context, billID string) ([]models.ParticipantBalance, error) {
	balances, err := s.store.ListBalances(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return balances, nil
}

// buildBalance computes the derived fields for one participant.
// balance_remaining is floored at zero; overpayment never flips a
// balance negative.
func buildBalance(billID, userID string, totalOwed, amountPaid models.Money) models.ParticipantBalance {
	remaining := totalOwed.Sub(amountPaid)
	if remaining < 0 {
		remaining = 0
	}

	status := models.ParticipantStatusPending
	switch {
	case remaining <= models.ToleranceCents:
		status = models.ParticipantStatusPaid
	case amountPaid > 0:
		status = models.ParticipantStatusPartial
	}

	return models.ParticipantBalance{
		BillID:           billID,
		UserID:           userID,
		TotalOwed:        totalOwed,
		AmountPaid:       amountPaid,
		BalanceRemaining: remaining,
		PaymentStatus:    status,
	}
}
