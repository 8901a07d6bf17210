// services/payment_service.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/repository"
	"github.com/splitbill/splitbill-backend/utils"
)

// PaymentService handles payment business logic. Payments start pending
// and move one-directionally to completed, failed or cancelled; only
// completed payments reach the balance ledger.
type PaymentService struct {
	store    repository.Store
	balances *BalanceService
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store repository.Store, balances *BalanceService, logger *slog.Logger) *PaymentService {
	return &PaymentService{store: store, balances: balances, logger: logger}
}

// RecordPayment records a pending transfer from a participant toward
// the bill's payer.
func (s *PaymentService) RecordPayment(ctx context.Context, request *models.RecordPaymentRequest) (*models.Payment, error) {
	bill, err := requireActiveParticipant(ctx, s.store, request.BillID, request.FromUserID)
	if err != nil {
		return nil, err
	}
	if request.FromUserID == bill.PayerID {
		return nil, utils.NewValidationError("the bill's payer cannot record a payment to themselves")
	}

	payment := &models.Payment{
		ID:         utils.GenerateID(),
		BillID:     request.BillID,
		FromUserID: request.FromUserID,
		Amount:     models.Money(request.AmountCents),
		Method:     request.Method,
		Status:     models.PaymentStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, utils.NewInternalError("Failed to store data")
	}

	s.logger.Info("payment recorded",
		"payment_id", payment.ID,
		"bill_id", payment.BillID,
		"from", payment.FromUserID,
		"amount", payment.Amount.String(),
	)
	return payment, nil
}

// CompletePayment marks a pending payment completed and folds it into
// the paying participant's balance.
func (s *PaymentService) CompletePayment(ctx context.Context, paymentID, userID string) (*models.Payment, *models.ParticipantBalance, error) {
	payment, err := s.transition(ctx, paymentID, userID, models.PaymentStatusCompleted)
	if err != nil {
		return nil, nil, err
	}
	balance, err := s.balances.ApplyPayment(ctx, payment)
	if err != nil {
		return nil, nil, err
	}
	return payment, balance, nil
}

// FailPayment marks a pending payment failed.
func (s *PaymentService) FailPayment(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	return s.transition(ctx, paymentID, userID, models.PaymentStatusFailed)
}

// CancelPayment marks a pending payment cancelled.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	return s.transition(ctx, paymentID, userID, models.PaymentStatusCancelled)
}

func (s *PaymentService) transition(ctx context.Context, paymentID, userID, status string) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Payment")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}

	ok, err := s.store.IsParticipant(ctx, payment.BillID, userID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	if !ok {
		return nil, &NotParticipantError{BillID: payment.BillID, UserID: userID}
	}

	// One-directional: only a pending payment may move.
	if payment.Status != models.PaymentStatusPending {
		return nil, &InvalidPaymentTransitionError{PaymentID: paymentID, From: payment.Status, To: status}
	}

	if err := s.store.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
		return nil, utils.NewInternalError("Failed to store data")
	}
	payment.Status = status
	if status == models.PaymentStatusCompleted {
		now := time.Now().UTC()
		payment.CompletedAt = &now
	}

	s.logger.Info("payment status changed", "payment_id", paymentID, "status", status, "by", userID)
	return payment, nil
}

// ListPayments retrieves all payments for a bill.
func (s *PaymentService) ListPayments(ctx context.Context, billID string) ([]models.Payment, error) {
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Bill")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	payments, err := s.store.ListPaymentsByBill(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return payments, nil
}
