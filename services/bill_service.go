// services/bill_service.go
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

// BillService handles bill lifecycle and line item management
type BillService struct {
	store    repository.Store
	balances *BalanceService
	logger   *slog.Logger
}

// NewBillService creates a new bill service
func NewBillService(store repository.Store, balances *BalanceService, logger *slog.Logger) *BillService {
	return &BillService{store: store, balances: balances, logger: logger}
}

// CreateBill validates totals and participants, then persists the bill
// with its line items.
func (s *BillService) CreateBill(ctx context.Context, request *models.CreateBillRequest) (*models.Bill, error) {
	subtotal := models.Money(request.SubtotalCents)
	tax := models.Money(request.TaxCents)
	tip := models.Money(request.TipCents)
	total := models.Money(request.TotalCents)

	if err := ValidateTotals(subtotal, tax, tip, total); err != nil {
		return nil, err
	}

	// Deduplicate while keeping caller order; a repeated name would
	// otherwise trip the participants primary key.
	seen := make(map[string]bool, len(request.Participants))
	participants := make([]string, 0, len(request.Participants))
	for _, participant := range request.Participants {
		if seen[participant] {
			continue
		}
		seen[participant] = true
		participants = append(participants, participant)
	}
	if !contains(participants, request.PayerID) {
		return nil, utils.NewValidationError("payer must be one of the participants")
	}

	billID := utils.GenerateID()
	bill := &models.Bill{
		ID:           billID,
		Code:         utils.GenerateCode(),
		CreationTime: time.Now().UnixMilli(),
		Name:         request.Name,
		PayerID:      request.PayerID,
		Subtotal:     subtotal,
		Tax:          tax,
		Tip:          tip,
		Total:        total,
		Status:       models.BillStatusActive,
		Participants: participants,
	}

	for _, newItem := range request.Items {
		unitPrice := models.Money(newItem.UnitPriceCents)
		bill.Items = append(bill.Items, models.LineItem{
			ID:        utils.GenerateID(),
			BillID:    billID,
			Name:      newItem.Name,
			UnitPrice: unitPrice,
			Quantity:  newItem.Quantity,
			Amount:    unitPrice.MulInt(newItem.Quantity),
		})
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Share code collision; the caller can simply retry.
			return nil, utils.NewInternalError("failed to allocate bill code")
		}
		s.logger.Error("create bill failed", "error", err)
		return nil, utils.NewInternalError("Failed to store data")
	}

	s.logger.Info("bill created",
		"bill_id", bill.ID,
		"code", bill.Code,
		"payer", bill.PayerID,
		"items", len(bill.Items),
		"total", bill.Total.String(),
	)
	return bill, nil
}

// GetBill retrieves a bill by ID.
func (s *BillService) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Bill")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return bill, nil
}

// GetBillByCode retrieves a bill by its share code.
func (s *BillService) GetBillByCode(ctx context.Context, code string) (*models.Bill, error) {
	bill, err := s.store.GetBillByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Bill")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return bill, nil
}

// SettleBill marks an active bill settled. Only a participant may settle.
func (s *BillService) SettleBill(ctx context.Context, billID, userID string) (*models.Bill, error) {
	return s.changeStatus(ctx, billID, userID, models.BillStatusSettled)
}

// CancelBill marks an active bill cancelled. Only a participant may cancel.
func (s *BillService) CancelBill(ctx context.Context, billID, userID string) (*models.Bill, error) {
	return s.changeStatus(ctx, billID, userID, models.BillStatusCancelled)
}

func (s *BillService) changeStatus(ctx context.Context, billID, userID, status string) (*models.Bill, error) {
	bill, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if !contains(bill.Participants, userID) {
		return nil, &NotParticipantError{BillID: billID, UserID: userID}
	}
	if bill.Status != models.BillStatusActive {
		return nil, &BillNotActiveError{BillID: billID, Status: bill.Status}
	}
	if err := s.store.UpdateBillStatus(ctx, billID, status); err != nil {
		return nil, utils.NewInternalError("Failed to store data")
	}
	bill.Status = status
	s.logger.Info("bill status changed", "bill_id", billID, "status", status, "by", userID)
	return bill, nil
}

// AddParticipant adds a member to an active bill.
func (s *BillService) AddParticipant(ctx context.Context, billID, userID, participant string) error {
	bill, err := s.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if !contains(bill.Participants, userID) {
		return &NotParticipantError{BillID: billID, UserID: userID}
	}
	if bill.Status != models.BillStatusActive {
		return &BillNotActiveError{BillID: billID, Status: bill.Status}
	}
	if err := s.store.AddParticipant(ctx, billID, participant); err != nil {
		return utils.NewInternalError("Failed to store data")
	}
	return nil
}

// RemoveItem deletes a line item from an active bill. The item's
// assignments are cascaded away with it, which also retires its pool.
func (s *BillService) RemoveItem(ctx context.Context, billID, itemID, userID string) error {
	bill, err := s.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if !contains(bill.Participants, userID) {
		return &NotParticipantError{BillID: billID, UserID: userID}
	}
	if bill.Status != models.BillStatusActive {
		return &BillNotActiveError{BillID: billID, Status: bill.Status}
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewNotFoundError("Item")
		}
		return utils.NewInternalError("Failed to retrieve data")
	}
	if item.BillID != billID {
		return utils.NewValidationError("item does not belong to this bill")
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return utils.NewInternalError("Failed to store data")
	}
	s.logger.Info("item removed", "bill_id", billID, "item_id", itemID, "by", userID)

	// The cascade just dropped the item's assignments, so the derived
	// rows are stale until rebuilt.
	if _, err := s.balances.RecomputeBalances(ctx, billID); err != nil {
		s.logger.Error("balance recompute failed", "bill_id", billID, "error", err)
	}
	return nil
}

// requireActiveParticipant loads the bill and checks the user may write
// to it. Shared by the assignment and payment services.
func requireActiveParticipant(ctx context.Context, store repository.Store, billID, userID string) (*models.Bill, error) {
	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Bill")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	if bill.Status != models.BillStatusActive {
		return nil, &BillNotActiveError{BillID: billID, Status: bill.Status}
	}
	ok, err := store.IsParticipant(ctx, billID, userID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	if !ok {
		return nil, &NotParticipantError{BillID: billID, UserID: userID}
	}
	return bill, nil
}

func contains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
