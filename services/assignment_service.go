// services/assignment_service.go
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

// AssignmentService allocates line item quantity to participants. All
// quantity accounting goes through the store's TryReserve/Release pair,
// which is atomic per item, so concurrent claims can lose the race but
// never double-book a unit.
type AssignmentService struct {
	store    repository.Store
	balances *BalanceService
	logger   *slog.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(store repository.Store, balances *BalanceService, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{store: store, balances: balances, logger: logger}
}

// Assign reserves quantity for a participant and records the claim.
// The claimed amount must reconcile with quantity × unit price within
// one cent; a mismatch is rejected, never corrected.
func (s *AssignmentService) Assign(ctx context.Context, request *models.AssignRequest) (*models.Assignment, error) {
	item, err := s.getItem(ctx, request.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := requireActiveParticipant(ctx, s.store, item.BillID, request.UserID); err != nil {
		return nil, err
	}

	if existing, err := s.store.GetAssignmentByItemUser(ctx, request.ItemID, request.UserID); err == nil {
		return nil, &AlreadyAssignedError{ItemID: request.ItemID, UserID: request.UserID, AssignmentID: existing.ID}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}

	expected := item.UnitPrice.MulInt(request.Quantity)
	claimed := models.Money(request.AmountCents)
	if !models.ApproxEqual(expected, claimed, models.ToleranceCents) {
		return nil, &AmountMismatchError{Expected: expected, Provided: claimed}
	}

	available, ok, err := s.store.TryReserve(ctx, request.ItemID, request.Quantity)
	if err != nil {
		return nil, utils.NewInternalError("Failed to store data")
	}
	if !ok {
		return nil, &QuantityExceededError{Requested: request.Quantity, Available: available}
	}

	assignment := &models.Assignment{
		ID:           utils.GenerateID(),
		ItemID:       request.ItemID,
		BillID:       item.BillID,
		UserID:       request.UserID,
		Quantity:     request.Quantity,
		Amount:       expected,
		CreationTime: time.Now().UnixMilli(),
	}
	if err := s.store.CreateAssignment(ctx, assignment); err != nil {
		// Undo the reservation before reporting the failure.
		s.releaseQuietly(ctx, request.ItemID, request.Quantity)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &AlreadyAssignedError{ItemID: request.ItemID, UserID: request.UserID}
		}
		return nil, utils.NewInternalError("Failed to store data")
	}

	s.logger.Info("quantity assigned",
		"item_id", request.ItemID,
		"user", request.UserID,
		"quantity", request.Quantity,
		"amount", expected.String(),
	)
	s.recomputeQuietly(ctx, item.BillID)
	return assignment, nil
}

// Update changes an assignment's quantity. Growth must win a
// reservation for the delta; shrinking always succeeds and releases the
// difference back to the pool.
func (s *AssignmentService) Update(ctx context.Context, request *models.UpdateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.getOwnedAssignment(ctx, request.AssignmentID, request.UserID)
	if err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, assignment.ItemID)
	if err != nil {
		return nil, err
	}
	if request.NewQuantity <= 0 {
		return nil, utils.NewValidationError("quantity must be positive; unassign to remove the claim")
	}

	delta := request.NewQuantity - assignment.Quantity
	if delta > 0 {
		available, ok, err := s.store.TryReserve(ctx, assignment.ItemID, delta)
		if err != nil {
			return nil, utils.NewInternalError("Failed to store data")
		}
		if !ok {
			return nil, &QuantityExceededError{Requested: delta, Available: available}
		}
	}

	assignment.Quantity = request.NewQuantity
	assignment.Amount = item.UnitPrice.MulInt(request.NewQuantity)
	if err := s.store.UpdateAssignment(ctx, assignment); err != nil {
		if delta > 0 {
			s.releaseQuietly(ctx, assignment.ItemID, delta)
		}
		return nil, utils.NewInternalError("Failed to store data")
	}
	// Release after the smaller quantity is persisted, so the pool never
	// under-counts live claims.
	if delta < 0 {
		s.releaseQuietly(ctx, assignment.ItemID, -delta)
	}

	s.recomputeQuietly(ctx, assignment.BillID)
	return assignment, nil
}

// Unassign removes a claim and returns its quantity to the pool.
func (s *AssignmentService) Unassign(ctx context.Context, request *models.UnassignRequest) error {
	assignment, err := s.getOwnedAssignment(ctx, request.AssignmentID, request.UserID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAssignment(ctx, assignment.ID); err != nil {
		return utils.NewInternalError("Failed to store data")
	}
	s.releaseQuietly(ctx, assignment.ItemID, assignment.Quantity)

	s.logger.Info("quantity unassigned",
		"item_id", assignment.ItemID,
		"user", assignment.UserID,
		"quantity", assignment.Quantity,
	)
	s.recomputeQuietly(ctx, assignment.BillID)
	return nil
}

// SplitEqually replaces all assignments on an item with an equal split
// across the given participants, in the caller-supplied order. The
// first (quantity mod n) participants receive one extra unit, so the
// assigned quantities always sum to exactly the item's quantity.
// Participants whose computed share is zero receive no assignment.
func (s *AssignmentService) SplitEqually(ctx context.Context, request *models.SplitEquallyRequest) ([]models.Assignment, error) {
	item, err := s.getItem(ctx, request.ItemID)
	if err != nil {
		return nil, err
	}
	bill, err := requireActiveParticipant(ctx, s.store, item.BillID, request.UserID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(request.Participants))
	for _, participant := range request.Participants {
		if seen[participant] {
			return nil, utils.NewValidationError("duplicate participant in split")
		}
		seen[participant] = true
		if !contains(bill.Participants, participant) {
			return nil, &NotParticipantError{BillID: item.BillID, UserID: participant}
		}
	}

	// The split owns the whole pool afterwards. Reserve the part the
	// existing claims do not already hold before touching them, so a
	// lost race fails here with the standard shortfall error and leaves
	// the prior claims intact.
	existing, err := s.store.ListAssignmentsByItem(ctx, request.ItemID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	var existingQuantity int64
	for _, a := range existing {
		existingQuantity += a.Quantity
	}
	if delta := item.Quantity - existingQuantity; delta > 0 {
		available, ok, err := s.store.TryReserve(ctx, request.ItemID, delta)
		if err != nil {
			return nil, utils.NewInternalError("Failed to store data")
		}
		if !ok {
			return nil, &QuantityExceededError{Requested: delta, Available: available}
		}
	}

	// Replace the existing claims; their reservations carry over to the
	// split, which now holds exactly the item's quantity.
	for _, a := range existing {
		if err := s.store.DeleteAssignment(ctx, a.ID); err != nil {
			return nil, utils.NewInternalError("Failed to store data")
		}
	}

	n := int64(len(request.Participants))
	base := item.Quantity / n
	remainder := item.Quantity % n

	now := time.Now().UnixMilli()
	var created []models.Assignment
	for i, participant := range request.Participants {
		quantity := base
		if int64(i) < remainder {
			quantity++
		}
		if quantity == 0 {
			continue
		}
		assignment := models.Assignment{
			ID:           utils.GenerateID(),
			ItemID:       request.ItemID,
			BillID:       item.BillID,
			UserID:       participant,
			Quantity:     quantity,
			Amount:       item.UnitPrice.MulInt(quantity),
			CreationTime: now,
		}
		if err := s.store.CreateAssignment(ctx, &assignment); err != nil {
			return nil, utils.NewInternalError("Failed to store data")
		}
		created = append(created, assignment)
	}

	s.logger.Info("item split equally",
		"item_id", request.ItemID,
		"participants", len(request.Participants),
		"quantity", item.Quantity,
	)
	s.recomputeQuietly(ctx, item.BillID)
	return created, nil
}

// ListByBill returns all assignments for a bill.
func (s *AssignmentService) ListByBill(ctx context.Context, billID string) ([]models.Assignment, error) {
	assignments, err := s.store.ListAssignmentsByBill(ctx, billID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return assignments, nil
}

func (s *AssignmentService) getItem(ctx context.Context, itemID string) (*models.LineItem, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Item")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	return item, nil
}

// getOwnedAssignment loads an assignment and checks the caller owns it
// and the bill is still writable.
func (s *AssignmentService) getOwnedAssignment(ctx context.Context, assignmentID, userID string) (*models.Assignment, error) {
	assignment, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Assignment")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}
	if assignment.UserID != userID {
		return nil, &NotParticipantError{BillID: assignment.BillID, UserID: userID}
	}
	if _, err := requireActiveParticipant(ctx, s.store, assignment.BillID, userID); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) releaseQuietly(ctx context.Context, itemID string, quantity int64) {
	if err := s.store.Release(ctx, itemID, quantity); err != nil {
		s.logger.Error("failed to release reserved quantity", "item_id", itemID, "quantity", quantity, "error", err)
	}
}

// recomputeQuietly refreshes derived balances after a mutation. The
// full recompute stays callable at any time, so a failure here only
// delays the refresh; it never corrupts source data.
func (s *AssignmentService) recomputeQuietly(ctx context.Context, billID string) {
	if _, err := s.balances.RecomputeBalances(ctx, billID); err != nil {
		s.logger.Error("balance recompute failed", "bill_id", billID, "error", err)
	}
}
