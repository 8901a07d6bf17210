// repository/memory.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/splitbill/splitbill-backend/models"
)

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used for tests and as the
// STORE_BACKEND=memory option. A single mutex guards all maps, which
// gives TryReserve the same check-and-increment atomicity the Postgres
// conditional UPDATE provides.
type MemoryStore struct {
	mu          sync.Mutex
	bills       map[string]*models.Bill
	billsByCode map[string]string
	items       map[string]*models.LineItem
	assignments map[string]*models.Assignment
	balances    map[string]map[string]*models.ParticipantBalance // billID -> userID
	payments    map[string]*models.Payment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bills:       make(map[string]*models.Bill),
		billsByCode: make(map[string]string),
		items:       make(map[string]*models.LineItem),
		assignments: make(map[string]*models.Assignment),
		balances:    make(map[string]map[string]*models.ParticipantBalance),
		payments:    make(map[string]*models.Payment),
	}
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateBill stores a bill with its participants and items.
func (s *MemoryStore) CreateBill(_ context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[bill.ID]; exists {
		return ErrDuplicate
	}
	if _, exists := s.billsByCode[bill.Code]; exists {
		return ErrDuplicate
	}

	stored := *bill
	stored.Participants = append([]string(nil), bill.Participants...)
	stored.Items = nil
	s.bills[bill.ID] = &stored
	s.billsByCode[bill.Code] = bill.ID

	for i := range bill.Items {
		item := bill.Items[i]
		s.items[item.ID] = &item
	}
	return nil
}

// GetBill retrieves a bill with its participants and items.
func (s *MemoryStore) GetBill(_ context.Context, billID string) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getBillLocked(billID)
}

// GetBillByCode retrieves a bill by its share code.
func (s *MemoryStore) GetBillByCode(_ context.Context, code string) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	billID, ok := s.billsByCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return s.getBillLocked(billID)
}

func (s *MemoryStore) getBillLocked(billID string) (*models.Bill, error) {
	stored, ok := s.bills[billID]
	if !ok {
		return nil, ErrNotFound
	}
	bill := *stored
	bill.Participants = append([]string(nil), stored.Participants...)
	bill.Items = s.listItemsLocked(billID)
	return &bill, nil
}

// UpdateBillStatus changes a bill's status.
func (s *MemoryStore) UpdateBillStatus(_ context.Context, billID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[billID]
	if !ok {
		return ErrNotFound
	}
	bill.Status = status
	return nil
}

// AddParticipant adds a participant if not already present.
func (s *MemoryStore) AddParticipant(_ context.Context, billID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[billID]
	if !ok {
		return ErrNotFound
	}
	for _, p := range bill.Participants {
		if p == userID {
			return nil
		}
	}
	bill.Participants = append(bill.Participants, userID)
	sort.Strings(bill.Participants)
	return nil
}

// IsParticipant reports whether the user is a member of the bill.
func (s *MemoryStore) IsParticipant(_ context.Context, billID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill, ok := s.bills[billID]
	if !ok {
		return false, nil
	}
	for _, p := range bill.Participants {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}

// GetItem retrieves a line item by ID.
func (s *MemoryStore) GetItem(_ context.Context, itemID string) (*models.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *item
	return &copied, nil
}

// ListItems retrieves all line items for a bill.
func (s *MemoryStore) ListItems(_ context.Context, billID string) ([]models.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listItemsLocked(billID), nil
}

func (s *MemoryStore) listItemsLocked(billID string) []models.LineItem {
	var items []models.LineItem
	for _, item := range s.items {
		if item.BillID == billID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// DeleteItem removes a line item and cascades its assignments.
func (s *MemoryStore) DeleteItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[itemID]; !ok {
		return ErrNotFound
	}
	delete(s.items, itemID)
	for id, a := range s.assignments {
		if a.ItemID == itemID {
			delete(s.assignments, id)
		}
	}
	return nil
}

// TryReserve performs the check-and-increment under the store lock.
func (s *MemoryStore) TryReserve(_ context.Context, itemID string, delta int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return 0, false, ErrNotFound
	}
	if item.ReservedQuantity+delta > item.Quantity {
		return item.AvailableQuantity(), false, nil
	}
	item.ReservedQuantity += delta
	return 0, true, nil
}

// Release decreases the reserved quantity, floored at zero.
func (s *MemoryStore) Release(_ context.Context, itemID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return ErrNotFound
	}
	item.ReservedQuantity -= delta
	if item.ReservedQuantity < 0 {
		item.ReservedQuantity = 0
	}
	return nil
}

// CreateAssignment stores a new assignment, enforcing the
// one-per-(item, user) rule.
func (s *MemoryStore) CreateAssignment(_ context.Context, assignment *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assignments[assignment.ID]; exists {
		return ErrDuplicate
	}
	for _, a := range s.assignments {
		if a.ItemID == assignment.ItemID && a.UserID == assignment.UserID {
			return ErrDuplicate
		}
	}
	copied := *assignment
	s.assignments[assignment.ID] = &copied
	return nil
}

// GetAssignment retrieves an assignment by ID.
func (s *MemoryStore) GetAssignment(_ context.Context, assignmentID string) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[assignmentID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

// GetAssignmentByItemUser retrieves the assignment for one (item, user) pair.
func (s *MemoryStore) GetAssignmentByItemUser(_ context.Context, itemID, userID string) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.ItemID == itemID && a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateAssignment persists a changed quantity and amount.
func (s *MemoryStore) UpdateAssignment(_ context.Context, assignment *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.assignments[assignment.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Quantity = assignment.Quantity
	existing.Amount = assignment.Amount
	return nil
}

// DeleteAssignment removes an assignment.
func (s *MemoryStore) DeleteAssignment(_ context.Context, assignmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[assignmentID]; !ok {
		return ErrNotFound
	}
	delete(s.assignments, assignmentID)
	return nil
}

// ListAssignmentsByItem retrieves all assignments for a line item.
func (s *MemoryStore) ListAssignmentsByItem(_ context.Context, itemID string) ([]models.Assignment, error) {
	return s.listAssignments(func(a *models.Assignment) bool { return a.ItemID == itemID })
}

// ListAssignmentsByBill retrieves all assignments for a bill.
func (s *MemoryStore) ListAssignmentsByBill(_ context.Context, billID string) ([]models.Assignment, error) {
	return s.listAssignments(func(a *models.Assignment) bool { return a.BillID == billID })
}

func (s *MemoryStore) listAssignments(match func(*models.Assignment) bool) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var assignments []models.Assignment
	for _, a := range s.assignments {
		if match(a) {
			assignments = append(assignments, *a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].CreationTime != assignments[j].CreationTime {
			return assignments[i].CreationTime < assignments[j].CreationTime
		}
		return assignments[i].ID < assignments[j].ID
	})
	return assignments, nil
}

// UpsertBalance replaces the balance snapshot for one (bill, user) pair.
func (s *MemoryStore) UpsertBalance(_ context.Context, balance *models.ParticipantBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.balances[balance.BillID]
	if !ok {
		byUser = make(map[string]*models.ParticipantBalance)
		s.balances[balance.BillID] = byUser
	}
	copied := *balance
	byUser[balance.UserID] = &copied
	return nil
}

// GetBalance retrieves the balance row for one participant.
func (s *MemoryStore) GetBalance(_ context.Context, billID, userID string) (*models.ParticipantBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.balances[billID]
	if !ok {
		return nil, ErrNotFound
	}
	balance, ok := byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *balance
	return &copied, nil
}

// ListBalances retrieves every balance row for a bill.
func (s *MemoryStore) ListBalances(_ context.Context, billID string) ([]models.ParticipantBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var balances []models.ParticipantBalance
	for _, balance := range s.balances[billID] {
		balances = append(balances, *balance)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].UserID < balances[j].UserID
	})
	return balances, nil
}

// CreatePayment stores a new payment record.
func (s *MemoryStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payments[payment.ID]; exists {
		return ErrDuplicate
	}
	copied := *payment
	s.payments[payment.ID] = &copied
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *MemoryStore) GetPayment(_ context.Context, paymentID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

// UpdatePaymentStatus moves a payment to a new status.
func (s *MemoryStore) UpdatePaymentStatus(_ context.Context, paymentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[paymentID]
	if !ok {
		return ErrNotFound
	}
	payment.Status = status
	if status == models.PaymentStatusCompleted && payment.CompletedAt == nil {
		now := time.Now().UTC()
		payment.CompletedAt = &now
	}
	return nil
}

// ListPaymentsByBill retrieves all payments for a bill, newest first.
func (s *MemoryStore) ListPaymentsByBill(_ context.Context, billID string) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var payments []models.Payment
	for _, payment := range s.payments {
		if payment.BillID == billID {
			payments = append(payments, *payment)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		}
		return payments[i].ID < payments[j].ID
	})
	return payments, nil
}
