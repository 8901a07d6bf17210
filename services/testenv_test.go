package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/repository"
)

// testEnv wires every service over one shared in-memory store.
type testEnv struct {
	store       *repository.MemoryStore
	bills       *BillService
	balances    *BalanceService
	assignments *AssignmentService
	payments    *PaymentService
	audit       *AuditService
}

func newTestEnv() *testEnv {
	store := repository.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	balances := NewBalanceService(store, logger)
	return &testEnv{
		store:       store,
		bills:       NewBillService(store, balances, logger),
		balances:    balances,
		assignments: NewAssignmentService(store, balances, logger),
		payments:    NewPaymentService(store, balances, logger),
		audit:       NewAuditService(store, logger),
	}
}

// createDinnerBill creates the standard fixture: alice pays for a
// dinner split with bob and carol. Two pizzas at 18.99 and three
// salads at 7.00, so 37.98 + 21.00 = 58.98 subtotal, 4.72 tax,
// 10.00 tip, 73.70 total.
func createDinnerBill(t *testing.T, env *testEnv) *models.Bill {
	t.Helper()
	bill, err := env.bills.CreateBill(context.Background(), &models.CreateBillRequest{
		Name:          "Friday dinner",
		PayerID:       "alice",
		Participants:  []string{"alice", "bob", "carol"},
		SubtotalCents: 5898,
		TaxCents:      472,
		TipCents:      1000,
		TotalCents:    7370,
		Items: []models.NewLineItem{
			{Name: "Pizza", UnitPriceCents: 1899, Quantity: 2},
			{Name: "Salad", UnitPriceCents: 700, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, bill.Items, 2)
	return bill
}

func itemByName(t *testing.T, bill *models.Bill, name string) *models.LineItem {
	t.Helper()
	for i := range bill.Items {
		if bill.Items[i].Name == name {
			return &bill.Items[i]
		}
	}
	t.Fatalf("bill has no item named %q", name)
	return nil
}

func assign(t *testing.T, env *testEnv, itemID, userID string, quantity, amountCents int64) *models.Assignment {
	t.Helper()
	assignment, err := env.assignments.Assign(context.Background(), &models.AssignRequest{
		ItemID:      itemID,
		UserID:      userID,
		Quantity:    quantity,
		AmountCents: amountCents,
	})
	require.NoError(t, err)
	return assignment
}

func reservedQuantity(t *testing.T, env *testEnv, itemID string) int64 {
	t.Helper()
	item, err := env.store.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	return item.ReservedQuantity
}
