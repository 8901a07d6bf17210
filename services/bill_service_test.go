package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitbill/splitbill-backend/models"
)

func TestCreateBill_ComputesItemAmounts(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)

	assert.NotEmpty(t, bill.ID)
	assert.Len(t, bill.Code, 6)
	assert.Equal(t, models.BillStatusActive, bill.Status)

	pizza := itemByName(t, bill, "Pizza")
	assert.Equal(t, models.Money(3798), pizza.Amount)
	assert.Equal(t, int64(0), pizza.ReservedQuantity)

	salad := itemByName(t, bill, "Salad")
	assert.Equal(t, models.Money(2100), salad.Amount)
}

func TestCreateBill_RejectsMismatchedTotals(t *testing.T) {
	env := newTestEnv()

	_, err := env.bills.CreateBill(context.Background(), &models.CreateBillRequest{
		Name:          "Broken",
		PayerID:       "alice",
		Participants:  []string{"alice"},
		SubtotalCents: 10000,
		TaxCents:      800,
		TipCents:      1600,
		TotalCents:    12450,
		Items:         []models.NewLineItem{{Name: "Thing", UnitPriceCents: 10000, Quantity: 1}},
	})
	require.Error(t, err)

	var mismatch *TotalMismatchError
	assert.True(t, errors.As(err, &mismatch), "expected TotalMismatchError, got %T", err)
}

func TestCreateBill_PayerMustBeParticipant(t *testing.T) {
	env := newTestEnv()

	_, err := env.bills.CreateBill(context.Background(), &models.CreateBillRequest{
		Name:          "Orphan payer",
		PayerID:       "zoe",
		Participants:  []string{"alice", "bob"},
		SubtotalCents: 1000,
		TotalCents:    1000,
		Items:         []models.NewLineItem{{Name: "Thing", UnitPriceCents: 1000, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestGetBillByCode(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)

	found, err := env.bills.GetBillByCode(context.Background(), bill.Code)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, found.ID)
	assert.Len(t, found.Items, 2)

	_, err = env.bills.GetBillByCode(context.Background(), "NOPE42")
	assert.Error(t, err)
}

func TestSettleBill_Lifecycle(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	ctx := context.Background()

	settled, err := env.bills.SettleBill(ctx, bill.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusSettled, settled.Status)

	// A settled bill cannot be settled or cancelled again.
	_, err = env.bills.SettleBill(ctx, bill.ID, "alice")
	var notActive *BillNotActiveError
	require.True(t, errors.As(err, &notActive))
	assert.Equal(t, models.BillStatusSettled, notActive.Status)

	_, err = env.bills.CancelBill(ctx, bill.ID, "alice")
	assert.True(t, errors.As(err, &notActive))
}

func TestSettleBill_NonParticipantRejected(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)

	_, err := env.bills.SettleBill(context.Background(), bill.ID, "dave")
	require.Error(t, err)

	var notParticipant *NotParticipantError
	assert.True(t, errors.As(err, &notParticipant), "expected NotParticipantError, got %T", err)
}

func TestAddParticipant_ThenTheyCanClaim(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	require.NoError(t, env.bills.AddParticipant(ctx, bill.ID, "alice", "dave"))

	assign(t, env, salad.ID, "dave", 1, 700)

	// Adding the same member twice is a no-op.
	require.NoError(t, env.bills.AddParticipant(ctx, bill.ID, "alice", "dave"))
	updated, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Participants, 4)
}

func TestRemoveItem_CascadesAssignments(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	assign(t, env, salad.ID, "bob", 2, 1400)

	require.NoError(t, env.bills.RemoveItem(ctx, bill.ID, salad.ID, "alice"))

	updated, err := env.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Items, 1)

	assignments, err := env.assignments.ListByBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	// The retired pool no longer accepts claims.
	_, err = env.assignments.Assign(ctx, &models.AssignRequest{
		ItemID: salad.ID, UserID: "carol", Quantity: 1, AmountCents: 700,
	})
	assert.Error(t, err)
}

func TestRemoveItem_RefreshesBalances(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	assign(t, env, salad.ID, "bob", 2, 1400)

	balances, err := env.balances.ListBalances(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(1400), balanceFor(t, balances, "bob").TotalOwed)

	require.NoError(t, env.bills.RemoveItem(ctx, bill.ID, salad.ID, "alice"))

	// The cascaded assignments must not linger in the derived rows.
	balances, err = env.balances.ListBalances(ctx, bill.ID)
	require.NoError(t, err)
	bob := balanceFor(t, balances, "bob")
	assert.Equal(t, models.Money(0), bob.TotalOwed)
	assert.Equal(t, models.Money(0), bob.BalanceRemaining)
	assert.Equal(t, models.ParticipantStatusPaid, bob.PaymentStatus)
}

func TestCreateBill_DeduplicatesParticipants(t *testing.T) {
	env := newTestEnv()

	bill, err := env.bills.CreateBill(context.Background(), &models.CreateBillRequest{
		Name:          "Brunch",
		PayerID:       "alice",
		Participants:  []string{"alice", "bob", "alice", "bob"},
		SubtotalCents: 1000,
		TotalCents:    1000,
		Items:         []models.NewLineItem{{Name: "Waffles", UnitPriceCents: 500, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, bill.Participants)

	stored, err := env.bills.GetBill(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Participants, 2)
}

func TestRemoveItem_WrongBillRejected(t *testing.T) {
	env := newTestEnv()
	first := createDinnerBill(t, env)
	ctx := context.Background()

	other, err := env.bills.CreateBill(ctx, &models.CreateBillRequest{
		Name:          "Other table",
		PayerID:       "alice",
		Participants:  []string{"alice"},
		SubtotalCents: 1000,
		TotalCents:    1000,
		Items:         []models.NewLineItem{{Name: "Soup", UnitPriceCents: 1000, Quantity: 1}},
	})
	require.NoError(t, err)

	err = env.bills.RemoveItem(ctx, first.ID, other.Items[0].ID, "alice")
	assert.Error(t, err)
}
