package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitbill/splitbill-backend/models"
)

func balanceFor(t *testing.T, balances []models.ParticipantBalance, userID string) *models.ParticipantBalance {
	t.Helper()
	for i := range balances {
		if balances[i].UserID == userID {
			return &balances[i]
		}
	}
	t.Fatalf("no balance row for %q", userID)
	return nil
}

func TestRecompute_OwedFollowsAssignments(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	pizza := itemByName(t, bill, "Pizza")
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	assign(t, env, pizza.ID, "alice", 1, 1899)
	assign(t, env, pizza.ID, "bob", 1, 1899)
	assign(t, env, salad.ID, "bob", 2, 1400)

	balances, err := env.balances.RecomputeBalances(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	alice := balanceFor(t, balances, "alice")
	assert.Equal(t, models.Money(1899), alice.TotalOwed)
	assert.Equal(t, models.Money(0), alice.AmountPaid)
	assert.Equal(t, models.Money(1899), alice.BalanceRemaining)
	assert.Equal(t, models.ParticipantStatusPending, alice.PaymentStatus)

	bob := balanceFor(t, balances, "bob")
	assert.Equal(t, models.Money(3299), bob.TotalOwed)
	assert.Equal(t, models.Money(3299), bob.BalanceRemaining)

	// Carol has neither assignments nor payments: no row.
	for _, balance := range balances {
		assert.NotEqual(t, "carol", balance.UserID)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	pizza := itemByName(t, bill, "Pizza")
	ctx := context.Background()

	assign(t, env, pizza.ID, "bob", 2, 3798)

	first, err := env.balances.RecomputeBalances(ctx, bill.ID)
	require.NoError(t, err)
	second, err := env.balances.RecomputeBalances(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "recompute with no intervening change must be a no-op")
}

func TestRecompute_ReflectsUnassign(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	claim := assign(t, env, salad.ID, "carol", 3, 2100)
	err := env.assignments.Unassign(ctx, &models.UnassignRequest{
		AssignmentID: claim.ID, UserID: "carol",
	})
	require.NoError(t, err)

	balances, err := env.balances.RecomputeBalances(ctx, bill.ID)
	require.NoError(t, err)
	// The stale row from the earlier recompute is overwritten to zero.
	carol := balanceFor(t, balances, "carol")
	assert.Equal(t, models.Money(0), carol.TotalOwed)
	assert.Equal(t, models.Money(0), carol.BalanceRemaining)
	assert.Equal(t, models.ParticipantStatusPaid, carol.PaymentStatus)
}

func TestPaymentFlow_FullPaymentSettlesParticipant(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	assign(t, env, salad.ID, "bob", 2, 1400)

	payment, err := env.payments.RecordPayment(ctx, &models.RecordPaymentRequest{
		BillID: bill.ID, FromUserID: "bob", AmountCents: 1400, Method: "venmo",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	completed, balance, err := env.payments.CompletePayment(ctx, payment.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	require.NotNil(t, balance)
	assert.Equal(t, models.Money(1400), balance.TotalOwed)
	assert.Equal(t, models.Money(1400), balance.AmountPaid)
	assert.Equal(t, models.Money(0), balance.BalanceRemaining)
	assert.Equal(t, models.ParticipantStatusPaid, balance.PaymentStatus)
}

func TestPaymentFlow_PartialPayment(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	pizza := itemByName(t, bill, "Pizza")
	ctx := context.Background()

	assign(t, env, pizza.ID, "carol", 2, 3798)

	payment, err := env.payments.RecordPayment(ctx, &models.RecordPaymentRequest{
		BillID: bill.ID, FromUserID: "carol", AmountCents: 2000,
	})
	require.NoError(t, err)

	_, balance, err := env.payments.CompletePayment(ctx, payment.ID, "carol")
	require.NoError(t, err)

	assert.Equal(t, models.Money(3798), balance.TotalOwed)
	assert.Equal(t, models.Money(2000), balance.AmountPaid)
	assert.Equal(t, models.Money(1798), balance.BalanceRemaining)
	assert.Equal(t, models.ParticipantStatusPartial, balance.PaymentStatus)

	// owed = paid + remaining, exactly, in cents.
	assert.Equal(t, balance.TotalOwed, balance.AmountPaid.Add(balance.BalanceRemaining))
}

func TestPaymentFlow_PendingPaymentsDoNotCount(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	assign(t, env, salad.ID, "bob", 1, 700)

	_, err := env.payments.RecordPayment(ctx, &models.RecordPaymentRequest{
		BillID: bill.ID, FromUserID: "bob", AmountCents: 700,
	})
	require.NoError(t, err)

	balances, err := env.balances.RecomputeBalances(ctx, bill.ID)
	require.NoError(t, err)
	bob := balanceFor(t, balances, "bob")
	assert.Equal(t, models.Money(0), bob.AmountPaid)
	assert.Equal(t, models.ParticipantStatusPending, bob.PaymentStatus)
}

func TestPaymentFlow_OverpaymentFloorsAtZero(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	assign(t, env, salad.ID, "bob", 1, 700)

	payment, err := env.payments.RecordPayment(ctx, &models.RecordPaymentRequest{
		BillID: bill.ID, FromUserID: "bob", AmountCents: 1000,
	})
	require.NoError(t, err)

	_, balance, err := env.payments.CompletePayment(ctx, payment.ID, "alice")
	require.NoError(t, err)

	assert.Equal(t, models.Money(1000), balance.AmountPaid)
	assert.Equal(t, models.Money(0), balance.BalanceRemaining, "overpayment must not go negative")
	assert.Equal(t, models.ParticipantStatusPaid, balance.PaymentStatus)
}

func TestRecompute_IncludesPayersWithoutAssignments(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	ctx := context.Background()

	// Carol claimed nothing but still chipped in.
	payment, err := env.payments.RecordPayment(ctx, &models.RecordPaymentRequest{
		BillID: bill.ID, FromUserID: "carol", AmountCents: 500,
	})
	require.NoError(t, err)
	_, _, err = env.payments.CompletePayment(ctx, payment.ID, "alice")
	require.NoError(t, err)

	balances, err := env.balances.RecomputeBalances(ctx, bill.ID)
	require.NoError(t, err)

	carol := balanceFor(t, balances, "carol")
	assert.Equal(t, models.Money(0), carol.TotalOwed)
	assert.Equal(t, models.Money(500), carol.AmountPaid)
	assert.Equal(t, models.Money(0), carol.BalanceRemaining)
	assert.Equal(t, models.ParticipantStatusPaid, carol.PaymentStatus)
}
