package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitbill/splitbill-backend/models"
)

func TestSplitEqually_ExactDivision(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")

	created, err := env.assignments.SplitEqually(context.Background(), &models.SplitEquallyRequest{
		ItemID:       salad.ID,
		UserID:       "alice",
		Participants: []string{"alice", "bob", "carol"},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	for _, assignment := range created {
		assert.Equal(t, int64(1), assignment.Quantity)
		assert.Equal(t, models.Money(700), assignment.Amount)
	}
	assert.Equal(t, int64(3), reservedQuantity(t, env, salad.ID))
}

func TestSplitEqually_RemainderGoesToEarliestParticipants(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	pizza := itemByName(t, bill, "Pizza")

	// Two units across three people: the first two listed get one each,
	// the third gets nothing and no assignment row.
	created, err := env.assignments.SplitEqually(context.Background(), &models.SplitEquallyRequest{
		ItemID:       pizza.ID,
		UserID:       "alice",
		Participants: []string{"carol", "bob", "alice"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, "carol", created[0].UserID)
	assert.Equal(t, "bob", created[1].UserID)
	assert.Equal(t, int64(1), created[0].Quantity)
	assert.Equal(t, int64(1), created[1].Quantity)

	// Zero-share participants leave their units in the pool untouched;
	// here the whole quantity was distributed.
	assert.Equal(t, int64(2), reservedQuantity(t, env, pizza.ID))
}

func TestSplitEqually_QuantityConserved(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	participants := []string{"p1", "p2", "p3", "p4", "p5"}
	bill, err := env.bills.CreateBill(ctx, &models.CreateBillRequest{
		Name:          "Wings night",
		PayerID:       "p1",
		Participants:  participants,
		SubtotalCents: 2331, // 7 × 3.33
		TotalCents:    2331,
		Items: []models.NewLineItem{
			{Name: "Wings", UnitPriceCents: 333, Quantity: 7},
		},
	})
	require.NoError(t, err)
	itemID := bill.Items[0].ID

	for n := 1; n <= len(participants); n++ {
		t.Run(fmt.Sprintf("across_%d", n), func(t *testing.T) {
			created, err := env.assignments.SplitEqually(ctx, &models.SplitEquallyRequest{
				ItemID:       itemID,
				UserID:       "p1",
				Participants: participants[:n],
			})
			require.NoError(t, err)

			var total, min, max int64
			min = 7
			for _, assignment := range created {
				total += assignment.Quantity
				if assignment.Quantity < min {
					min = assignment.Quantity
				}
				if assignment.Quantity > max {
					max = assignment.Quantity
				}
				assert.Equal(t, models.Money(333).MulInt(assignment.Quantity), assignment.Amount)
			}
			assert.Equal(t, int64(7), total, "assigned quantities must sum to the item quantity")
			assert.LessOrEqual(t, max-min, int64(1), "shares must differ by at most one unit")
			assert.Equal(t, int64(7), reservedQuantity(t, env, itemID))
		})
	}
}

func TestSplitEqually_ReplacesExistingClaims(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	pizza := itemByName(t, bill, "Pizza")
	ctx := context.Background()

	assign(t, env, pizza.ID, "carol", 2, 3798)
	assert.Equal(t, int64(2), reservedQuantity(t, env, pizza.ID))

	created, err := env.assignments.SplitEqually(ctx, &models.SplitEquallyRequest{
		ItemID:       pizza.ID,
		UserID:       "alice",
		Participants: []string{"alice", "bob"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// Carol's claim is gone; only the split's assignments remain.
	remaining, err := env.store.ListAssignmentsByItem(ctx, pizza.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, assignment := range remaining {
		assert.NotEqual(t, "carol", assignment.UserID)
		assert.Equal(t, int64(1), assignment.Quantity)
	}
	assert.Equal(t, int64(2), reservedQuantity(t, env, pizza.ID))
}

func TestSplitEqually_MorePeopleThanUnits(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	bill, err := env.bills.CreateBill(ctx, &models.CreateBillRequest{
		Name:          "Shared dessert",
		PayerID:       "alice",
		Participants:  []string{"alice", "bob", "carol"},
		SubtotalCents: 500,
		TotalCents:    500,
		Items: []models.NewLineItem{
			{Name: "Tiramisu", UnitPriceCents: 500, Quantity: 1},
		},
	})
	require.NoError(t, err)
	itemID := bill.Items[0].ID

	created, err := env.assignments.SplitEqually(ctx, &models.SplitEquallyRequest{
		ItemID:       itemID,
		UserID:       "bob",
		Participants: []string{"bob", "carol", "alice"},
	})
	require.NoError(t, err)

	// One unit, three people: only the first listed gets a claim and
	// the untaken zero shares release nothing extra.
	require.Len(t, created, 1)
	assert.Equal(t, "bob", created[0].UserID)
	assert.Equal(t, int64(1), created[0].Quantity)
	assert.Equal(t, int64(1), reservedQuantity(t, env, itemID))
}

func TestSplitEqually_LostRaceLeavesClaimsIntact(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")
	ctx := context.Background()

	claim := assign(t, env, salad.ID, "bob", 1, 700)

	// A concurrent claim holds one unit the split cannot see as an
	// assignment yet. The split must fail before destroying anything.
	_, ok, err := env.store.TryReserve(ctx, salad.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.assignments.SplitEqually(ctx, &models.SplitEquallyRequest{
		ItemID:       salad.ID,
		UserID:       "alice",
		Participants: []string{"alice", "bob", "carol"},
	})
	require.Error(t, err)

	var exceeded *QuantityExceededError
	require.True(t, errors.As(err, &exceeded), "expected QuantityExceededError, got %T", err)

	// Bob's original claim survived the failed split.
	survived, err := env.store.GetAssignment(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), survived.Quantity)
	assert.Equal(t, int64(2), reservedQuantity(t, env, salad.ID))
}

func TestSplitEqually_DuplicateParticipantRejected(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")

	_, err := env.assignments.SplitEqually(context.Background(), &models.SplitEquallyRequest{
		ItemID:       salad.ID,
		UserID:       "alice",
		Participants: []string{"alice", "bob", "alice"},
	})
	assert.Error(t, err)
	assert.Equal(t, int64(0), reservedQuantity(t, env, salad.ID))
}

func TestSplitEqually_NonMemberRejected(t *testing.T) {
	env := newTestEnv()
	bill := createDinnerBill(t, env)
	salad := itemByName(t, bill, "Salad")

	_, err := env.assignments.SplitEqually(context.Background(), &models.SplitEquallyRequest{
		ItemID:       salad.ID,
		UserID:       "alice",
		Participants: []string{"alice", "dave"},
	})
	require.Error(t, err)

	var notParticipant *NotParticipantError
	assert.True(t, errors.As(err, &notParticipant), "expected NotParticipantError, got %T", err)
	assert.Equal(t, "dave", notParticipant.UserID)
}
