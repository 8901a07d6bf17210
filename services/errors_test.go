package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/splitbill/splitbill-backend/utils"
)

// The codes and statuses are part of the API contract; a change here is
// a breaking change for clients.
func TestDomainErrors_StableCodesAndStatuses(t *testing.T) {
	cases := []struct {
		err    utils.StatusCoder
		code   string
		status int
	}{
		{&TotalMismatchError{}, "TOTAL_MISMATCH", http.StatusBadRequest},
		{&QuantityExceededError{}, "QUANTITY_EXCEEDED", http.StatusConflict},
		{&AmountMismatchError{}, "AMOUNT_MISMATCH", http.StatusBadRequest},
		{&AlreadyAssignedError{}, "ALREADY_ASSIGNED", http.StatusConflict},
		{&NotParticipantError{}, "NOT_PARTICIPANT", http.StatusForbidden},
		{&BillNotActiveError{}, "BILL_NOT_ACTIVE", http.StatusConflict},
		{&InvalidPaymentTransitionError{}, "INVALID_PAYMENT_TRANSITION", http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.ErrorCode())
		assert.Equal(t, tc.status, tc.err.StatusCode())
	}
}
