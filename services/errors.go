// services/errors.go
package services

import (
	"fmt"
	"net/http"

	"github.com/splitbill/splitbill-backend/models"
)

// The engine's failure modes are distinct named types rather than a
// generic error, so callers can render a specific message and, for
// QuantityExceeded, offer a corrected maximum. Each carries its HTTP
// status and a stable code for utils.HandleError; the codes are part of
// the API contract and never change.

// TotalMismatchError reports that subtotal + tax + tip does not
// reconcile with the stated total.
type TotalMismatchError struct {
	Expected models.Money // computed subtotal + tax + tip
	Actual   models.Money // stated total
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("bill totals do not reconcile: expected %s, got %s (difference %s)",
		e.Expected, e.Actual, e.Actual.Sub(e.Expected).Abs())
}

func (e *TotalMismatchError) StatusCode() int { return http.StatusBadRequest }

func (e *TotalMismatchError) ErrorCode() string { return "TOTAL_MISMATCH" }

// QuantityExceededError reports a claim for more units than remain in
// the item's pool. This is the expected outcome of a lost allocation
// race and is safe to retry with a reduced quantity.
type QuantityExceededError struct {
	Requested int64
	Available int64
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("requested quantity %d exceeds available %d", e.Requested, e.Available)
}

func (e *QuantityExceededError) StatusCode() int { return http.StatusConflict }

func (e *QuantityExceededError) ErrorCode() string { return "QUANTITY_EXCEEDED" }

// AmountMismatchError reports that a claimed amount disagrees with
// quantity × unit price. Never silently corrected.
type AmountMismatchError struct {
	Expected models.Money
	Provided models.Money
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("claimed amount %s does not match computed %s", e.Provided, e.Expected)
}

func (e *AmountMismatchError) StatusCode() int { return http.StatusBadRequest }

func (e *AmountMismatchError) ErrorCode() string { return "AMOUNT_MISMATCH" }

// AlreadyAssignedError reports a duplicate claim; the caller should
// update the existing assignment instead.
type AlreadyAssignedError struct {
	ItemID       string
	UserID       string
	AssignmentID string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("user %s already has an assignment on item %s", e.UserID, e.ItemID)
}

func (e *AlreadyAssignedError) StatusCode() int { return http.StatusConflict }

func (e *AlreadyAssignedError) ErrorCode() string { return "ALREADY_ASSIGNED" }

// NotParticipantError reports an assignment or payment attempted by or
// for someone who is not an active member of the bill. An authorization
// failure, distinct from data validation.
type NotParticipantError struct {
	BillID string
	UserID string
}

func (e *NotParticipantError) Error() string {
	return fmt.Sprintf("user %s is not a participant of bill %s", e.UserID, e.BillID)
}

func (e *NotParticipantError) StatusCode() int { return http.StatusForbidden }

func (e *NotParticipantError) ErrorCode() string { return "NOT_PARTICIPANT" }

// BillNotActiveError reports a write against a settled or cancelled bill.
type BillNotActiveError struct {
	BillID string
	Status string
}

func (e *BillNotActiveError) Error() string {
	return fmt.Sprintf("bill %s is %s and can no longer be modified", e.BillID, e.Status)
}

func (e *BillNotActiveError) StatusCode() int { return http.StatusConflict }

func (e *BillNotActiveError) ErrorCode() string { return "BILL_NOT_ACTIVE" }

// InvalidPaymentTransitionError reports an attempt to move a payment
// out of a terminal status.
type InvalidPaymentTransitionError struct {
	PaymentID string
	From      string
	To        string
}

func (e *InvalidPaymentTransitionError) Error() string {
	return fmt.Sprintf("payment %s cannot move from %s to %s", e.PaymentID, e.From, e.To)
}

func (e *InvalidPaymentTransitionError) StatusCode() int { return http.StatusConflict }

func (e *InvalidPaymentTransitionError) ErrorCode() string { return "INVALID_PAYMENT_TRANSITION" }
