// models/models.go
package models

import "time"

// Bill statuses. A bill is mutable only while active.
const (
	BillStatusActive    = "active"
	BillStatusSettled   = "settled"
	BillStatusCancelled = "cancelled"
)

// Payment statuses. Transitions are one-directional: pending may move to
// completed, failed or cancelled; terminal states never change.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Participant payment statuses, derived by the balance ledger.
const (
	ParticipantStatusPending = "pending"
	ParticipantStatusPartial = "partial"
	ParticipantStatusPaid    = "paid"
)

// Bill represents one shared expense with a single designated payer.
// Invariant: Subtotal + Tax + Tip == Total within one cent.
type Bill struct {
	ID           string     `json:"_id"`
	Code         string     `json:"code"`
	CreationTime int64      `json:"_creationTime"`
	Name         string     `json:"name"`
	PayerID      string     `json:"payerId"`
	Subtotal     Money      `json:"subtotalCents"`
	Tax          Money      `json:"taxCents"`
	Tip          Money      `json:"tipCents"`
	Total        Money      `json:"totalCents"`
	Status       string     `json:"status"`
	Participants []string   `json:"participants"`
	Items        []LineItem `json:"items,omitempty"`
}

// LineItem is a priced, quantity-bounded entry on a bill.
// ReservedQuantity is the sum of live assignment quantities and never
// exceeds Quantity.
type LineItem struct {
	ID               string `json:"_id"`
	BillID           string `json:"billId"`
	Name             string `json:"name"`
	UnitPrice        Money  `json:"unitPriceCents"`
	Quantity         int64  `json:"quantity"`
	ReservedQuantity int64  `json:"reservedQuantity"`
	Amount           Money  `json:"amountCents"` // UnitPrice × Quantity
}

// AvailableQuantity returns how many units are still unclaimed.
func (i *LineItem) AvailableQuantity() int64 {
	available := i.Quantity - i.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}

// Assignment is one participant's claim on a whole-number quantity of a
// line item. At most one assignment exists per (item, user) pair.
type Assignment struct {
	ID           string `json:"_id"`
	ItemID       string `json:"itemId"`
	BillID       string `json:"billId"`
	UserID       string `json:"userId"`
	Quantity     int64  `json:"quantity"`
	Amount       Money  `json:"amountCents"` // Quantity × item unit price
	CreationTime int64  `json:"_creationTime"`
}

// ParticipantBalance is derived per-(bill, user) state, overwritten on
// every recompute and never edited directly.
type ParticipantBalance struct {
	BillID           string `json:"billId"`
	UserID           string `json:"userId"`
	TotalOwed        Money  `json:"totalOwedCents"`
	AmountPaid       Money  `json:"amountPaidCents"`
	BalanceRemaining Money  `json:"balanceRemainingCents"`
	PaymentStatus    string `json:"paymentStatus"`
}

// Payment is a recorded transfer from a participant toward the bill's payer.
type Payment struct {
	ID          string     `json:"_id"`
	BillID      string     `json:"billId"`
	FromUserID  string     `json:"fromUserId"`
	Amount      Money      `json:"amountCents"`
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Audit issue severities.
const (
	AuditSeverityError   = "error"
	AuditSeverityWarning = "warning"
)

// Audit issue codes.
const (
	AuditTotalMismatch     = "TOTAL_MISMATCH"
	AuditOverAssigned      = "OVER_ASSIGNED"
	AuditPartiallyAssigned = "PARTIALLY_ASSIGNED"
	AuditAmountMismatch    = "AMOUNT_MISMATCH"
)

// AuditIssue is a single finding from the consistency auditor.
type AuditIssue struct {
	Code         string `json:"code"`
	Severity     string `json:"severity"`
	ItemID       string `json:"itemId,omitempty"`
	AssignmentID string `json:"assignmentId,omitempty"`
	Expected     Money  `json:"expectedCents,omitempty"`
	Actual       Money  `json:"actualCents,omitempty"`
	Detail       string `json:"detail"`
}

// AuditReport is the full diagnostic result for one bill. The audit
// always runs to completion and reports every issue found.
type AuditReport struct {
	BillID string       `json:"billId"`
	Clean  bool         `json:"clean"`
	Issues []AuditIssue `json:"issues"`
}

// HasErrors reports whether any issue is of error severity.
func (r *AuditReport) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == AuditSeverityError {
			return true
		}
	}
	return false
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
