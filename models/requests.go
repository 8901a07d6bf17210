// models/requests.go
package models

// NewLineItem request payload for an item created with a bill.
type NewLineItem struct {
	Name           string `json:"name" binding:"required"`
	UnitPriceCents int64  `json:"unitPriceCents" binding:"required,min=1"`
	Quantity       int64  `json:"quantity" binding:"required,min=1"`
}

// CreateBillRequest request model
type CreateBillRequest struct {
	Name          string        `json:"name" binding:"required"`
	PayerID       string        `json:"payerId" binding:"required"`
	Participants  []string      `json:"participants" binding:"required,min=1"`
	SubtotalCents int64         `json:"subtotalCents" binding:"min=0"`
	TaxCents      int64         `json:"taxCents" binding:"min=0"`
	TipCents      int64         `json:"tipCents" binding:"min=0"`
	TotalCents    int64         `json:"totalCents" binding:"min=0"`
	Items         []NewLineItem `json:"items" binding:"required,min=1"`
}

// GetBillRequest request model
type GetBillRequest struct {
	BillID string `json:"billId" binding:"required"`
}

// GetBillByCodeRequest request model
type GetBillByCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ChangeBillStatusRequest request model for settle/cancel.
type ChangeBillStatusRequest struct {
	BillID string `json:"billId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// AddParticipantRequest request model
type AddParticipantRequest struct {
	BillID      string `json:"billId" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
	Participant string `json:"participant" binding:"required"`
}

// RemoveItemRequest request model
type RemoveItemRequest struct {
	BillID string `json:"billId" binding:"required"`
	ItemID string `json:"itemId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// ValidateTotalsRequest request model
type ValidateTotalsRequest struct {
	SubtotalCents int64 `json:"subtotalCents" binding:"min=0"`
	TaxCents      int64 `json:"taxCents" binding:"min=0"`
	TipCents      int64 `json:"tipCents" binding:"min=0"`
	TotalCents    int64 `json:"totalCents" binding:"min=0"`
}

// AssignRequest request model
type AssignRequest struct {
	ItemID      string `json:"itemId" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
	AmountCents int64  `json:"amountCents" binding:"required,min=1"`
}

// UpdateAssignmentRequest request model
type UpdateAssignmentRequest struct {
	AssignmentID string `json:"assignmentId" binding:"required"`
	UserID       string `json:"userId" binding:"required"`
	NewQuantity  int64  `json:"newQuantity" binding:"required,min=1"`
}

// UnassignRequest request model
type UnassignRequest struct {
	AssignmentID string `json:"assignmentId" binding:"required"`
	UserID       string `json:"userId" binding:"required"`
}

// SplitEquallyRequest request model. Participants is the caller-supplied
// order; remainder units go to the earliest entries.
type SplitEquallyRequest struct {
	ItemID       string   `json:"itemId" binding:"required"`
	UserID       string   `json:"userId" binding:"required"`
	Participants []string `json:"participants" binding:"required,min=1"`
}

// RecomputeBalancesRequest request model
type RecomputeBalancesRequest struct {
	BillID string `json:"billId" binding:"required"`
}

// AuditBillRequest request model
type AuditBillRequest struct {
	BillID string `json:"billId" binding:"required"`
}

// RecordPaymentRequest request model
type RecordPaymentRequest struct {
	BillID      string `json:"billId" binding:"required"`
	FromUserID  string `json:"fromUserId" binding:"required"`
	AmountCents int64  `json:"amountCents" binding:"required,min=1"`
	Method      string `json:"method"`
}

// ChangePaymentStatusRequest request model for complete/fail/cancel.
type ChangePaymentStatusRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
}

// ListPaymentsRequest request model
type ListPaymentsRequest struct {
	BillID string `json:"billId" binding:"required"`
}

// ExportBillRequest request model
type ExportBillRequest struct {
	BillID string `json:"billId" binding:"required"`
}

// CreateBillResponse response model
type CreateBillResponse struct {
	BillID string `json:"billId"`
	Code   string `json:"code"`
}
