package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/services"
	"github.com/splitbill/splitbill-backend/utils"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPayment handles POST /payments/record
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var request models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	payment, err := h.payments.RecordPayment(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, payment)
}

// CompletePayment handles POST /payments/complete
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	var request models.ChangePaymentStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	payment, balance, err := h.payments.CompletePayment(c.Request.Context(), request.PaymentID, request.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, gin.H{"payment": payment, "balance": balance})
}

// FailPayment handles POST /payments/fail
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	h.changeStatus(c, h.payments.FailPayment)
}

// CancelPayment handles POST /payments/cancel
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	h.changeStatus(c, h.payments.CancelPayment)
}

func (h *PaymentHandler) changeStatus(c *gin.Context, change func(ctx context.Context, paymentID, userID string) (*models.Payment, error)) {
	var request models.ChangePaymentStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	payment, err := change(c.Request.Context(), request.PaymentID, request.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, payment)
}

// ListPayments handles POST /payments/list
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var request models.ListPaymentsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	payments, err := h.payments.ListPayments(c.Request.Context(), request.BillID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, payments)
}
