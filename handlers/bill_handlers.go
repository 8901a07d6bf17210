package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/services"
	"github.com/splitbill/splitbill-backend/utils"
)

// BillHandler handles bill-related HTTP requests
type BillHandler struct {
	bills *services.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(bills *services.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

// CreateBill handles POST /bills/create
func (h *BillHandler) CreateBill(c *gin.Context) {
	var request models.CreateBillRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	bill, err := h.bills.CreateBill(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, models.CreateBillResponse{BillID: bill.ID, Code: bill.Code})
}

// GetBill handles POST /bills/get
func (h *BillHandler) GetBill(c *gin.Context) {
	var request models.GetBillRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	bill, err := h.bills.GetBill(c.Request.Context(), request.BillID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, bill)
}

// GetBillByCode handles POST /bills/getByCode
func (h *BillHandler) GetBillByCode(c *gin.Context) {
	var request models.GetBillByCodeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	bill, err := h.bills.GetBillByCode(c.Request.Context(), request.Code)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, bill)
}

// SettleBill handles POST /bills/settle
func (h *BillHandler) SettleBill(c *gin.Context) {
	h.changeStatus(c, h.bills.SettleBill)
}

// CancelBill handles POST /bills/cancel
func (h *BillHandler) CancelBill(c *gin.Context) {
	h.changeStatus(c, h.bills.CancelBill)
}

func (h *BillHandler) changeStatus(c *gin.Context, change func(context.Context, string, string) (*models.Bill, error)) {
	var request models.ChangeBillStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	bill, err := change(c.Request.Context(), request.BillID, request.UserID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, bill)
}

// AddParticipant handles POST /bills/participants/add
func (h *BillHandler) AddParticipant(c *gin.Context) {
	var request models.AddParticipantRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	if err := h.bills.AddParticipant(c.Request.Context(), request.BillID, request.UserID, request.Participant); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, gin.H{"message": "Participant added"})
}

// RemoveItem handles POST /bills/items/remove
func (h *BillHandler) RemoveItem(c *gin.Context) {
	var request models.RemoveItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	if err := h.bills.RemoveItem(c.Request.Context(), request.BillID, request.ItemID, request.UserID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, gin.H{"message": "Item removed"})
}

// ValidateTotals handles POST /bills/validateTotals
func (h *BillHandler) ValidateTotals(c *gin.Context) {
	var request models.ValidateTotalsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	err := services.ValidateTotals(
		models.Money(request.SubtotalCents),
		models.Money(request.TaxCents),
		models.Money(request.TipCents),
		models.Money(request.TotalCents),
	)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, gin.H{"valid": true})
}
