package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/services"
	"github.com/splitbill/splitbill-backend/utils"
)

// BalanceHandler handles balance, audit and export HTTP requests
type BalanceHandler struct {
	balances *services.BalanceService
	audit    *services.AuditService
	export   *services.ExportService
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(balances *services.BalanceService, audit *services.AuditService, export *services.ExportService) *BalanceHandler {
	return &BalanceHandler{balances: balances, audit: audit, export: export}
}

// RecomputeBalances handles POST /balances/recompute
func (h *BalanceHandler) RecomputeBalances(c *gin.Context) {
	var request models.RecomputeBalancesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	balances, err := h.balances.RecomputeBalances(c.Request.Context(), request.BillID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, balances)
}

// ListBalances handles POST /balances/list
func (h *BalanceHandler) ListBalances(c *gin.Context) {
	var request models.RecomputeBalancesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	balances, err := h.balances.ListBalances(c.Request.Context(), request.BillID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, balances)
}

// AuditBill handles POST /bills/audit
func (h *BalanceHandler) AuditBill(c *gin.Context) {
	var request models.AuditBillRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	report, err := h.audit.AuditBill(c.Request.Context(), request.BillID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, report)
}

// ExportBill handles POST /bills/export
func (h *BalanceHandler) ExportBill(c *gin.Context) {
	var request models.ExportBillRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	file, filename, err := h.export.ExportBillToExcel(c.Request.Context(), request.BillID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		utils.HandleError(c, utils.NewInternalError("Failed to write export"))
	}
}
