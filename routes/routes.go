package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/splitbill/splitbill-backend/handlers"
)

// SetupRoutes configures all API routes for the application
func SetupRoutes(
	router *gin.Engine,
	billHandler *handlers.BillHandler,
	assignmentHandler *handlers.AssignmentHandler,
	balanceHandler *handlers.BalanceHandler,
	paymentHandler *handlers.PaymentHandler,
) {
	v1 := router.Group("/api/v1")
	{
		// Bill endpoints
		v1.POST("/bills/create", billHandler.CreateBill)
		v1.POST("/bills/get", billHandler.GetBill)
		v1.POST("/bills/getByCode", billHandler.GetBillByCode)
		v1.POST("/bills/settle", billHandler.SettleBill)
		v1.POST("/bills/cancel", billHandler.CancelBill)
		v1.POST("/bills/participants/add", billHandler.AddParticipant)
		v1.POST("/bills/items/remove", billHandler.RemoveItem)
		v1.POST("/bills/validateTotals", billHandler.ValidateTotals)
		v1.POST("/bills/audit", balanceHandler.AuditBill)
		v1.POST("/bills/export", balanceHandler.ExportBill)

		// Assignment endpoints
		v1.POST("/assignments/assign", assignmentHandler.Assign)
		v1.POST("/assignments/update", assignmentHandler.Update)
		v1.POST("/assignments/unassign", assignmentHandler.Unassign)
		v1.POST("/assignments/splitEqually", assignmentHandler.SplitEqually)

		// Balance endpoints
		v1.POST("/balances/recompute", balanceHandler.RecomputeBalances)
		v1.POST("/balances/list", balanceHandler.ListBalances)

		// Payment endpoints
		v1.POST("/payments/record", paymentHandler.RecordPayment)
		v1.POST("/payments/complete", paymentHandler.CompletePayment)
		v1.POST("/payments/fail", paymentHandler.FailPayment)
		v1.POST("/payments/cancel", paymentHandler.CancelPayment)
		v1.POST("/payments/list", paymentHandler.ListPayments)
	}
}
