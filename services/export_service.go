// services/export_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/utils"
)

// ExportService renders a bill into an Excel workbook with balance,
// assignment and payment sheets.
type ExportService struct {
	bills       *BillService
	assignments *AssignmentService
	balances    *BalanceService
	payments    *PaymentService
}

// NewExportService creates a new export service
func NewExportService(bills *BillService, assignments *AssignmentService, balances *BalanceService, payments *PaymentService) *ExportService {
	return &ExportService{
		bills:       bills,
		assignments: assignments,
		balances:    balances,
		payments:    payments,
	}
}

// ExportBillToExcel generates an Excel file for a bill
func (s *ExportService) ExportBillToExcel(ctx context.Context, billID string) (*excelize.File, string, error) {
	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, "", err
	}
	assignments, err := s.assignments.ListByBill(ctx, billID)
	if err != nil {
		return nil, "", err
	}
	balances, err := s.balances.RecomputeBalances(ctx, billID)
	if err != nil {
		return nil, "", err
	}
	payments, err := s.payments.ListPayments(ctx, billID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()

	if err := s.createBalancesSheet(f, bill, balances); err != nil {
		return nil, "", fmt.Errorf("failed to create balances sheet: %v", err)
	}
	if err := s.createAssignmentsSheet(f, bill, assignments); err != nil {
		return nil, "", fmt.Errorf("failed to create assignments sheet: %v", err)
	}
	if err := s.createPaymentsSheet(f, payments); err != nil {
		return nil, "", fmt.Errorf("failed to create payments sheet: %v", err)
	}

	f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("%s_Export_%s.xlsx",
		utils.CleanFileName(bill.Name),
		time.Now().Format("2006-01-02"))

	return f, filename, nil
}

// createBalancesSheet creates Sheet 1: Balances
func (s *ExportService) createBalancesSheet(f *excelize.File, bill *models.Bill, balances []models.ParticipantBalance) error {
	sheetName := "Balances"
	f.NewSheet(sheetName)
	sheetIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIndex)

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bill: %s (paid by %s, total %s)", bill.Name, bill.PayerID, bill.Total))

	headers := []string{"Participant", "Total Owed", "Amount Paid", "Balance Remaining", "Status"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, balance := range balances {
		row := i + 4
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), balance.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), balance.TotalOwed.Float64())
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), balance.AmountPaid.Float64())
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), balance.BalanceRemaining.Float64())
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), balance.PaymentStatus)
	}
	return nil
}

// createAssignmentsSheet creates Sheet 2: Assignments
func (s *ExportService) createAssignmentsSheet(f *excelize.File, bill *models.Bill, assignments []models.Assignment) error {
	sheetName := "Assignments"
	f.NewSheet(sheetName)

	itemNames := make(map[string]string, len(bill.Items))
	for _, item := range bill.Items {
		itemNames[item.ID] = item.Name
	}

	headers := []string{"Item", "Participant", "Quantity", "Amount"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, assignment := range assignments {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), itemNames[assignment.ItemID])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), assignment.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), assignment.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), assignment.Amount.Float64())
	}
	return nil
}

// createPaymentsSheet creates Sheet 3: Payments
func (s *ExportService) createPaymentsSheet(f *excelize.File, payments []models.Payment) error {
	sheetName := "Payments"
	f.NewSheet(sheetName)

	headers := []string{"From", "Amount", "Method", "Status", "Created", "Completed"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, payment := range payments {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), payment.FromUserID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), payment.Amount.Float64())
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), payment.Method)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), payment.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), payment.CreatedAt.Format("2006-01-02 15:04"))
		if payment.CompletedAt != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), payment.CompletedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
