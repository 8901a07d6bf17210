// services/audit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/repository"
	"github.com/splitbill/splitbill-backend/utils"
)

// AuditService cross-checks a bill's stored state without mutating it.
// Findings are collected into a report rather than returned as errors,
// so a single pass surfaces every issue. The write paths already gate
// these invariants synchronously; the audit exists because recompute
// paths must never assume earlier invariants held.
type AuditService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(store repository.Store, logger *slog.Logger) *AuditService {
	return &AuditService{store: store, logger: logger}
}

// AuditBill runs the full consistency pass over one bill.
func (s *AuditService) AuditBill(ctx context.Context, billID string) (*models.AuditReport, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFoundError("Bill")
		}
		return nil, utils.NewInternalError("Failed to retrieve data")
	}

	report := &models.AuditReport{BillID: billID, Issues: []models.AuditIssue{}}

	// Bill-level totals.
	if err := ValidateTotals(bill.Subtotal, bill.Tax, bill.Tip, bill.Total); err != nil {
		var mismatch *TotalMismatchError
		if errors.As(err, &mismatch) {
			report.Issues = append(report.Issues, models.AuditIssue{
				Code:     models.AuditTotalMismatch,
				Severity: models.AuditSeverityError,
				Expected: mismatch.Expected,
				Actual:   mismatch.Actual,
				Detail:   mismatch.Error(),
			})
		}
	}

	// Per-item quantity accounting and per-assignment amounts.
	for _, item := range bill.Items {
		assignments, err := s.store.ListAssignmentsByItem(ctx, item.ID)
		if err != nil {
			return nil, utils.NewInternalError("Failed to retrieve data")
		}

		var assignedQuantity int64
		for _, assignment := range assignments {
			assignedQuantity += assignment.Quantity

			expected := item.UnitPrice.MulInt(assignment.Quantity)
			if !models.ApproxEqual(expected, assignment.Amount, models.ToleranceCents) {
				report.Issues = append(report.Issues, models.AuditIssue{
					Code:         models.AuditAmountMismatch,
					Severity:     models.AuditSeverityError,
					ItemID:       item.ID,
					AssignmentID: assignment.ID,
					Expected:     expected,
					Actual:       assignment.Amount,
					Detail: fmt.Sprintf("assignment %s stores %s but %d × %s = %s",
						assignment.ID, assignment.Amount, assignment.Quantity, item.UnitPrice, expected),
				})
			}
		}

		switch {
		case assignedQuantity > item.Quantity:
			report.Issues = append(report.Issues, models.AuditIssue{
				Code:     models.AuditOverAssigned,
				Severity: models.AuditSeverityError,
				ItemID:   item.ID,
				Detail: fmt.Sprintf("item %q has %d units assigned but only %d purchasable",
					item.Name, assignedQuantity, item.Quantity),
			})
		case assignedQuantity > 0 && assignedQuantity < item.Quantity:
			report.Issues = append(report.Issues, models.AuditIssue{
				Code:     models.AuditPartiallyAssigned,
				Severity: models.AuditSeverityWarning,
				ItemID:   item.ID,
				Detail: fmt.Sprintf("item %q has %d of %d units assigned",
					item.Name, assignedQuantity, item.Quantity),
			})
		}
	}

	report.Clean = len(report.Issues) == 0
	if !report.Clean {
		s.logger.Warn("bill audit found issues", "bill_id", billID, "issues", len(report.Issues))
	}
	return report, nil
}
