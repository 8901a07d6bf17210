// services/totals_service.go
package services

import "github.com/splitbill/splitbill-backend/models"

// ValidateTotals checks that subtotal + tax + tip reconciles with the
// stated total within one cent. Pure function, no side effects; on
// failure the returned error carries both amounts so callers can show a
// precise diagnostic.
func ValidateTotals(subtotal, tax, tip, total models.Money) error {
	calculated := subtotal.Add(tax).Add(tip)
	if !models.ApproxEqual(calculated, total, models.ToleranceCents) {
		return &TotalMismatchError{Expected: calculated, Actual: total}
	}
	return nil
}
