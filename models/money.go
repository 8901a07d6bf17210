package models

import (
	"fmt"
	"math"
)

// Money is a monetary amount stored as integer minor units (cents).
// All currency math in the engine goes through this type; nothing
// does floating-point arithmetic on amounts.
type Money int64

// ToleranceCents is the maximum discrepancy allowed when reconciling
// a stated amount against a computed one (one cent).
const ToleranceCents Money = 1

// Cents returns the raw minor-unit value.
func (m Money) Cents() int64 {
	return int64(m)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return m - other
}

// MulInt returns the amount scaled by a whole quantity (unit price × quantity).
func (m Money) MulInt(n int64) Money {
	return m * Money(n)
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m == 0
}

// ApproxEqual reports whether two amounts agree within the given tolerance.
func ApproxEqual(a, b, tolerance Money) bool {
	return a.Sub(b).Abs() <= tolerance
}

// MoneyFromFloat converts a float amount in major units (e.g. 18.99) to
// cents with half-away-from-zero rounding. Used only at ingestion
// boundaries that still speak floats (Excel export formatting goes the
// other way via Float64).
func MoneyFromFloat(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Float64 returns the amount in major units for display/export.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String formats the amount as major units with two decimals, e.g. "18.99".
func (m Money) String() string {
	sign := ""
	v := m
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
