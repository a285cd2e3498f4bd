// Package pricing computes booking totals in currency precision.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyScale matches the decimal(10,2) money columns
const CurrencyScale = 2

var ErrInvalidArgument = errors.New("invalid pricing argument")

// ComputeTotal returns unitPrice × attendees rounded to currency scale
func ComputeTotal(unitPrice decimal.Decimal, attendees int) (decimal.Decimal, error) {
	if attendees < 1 {
		return decimal.Zero, fmt.Errorf("%w: attendees must be at least 1, got %d", ErrInvalidArgument, attendees)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit price must not be negative, got %s", ErrInvalidArgument, unitPrice)
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(attendees))).Round(CurrencyScale), nil
}
