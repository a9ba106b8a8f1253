// Package shipping prices delivery for an order subtotal.
package shipping

import "github.com/shopspring/decimal"

// Calculator charges a flat Fee below Threshold and nothing at or above it.
type Calculator struct {
	Threshold decimal.Decimal
	Fee       decimal.Decimal
}

func New(threshold, fee decimal.Decimal) Calculator {
	return Calculator{Threshold: threshold, Fee: fee}
}

func (c Calculator) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.Threshold) {
		return decimal.Zero
	}
	return c.Fee
}

// Total returns subtotal plus shipping.
func (c Calculator) Total(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(c.Cost(subtotal))
}
