package invoice

import "github.com/shopspring/decimal"

// Totals is the full breakdown of an invoice's amounts.
// All four values derive from the line items by the fixed formula:
//
//	lineAmount = quantity * rate * (1 - lineDiscount/100)
//	subtotal   = sum(lineAmount)
//	total      = subtotal * (1 - discount/100) * (1 + tax/100)
//
// Discount and Tax are the absolute amounts subtracted and added, so the
// renderer can show them without re-deriving the formula.
type Totals struct {
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals evaluates the invoice total formula.
//
// This is the single source of truth for every total shown anywhere
// (summary listings, the document view, rendering). The arithmetic runs
// on decimals so intermediate products do not accumulate binary float
// error; results convert back to float64 at the boundary.
func ComputeTotals(inv *Invoice) Totals {
	subtotal := decimal.Zero
	for _, item := range inv.LineItems {
		amount := decimal.NewFromFloat(item.Quantity).
			Mul(decimal.NewFromFloat(item.Rate)).
			Mul(pctRemaining(item.DiscountPercent))
		subtotal = subtotal.Add(amount)
	}

	discount := subtotal.Mul(pctOf(inv.DiscountPercent))
	afterDiscount := subtotal.Sub(discount)
	tax := afterDiscount.Mul(pctOf(inv.TaxPercent))
	total := afterDiscount.Add(tax)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Discount: discount.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// Total returns just the final amount owed.
func Total(inv *Invoice) float64 {
	return ComputeTotals(inv).Total
}

// LineAmount returns the amount for a single line item after its
// per-line discount.
func LineAmount(item LineItem) float64 {
	return decimal.NewFromFloat(item.Quantity).
		Mul(decimal.NewFromFloat(item.Rate)).
		Mul(pctRemaining(item.DiscountPercent)).
		InexactFloat64()
}

// pctOf converts a percentage to its decimal fraction (5 -> 0.05).
func pctOf(percent float64) decimal.Decimal {
	return decimal.NewFromFloat(percent).Div(oneHundred)
}

// pctRemaining converts a discount percentage to the fraction that
// remains after it (10 -> 0.9).
func pctRemaining(percent float64) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(pctOf(percent))
}
