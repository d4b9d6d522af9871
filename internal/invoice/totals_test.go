package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_ReferenceExample(t *testing.T) {
	// One line item {qty=2, rate=50, discount=10%}, document discount 5%,
	// tax 8%: lineAmount=90, subtotal=90, afterDiscount=85.5, total=92.34.
	inv := &Invoice{
		LineItems: []LineItem{
			{ID: "item-1", Quantity: 2, Rate: 50, DiscountPercent: 10},
		},
		DiscountPercent: 5,
		TaxPercent:      8,
	}

	totals := ComputeTotals(inv)
	assert.Equal(t, 90.0, totals.Subtotal)
	assert.Equal(t, 4.5, totals.Discount)
	assert.Equal(t, 6.84, totals.Tax)
	assert.Equal(t, 92.34, totals.Total)
	assert.Equal(t, 92.34, Total(inv))
}

func TestComputeTotals_EmptyInvoice(t *testing.T) {
	inv := &Invoice{}
	assert.Equal(t, 0.0, Total(inv))
}

func TestComputeTotals_NoDiscountNoTax(t *testing.T) {
	inv := &Invoice{
		LineItems: []LineItem{
			{ID: "item-1", Quantity: 1, Rate: 100},
		},
	}
	assert.Equal(t, 100.0, Total(inv))
}

func TestComputeTotals_MultipleItems(t *testing.T) {
	inv := &Invoice{
		LineItems: []LineItem{
			{ID: "a", Quantity: 3, Rate: 10},
			{ID: "b", Quantity: 0.5, Rate: 200, DiscountPercent: 50},
		},
	}
	// 30 + 50 = 80
	totals := ComputeTotals(inv)
	assert.Equal(t, 80.0, totals.Subtotal)
	assert.Equal(t, 80.0, totals.Total)
}

func TestComputeTotals_FullDiscount(t *testing.T) {
	inv := &Invoice{
		LineItems: []LineItem{
			{ID: "a", Quantity: 4, Rate: 25, DiscountPercent: 100},
		},
		TaxPercent: 20,
	}
	assert.Equal(t, 0.0, Total(inv))
}

func TestComputeTotals_DecimalExactness(t *testing.T) {
	// 0.1 * 3 accumulates binary float error with naive arithmetic.
	inv := &Invoice{
		LineItems: []LineItem{
			{ID: "a", Quantity: 3, Rate: 0.1},
		},
	}
	assert.Equal(t, 0.3, Total(inv))
}

func TestLineAmount(t *testing.T) {
	assert.Equal(t, 90.0, LineAmount(LineItem{Quantity: 2, Rate: 50, DiscountPercent: 10}))
	assert.Equal(t, 0.0, LineAmount(LineItem{}))
}
