package invoice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_DeepCopiesLineItems(t *testing.T) {
	orig := &Invoice{
		ID: "1000-INV-0001",
		LineItems: []LineItem{
			{ID: "item-1", Description: "Consulting", Quantity: 1, Rate: 100},
		},
	}

	c := orig.Clone()
	c.LineItems[0].Rate = 999
	c.LineItems = append(c.LineItems, LineItem{ID: "item-2"})

	assert.Equal(t, 100.0, orig.LineItems[0].Rate, "clone mutation must not reach the original")
	assert.Len(t, orig.LineItems, 1)
}

func TestClone_NilLineItems(t *testing.T) {
	c := (&Invoice{ID: "x"}).Clone()
	assert.Nil(t, c.LineItems)
	assert.Equal(t, "x", c.ID)
}

func TestItem_Lookup(t *testing.T) {
	inv := &Invoice{
		LineItems: []LineItem{{ID: "a"}, {ID: "b"}},
	}
	require.NotNil(t, inv.Item("b"))
	assert.Equal(t, "b", inv.Item("b").ID)
	assert.Nil(t, inv.Item("missing"))

	// The pointer addresses the invoice's own slice entry.
	inv.Item("a").Rate = 42
	assert.Equal(t, 42.0, inv.LineItems[0].Rate)
}

func TestDirName_PrefersName(t *testing.T) {
	inv := &Invoice{Number: "INV-0001", Name: "Acme Retainer"}
	assert.Equal(t, "Acme Retainer", inv.DirName())

	inv.Name = ""
	assert.Equal(t, "INV-0001", inv.DirName())

	s := Summary{Number: "INV-0002", Name: "March"}
	assert.Equal(t, "March", s.DirName())
	s.Name = ""
	assert.Equal(t, "INV-0002", s.DirName())
}

func TestSummarize(t *testing.T) {
	inv := &Invoice{
		ID:     "1700000000-INV-0007",
		Number: "INV-0007",
		Name:   "Kitchen remodel",
		Date:   "2023-11-14",
		Status: StatusSent,
		LineItems: []LineItem{
			{ID: "item-1", Quantity: 1, Rate: 100},
		},
	}

	s := Summarize(inv)
	assert.Equal(t, inv.ID, s.ID)
	assert.Equal(t, inv.Number, s.Number)
	assert.Equal(t, inv.Name, s.Name)
	assert.Equal(t, inv.Date, s.Date)
	assert.Equal(t, StatusSent, s.Status)
	assert.Equal(t, 100.0, s.Total)
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("Cancelled").Valid())
	assert.False(t, Status("").Valid())
}

func TestInvoice_JSONRoundTrip(t *testing.T) {
	inv := &Invoice{
		ID:              "1700000000-INV-0001",
		Number:          "INV-0001",
		Date:            "2023-11-14",
		DueDate:         "2023-12-14",
		Invoicer:        ContactInfo{Name: "Studio", Address: "1 Main St"},
		Invoicee:        ContactInfo{Name: "Client", Address: "2 Main St", Email: "c@example.com"},
		LineItems:       []LineItem{{ID: "item-1", Description: "Work", Quantity: 2, Rate: 50, DiscountPercent: 10}},
		DiscountPercent: 5,
		TaxPercent:      8,
		Notes:           "net 30",
		Status:          StatusDraft,
		CreatedAt:       1700000000,
		UpdatedAt:       1700000001,
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	var got Invoice
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *inv, got)
}
