package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/invoice"
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func summary(id, number string, total float64) invoice.Summary {
	return invoice.Summary{
		ID:     id,
		Number: number,
		Date:   "2024-01-05",
		Total:  total,
		Status: invoice.StatusDraft,
	}
}

func TestUpsert_InsertAndGet(t *testing.T) {
	ix := openIndex(t)

	require.NoError(t, ix.Upsert(summary("1000-INV-0001", "INV-0001", 50)))

	got, ok, err := ix.Get("1000-INV-0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "INV-0001", got.Number)
	assert.Equal(t, 50.0, got.Total)
	assert.Equal(t, invoice.StatusDraft, got.Status)
}

func TestUpsert_LastWriterWins(t *testing.T) {
	ix := openIndex(t)

	require.NoError(t, ix.Upsert(summary("1000-INV-0001", "INV-0001", 50)))

	updated := summary("1000-INV-0001", "INV-0001", 175)
	updated.Name = "Renamed"
	updated.Status = invoice.StatusSent
	require.NoError(t, ix.Upsert(updated))

	got, ok, err := ix.Get("1000-INV-0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 175.0, got.Total)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, invoice.StatusSent, got.Status)

	n, err := ix.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGet_Missing(t *testing.T) {
	ix := openIndex(t)
	_, ok, err := ix.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemove_DeletesEntry(t *testing.T) {
	ix := openIndex(t)
	require.NoError(t, ix.Upsert(summary("1000-INV-0001", "INV-0001", 50)))

	require.NoError(t, ix.Remove("1000-INV-0001"))

	_, ok, err := ix.Get("1000-INV-0001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	ix := openIndex(t)
	assert.NoError(t, ix.Remove("never-existed"))
}

func TestList_DeterministicOrder(t *testing.T) {
	ix := openIndex(t)

	// Inserted out of id order on purpose.
	require.NoError(t, ix.Upsert(summary("1003-INV-0003", "INV-0003", 3)))
	require.NoError(t, ix.Upsert(summary("1001-INV-0001", "INV-0001", 1)))
	require.NoError(t, ix.Upsert(summary("1002-INV-0002", "INV-0002", 2)))

	first, err := ix.List()
	require.NoError(t, err)
	second, err := ix.List()
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeated listings must agree")
	require.Len(t, first, 3)
	assert.Equal(t, "1001-INV-0001", first[0].ID)
	assert.Equal(t, "1002-INV-0002", first[1].ID)
	assert.Equal(t, "1003-INV-0003", first[2].ID)
}

func TestRebuild_ClearsAndRepopulates(t *testing.T) {
	ix := openIndex(t)
	require.NoError(t, ix.Upsert(summary("stale", "INV-9999", 9)))

	docs := []*invoice.Invoice{
		{
			ID:     "1001-INV-0001",
			Number: "INV-0001",
			Date:   "2024-01-05",
			Status: invoice.StatusDraft,
			LineItems: []invoice.LineItem{
				{ID: "item-1", Quantity: 1, Rate: 100},
			},
		},
		{
			ID:     "1002-INV-0002",
			Number: "INV-0002",
			Date:   "2024-01-06",
			Status: invoice.StatusPaid,
		},
	}
	require.NoError(t, ix.Rebuild(docs))

	_, ok, err := ix.Get("stale")
	require.NoError(t, err)
	assert.False(t, ok, "rebuild must clear prior entries")

	got, ok, err := ix.Get("1001-INV-0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, got.Total, "rebuild computes totals from the documents")

	n, err := ix.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRebuild_Empty(t *testing.T) {
	ix := openIndex(t)
	require.NoError(t, ix.Upsert(summary("x", "INV-0001", 1)))
	require.NoError(t, ix.Rebuild(nil))

	n, err := ix.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
