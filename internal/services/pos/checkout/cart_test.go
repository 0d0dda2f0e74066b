package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func id(v int64) *int64 { return &v }

func TestCart_MergesSameProductAndNotes(t *testing.T) {
	c := NewCart()
	c.Add(Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 1})
	c.Add(Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 2})

	lines := c.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, int64(3), lines[0].Qty)
}

func TestCart_DifferentNotesStaySeparate(t *testing.T) {
	c := NewCart(
		Line{ProductID: id(2), Name: "Latte", Price: d("3.50"), Qty: 1},
		Line{ProductID: id(2), Name: "Latte", Price: d("3.50"), Qty: 1, Notes: "oat milk"},
		Line{ProductID: id(2), Name: "Latte", Price: d("3.50"), Qty: 1, Notes: "oat milk"},
	)

	lines := c.Lines()
	assert.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Qty)
	assert.Equal(t, int64(2), lines[1].Qty)
}

func TestCart_OpenItemsWithoutProduct(t *testing.T) {
	c := NewCart(
		Line{Name: "Tip jar", Price: d("1"), Qty: 1},
		Line{Name: "Tip jar", Price: d("1"), Qty: 1},
		Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 1},
	)

	assert.Equal(t, 2, c.Len())
}

func TestCart_IgnoresNonPositiveQty(t *testing.T) {
	c := NewCart(Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 0})
	assert.Equal(t, 0, c.Len())
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := NewCart(
		Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 1},
		Line{ProductID: id(4), Name: "Croissant", Price: d("2.00"), Qty: 1},
	)

	assert.False(t, c.Remove(5))
	assert.True(t, c.Remove(0))
	assert.Equal(t, "Croissant", c.Lines()[0].Name)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCart_LinesReturnsCopy(t *testing.T) {
	c := NewCart(Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 1})
	lines := c.Lines()
	lines[0].Qty = 99

	assert.Equal(t, int64(1), c.Lines()[0].Qty)
}

func TestCart_Totals(t *testing.T) {
	c := NewCart(
		Line{ProductID: id(1), Name: "Espresso", Price: d("2.50"), Qty: 1},
		Line{ProductID: id(4), Name: "Croissant", Price: d("2.00"), Qty: 1},
	)

	totals := c.Totals(decimal.Zero, d("10"), TaxPercentage)

	assertDecimal(t, "4.50", totals.Subtotal)
	assertDecimal(t, "0.45", totals.Tax)
	assertDecimal(t, "4.95", totals.Total)
}
