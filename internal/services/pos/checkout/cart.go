package checkout

import "github.com/shopspring/decimal"

// Cart is the register's in-progress sale. Adding a line with the same product
// and notes as an existing one bumps that line's quantity instead of appending.
type Cart struct {
	lines []Line
}

func NewCart(lines ...Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		c.Add(l)
	}
	return c
}

// Add ignores non-positive quantities.
func (c *Cart) Add(line Line) {
	if line.Qty <= 0 {
		return
	}
	for i := range c.lines {
		if sameProduct(c.lines[i].ProductID, line.ProductID) && c.lines[i].Notes == line.Notes {
			c.lines[i].Qty += line.Qty
			return
		}
	}
	c.lines = append(c.lines, line)
}

func (c *Cart) Remove(idx int) bool {
	if idx < 0 || idx >= len(c.lines) {
		return false
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Totals(discount, taxRate decimal.Decimal, mode TaxMode) Totals {
	return ComputeTotals(c.lines, discount, taxRate, mode)
}

func sameProduct(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
