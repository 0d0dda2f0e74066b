// Package report aggregates recorded orders over a reporting window.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/database/models"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Window is an inclusive [From, To] time range.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// ParseWindow turns calendar-date bounds into instants in loc. A day bound
// covers the whole day; a missing start is the Unix epoch and a missing end is now.
func ParseWindow(from, to string, loc *time.Location, now time.Time) (Window, error) {
	if loc == nil {
		loc = time.Local
	}

	w := Window{From: time.Unix(0, 0).In(loc), To: now.In(loc)}

	if from != "" {
		start, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: from=%q", ErrInvalidDate, from)
		}
		w.From = start
	}
	if to != "" {
		day, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return Window{}, fmt.Errorf("%w: to=%q", ErrInvalidDate, to)
		}
		w.To = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return w, nil
}

type Totals struct {
	Orders int64           `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

type TopItem struct {
	Name    string          `json:"name"`
	Qty     int64           `json:"qty"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Summary struct {
	Totals Totals    `json:"totals"`
	Top    []TopItem `json:"top"`
}

func Summarize(orders []models.Order) Totals {
	t := Totals{Sales: decimal.Zero}
	for _, o := range orders {
		t.Orders++
		t.Sales = t.Sales.Add(o.Total)
	}
	return t
}

// TopItems groups lines by captured name and ranks by quantity sold, ties
// broken by name so the ranking is stable across runs.
func TopItems(items []models.OrderItem, n int) []TopItem {
	byName := map[string]*TopItem{}
	for _, it := range items {
		agg, ok := byName[it.Name]
		if !ok {
			agg = &TopItem{Name: it.Name, Revenue: decimal.Zero}
			byName[it.Name] = agg
		}
		agg.Qty += it.Qty
		agg.Revenue = agg.Revenue.Add(it.Price.Mul(decimal.NewFromInt(it.Qty)))
	}

	top := make([]TopItem, 0, len(byName))
	for _, agg := range byName {
		top = append(top, *agg)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Qty != top[j].Qty {
			return top[i].Qty > top[j].Qty
		}
		return top[i].Name < top[j].Name
	})

	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}

func Build(orders []models.Order, topN int) Summary {
	var items []models.OrderItem
	for _, o := range orders {
		items = append(items, o.Items...)
	}
	return Summary{
		Totals: Summarize(orders),
		Top:    TopItems(items, topN),
	}
}
