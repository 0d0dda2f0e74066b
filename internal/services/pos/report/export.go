package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"cafe-pos/internal/database/models"
)

var ExportHeader = []string{
	"order_id", "order_time", "subtotal", "tax", "discount", "total",
	"payment_method", "cash_received", "change_given",
}

// WriteCSV writes one row per order, oldest first.
func WriteCSV(w io.Writer, orders []models.Order) error {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OrderTime.Equal(sorted[j].OrderTime) {
			return sorted[i].OrderTime.Before(sorted[j].OrderTime)
		}
		return sorted[i].ID < sorted[j].ID
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, o := range sorted {
		row := []string{
			strconv.FormatInt(o.ID, 10),
			o.OrderTime.Format(time.RFC3339),
			o.Subtotal.StringFixed(2),
			o.Tax.StringFixed(2),
			o.Discount.StringFixed(2),
			o.Total.StringFixed(2),
			o.PaymentMethod,
			o.CashReceived.StringFixed(2),
			o.ChangeGiven.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
