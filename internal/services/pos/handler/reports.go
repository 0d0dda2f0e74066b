package handler

import (
	"bytes"
	"context"

	"gorm.io/gorm"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/services/pos/report"
)

// -- Reports --

func (s *POSHandler) Summary(ctx context.Context, from, to string) (*report.Summary, error) {
	w, err := report.ParseWindow(from, to, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	orders, err := s.ordersInWindow(ctx, w, true)
	if err != nil {
		return nil, err
	}

	summary := report.Build(orders, s.topItemsLimit)
	return &summary, nil
}

// ExportCSV renders the orders of the window as CSV, oldest first.
func (s *POSHandler) ExportCSV(ctx context.Context, from, to string) ([]byte, error) {
	w, err := report.ParseWindow(from, to, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	orders, err := s.ordersInWindow(ctx, w, false)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, orders); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *POSHandler) ordersInWindow(ctx context.Context, w report.Window, withItems bool) ([]models.Order, error) {
	query := s.db.WithContext(ctx).
		Where("order_time BETWEEN ? AND ?", w.From, w.To).
		Order("order_time ASC, id ASC")
	if withItems {
		query = query.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, storageErr("load report window", err)
	}
	return orders, nil
}
