package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/logger"
	"cafe-pos/internal/services/pos/checkout"
	"cafe-pos/internal/services/pos/report"
)

// SubmitOrderInput carries client-computed totals. They are recorded as sent,
// rounded to cents; only the payment is re-checked against the total.
type SubmitOrderInput struct {
	Items         []checkout.Line
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	CashReceived  decimal.Decimal
}

// rounded returns a copy with every amount at cents, the precision the
// order tables store.
func (in SubmitOrderInput) rounded() SubmitOrderInput {
	out := in
	out.Items = make([]checkout.Line, len(in.Items))
	for i, line := range in.Items {
		line.Price = line.Price.Round(2)
		out.Items[i] = line
	}
	out.Subtotal = in.Subtotal.Round(2)
	out.Tax = in.Tax.Round(2)
	out.Discount = in.Discount.Round(2)
	out.Total = in.Total.Round(2)
	out.CashReceived = in.CashReceived.Round(2)
	return out
}

// -- Orders Related --

// SubmitOrder records the order, its lines and the stock decrements in one
// transaction. Either every row is written or none is.
func (s *POSHandler) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		checkoutFailuresTotal.WithLabelValues("empty_cart").Inc()
		return nil, checkout.ErrEmptyCart
	}
	for _, line := range in.Items {
		if err := line.Validate(); err != nil {
			checkoutFailuresTotal.WithLabelValues("invalid_line").Inc()
			return nil, err
		}
	}

	in = in.rounded()

	method, err := checkout.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		checkoutFailuresTotal.WithLabelValues("invalid_payment_method").Inc()
		return nil, err
	}
	if err := checkout.ValidatePayment(method, in.Total, in.CashReceived); err != nil {
		checkoutFailuresTotal.WithLabelValues("insufficient_cash").Inc()
		return nil, err
	}

	order := models.Order{
		OrderTime:     s.now(),
		Subtotal:      in.Subtotal,
		Tax:           in.Tax,
		Discount:      in.Discount,
		Total:         in.Total,
		PaymentMethod: method,
		CashReceived:  in.CashReceived,
		ChangeGiven:   checkout.ChangeGiven(method, in.Total, in.CashReceived),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for i, line := range in.Items {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Qty:       line.Qty,
				Price:     line.Price,
				Modifiers: line.Modifiers,
				Notes:     line.Notes,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}

			// Unguarded: concurrent checkouts race on the counter and stock may go negative.
			if line.ProductID != nil {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", *line.ProductID).
					UpdateColumn("stock", gorm.Expr("stock - ?", line.Qty)).Error; err != nil {
					return fmt.Errorf("decrement stock for product %d: %w", *line.ProductID, err)
				}
			}
			items = append(items, item)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		checkoutFailuresTotal.WithLabelValues("storage").Inc()
		logger.Error(ctx, "Checkout transaction rolled back", err, zap.Int("lines", len(in.Items)))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	ordersCreatedTotal.Inc()
	total, _ := order.Total.Float64()
	orderTotalAmount.Observe(total)

	s.InvalidatePOSCaches(ctx, POS_PRODUCT_CACHE_KEY)
	if err := s.publishOrderEvent(ctx, OrderEvent{
		EventType:     EventOrderCreated,
		OrderID:       order.ID,
		Total:         order.Total.StringFixed(2),
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
		Timestamp:     time.Now(),
	}); err != nil {
		logger.Warn(ctx, "Order recorded but event not published", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	logger.Info(ctx, "Order recorded",
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("payment_method", order.PaymentMethod),
	)
	return &order, nil
}

// QuoteResult is the server's view of a cart's totals under the current tax settings.
type QuoteResult struct {
	Lines   []checkout.Line  `json:"items"`
	Totals  checkout.Totals  `json:"totals"`
	TaxRate decimal.Decimal  `json:"tax_percent"`
	TaxMode checkout.TaxMode `json:"tax_mode"`
}

func (s *POSHandler) QuoteOrder(ctx context.Context, lines []checkout.Line, discount decimal.Decimal) (*QuoteResult, error) {
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}

	rate, mode, err := s.TaxConfig(ctx)
	if err != nil {
		return nil, err
	}

	cart := checkout.NewCart(lines...)
	return &QuoteResult{
		Lines:   cart.Lines(),
		Totals:  cart.Totals(discount, rate, mode),
		TaxRate: rate,
		TaxMode: mode,
	}, nil
}

func (s *POSHandler) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, storageErr("get order", err)
	}
	return &order, nil
}

// ListOrders returns orders newest first. Either bound may be empty; the
// result is capped at the configured list limit.
func (s *POSHandler) ListOrders(ctx context.Context, from, to string) ([]models.Order, error) {
	w, err := report.ParseWindow(from, to, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if from != "" {
		query = query.Where("order_time >= ?", w.From)
	}
	if to != "" {
		query = query.Where("order_time <= ?", w.To)
	}

	orders := []models.Order{}
	if err := query.Order("order_time DESC, id DESC").Limit(s.orderListLimit).Find(&orders).Error; err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}
