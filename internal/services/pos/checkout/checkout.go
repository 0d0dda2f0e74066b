// Package checkout holds the pure part of the checkout engine: cart state,
// totals and payment rules. Nothing here touches storage.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/database/models"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientCash     = errors.New("cash received is less than total")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrInvalidTaxMode       = errors.New("unknown tax mode")
	ErrInvalidLine          = errors.New("invalid cart line")
)

type TaxMode string

const (
	TaxPercentage TaxMode = "percentage"
	TaxNone       TaxMode = "none"
)

func ParseTaxMode(s string) (TaxMode, error) {
	switch TaxMode(strings.ToLower(strings.TrimSpace(s))) {
	case TaxPercentage, "":
		return TaxPercentage, nil
	case TaxNone:
		return TaxNone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaxMode, s)
}

type Line struct {
	ProductID *int64          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int64           `json:"qty"`
	Modifiers string          `json:"modifiers"`
	Notes     string          `json:"notes"`
}

// Validate checks a single line: a name, a positive quantity and a
// non-negative price.
func (l Line) Validate() error {
	switch {
	case strings.TrimSpace(l.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidLine)
	case l.Qty <= 0:
		return fmt.Errorf("%w: %q quantity must be positive", ErrInvalidLine, l.Name)
	case l.Price.IsNegative():
		return fmt.Errorf("%w: %q price must not be negative", ErrInvalidLine, l.Name)
	}
	return nil
}

func (l Line) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Qty))
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums the lines and applies tax then discount. taxRate is a
// percentage (10 means 10%). Tax is rounded to cents; total never drops below zero.
func ComputeTotals(lines []Line, discount, taxRate decimal.Decimal, mode TaxMode) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}

	tax := decimal.Zero
	if mode == TaxPercentage {
		tax = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    FloorTotal(subtotal, tax, discount),
	}
}

func FloorTotal(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, subtotal.Add(tax).Sub(discount))
}

// ParsePaymentMethod accepts "cash"/"card" in any case.
func ParsePaymentMethod(s string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(s)); m {
	case models.PaymentCash, models.PaymentCard:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
}

// ValidatePayment only enforces a minimum for cash; what a card tenders is
// informational.
func ValidatePayment(method string, total, cashReceived decimal.Decimal) error {
	m, err := ParsePaymentMethod(method)
	if err != nil {
		return err
	}
	if m == models.PaymentCash && cashReceived.LessThan(total) {
		return fmt.Errorf("%w: received %s, total %s", ErrInsufficientCash, cashReceived.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func ChangeGiven(method string, total, cashReceived decimal.Decimal) decimal.Decimal {
	if m, _ := ParsePaymentMethod(method); m != models.PaymentCash {
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, cashReceived.Sub(total))
}
