package checkout

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeTotals_Percentage(t *testing.T) {
	lines := []Line{
		{Name: "Espresso", Price: d("2.50"), Qty: 2},
		{Name: "Croissant", Price: d("2.00"), Qty: 1},
	}

	totals := ComputeTotals(lines, d("1.00"), d("10"), TaxPercentage)

	assertDecimal(t, "7.00", totals.Subtotal)
	assertDecimal(t, "0.70", totals.Tax)
	assertDecimal(t, "1.00", totals.Discount)
	assertDecimal(t, "6.70", totals.Total)
}

func TestComputeTotals_NoTaxMode(t *testing.T) {
	lines := []Line{{Name: "Latte", Price: d("3.50"), Qty: 3}}

	totals := ComputeTotals(lines, d("0.50"), d("10"), TaxNone)

	assertDecimal(t, "10.50", totals.Subtotal)
	assertDecimal(t, "0", totals.Tax)
	assertDecimal(t, "10.00", totals.Total)
}

func TestComputeTotals_TaxRoundedToCents(t *testing.T) {
	lines := []Line{{Name: "Odd", Price: d("0.33"), Qty: 1}}

	totals := ComputeTotals(lines, decimal.Zero, d("7.5"), TaxPercentage)

	assertDecimal(t, "0.02", totals.Tax)
}

func TestComputeTotals_DiscountLargerThanSubtotal(t *testing.T) {
	lines := []Line{{Name: "Espresso", Price: d("2.50"), Qty: 1}}

	totals := ComputeTotals(lines, d("100"), d("10"), TaxPercentage)

	assertDecimal(t, "0", totals.Total)
}

func TestComputeTotals_TotalInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var lines []Line
		for n := rng.Intn(5); n >= 0; n-- {
			lines = append(lines, Line{
				Name:  "item",
				Price: decimal.New(int64(rng.Intn(2000)), -2),
				Qty:   int64(rng.Intn(5) + 1),
			})
		}
		discount := decimal.New(int64(rng.Intn(5000)), -2)
		mode := TaxPercentage
		if rng.Intn(2) == 0 {
			mode = TaxNone
		}

		totals := ComputeTotals(lines, discount, decimal.NewFromInt(int64(rng.Intn(25))), mode)

		want := decimal.Max(decimal.Zero, totals.Subtotal.Add(totals.Tax).Sub(totals.Discount))
		require.True(t, want.Equal(totals.Total), "iteration %d", i)
		require.False(t, totals.Total.IsNegative(), "iteration %d", i)
	}
}

func TestParseTaxMode(t *testing.T) {
	m, err := ParseTaxMode("NONE")
	require.NoError(t, err)
	assert.Equal(t, TaxNone, m)

	m, err = ParseTaxMode("")
	require.NoError(t, err)
	assert.Equal(t, TaxPercentage, m)

	_, err = ParseTaxMode("vat")
	assert.ErrorIs(t, err, ErrInvalidTaxMode)
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		total   string
		cash    string
		wantErr error
	}{
		{"cash exact", "cash", "5.50", "5.50", nil},
		{"cash over", "Cash", "5.50", "10", nil},
		{"cash short", "cash", "5.50", "5.49", ErrInsufficientCash},
		{"card ignores tendered", "card", "5.50", "0", nil},
		{"unknown method", "voucher", "5.50", "10", ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayment(tt.method, d(tt.total), d(tt.cash))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestChangeGiven(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		total := decimal.New(int64(rng.Intn(3000)), -2)
		cash := decimal.New(int64(rng.Intn(3000)), -2)

		change := ChangeGiven("cash", total, cash)

		want := decimal.Max(decimal.Zero, cash.Sub(total))
		require.True(t, want.Equal(change), "iteration %d", i)
		if cash.LessThan(total) {
			require.ErrorIs(t, ValidatePayment("cash", total, cash), ErrInsufficientCash)
		}
	}

	assertDecimal(t, "0", ChangeGiven("card", d("5"), d("20")))
}

func TestLine_Validate(t *testing.T) {
	assert.NoError(t, Line{Name: "Espresso", Price: d("2.50"), Qty: 1}.Validate())
	assert.ErrorIs(t, Line{Name: "", Price: d("2.50"), Qty: 1}.Validate(), ErrInvalidLine)
	assert.ErrorIs(t, Line{Name: "Espresso", Price: d("2.50"), Qty: 0}.Validate(), ErrInvalidLine)
	assert.ErrorIs(t, Line{Name: "Espresso", Price: d("-1"), Qty: 1}.Validate(), ErrInvalidLine)
}
