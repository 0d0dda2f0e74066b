package handler

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "name", "category_id", "price", "stock"}

func TestAdjustStock_Delivery(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE "products"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Espresso", 1, "2.50", 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock + $1 WHERE id = $2`)).
		WithArgs(int64(12), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	product, err := h.AdjustStock(context.Background(), 1, 12)
	require.NoError(t, err)

	assert.Equal(t, int64(15), product.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_RefusesNegative(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Espresso", 1, "2.50", 3))
	mock.ExpectRollback()

	_, err := h.AdjustStock(context.Background(), 1, -4)

	assert.ErrorIs(t, err, ErrInvalidAdjustment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows(productColumns))
	mock.ExpectRollback()

	_, err := h.AdjustStock(context.Background(), 99, 5)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	h, mock := newTestHandler(t)

	_, err := h.AdjustStock(context.Background(), 1, 0)

	assert.ErrorIs(t, err, ErrInvalidAdjustment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLowStock(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE stock <= $1 ORDER BY stock ASC, name ASC`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(4, "Croissant", 3, "2.00", -1).
			AddRow(2, "Latte", 1, "3.50", 4))

	products, err := h.ListLowStock(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, int64(-1), products[0].Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLowStock_RejectsNegativeThreshold(t *testing.T) {
	h, mock := newTestHandler(t)

	_, err := h.ListLowStock(context.Background(), -1)

	assert.ErrorIs(t, err, ErrInvalidAdjustment)
	assert.NoError(t, mock.ExpectationsWereMet())
}
