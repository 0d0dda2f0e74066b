package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/services/pos/checkout"
	posh "cafe-pos/internal/services/pos/handler"
	"cafe-pos/internal/services/pos/report"
	userh "cafe-pos/internal/services/user/handler"
)

// --- Mock Services ---
type MockPOSService struct {
	mock.Mock
}

func (m *MockPOSService) SubmitOrder(ctx context.Context, in posh.SubmitOrderInput) (*models.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockPOSService) QuoteOrder(ctx context.Context, lines []checkout.Line, discount decimal.Decimal) (*posh.QuoteResult, error) {
	args := m.Called(ctx, lines, discount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posh.QuoteResult), args.Error(1)
}

func (m *MockPOSService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockPOSService) ListOrders(ctx context.Context, from, to string) ([]models.Order, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockPOSService) Summary(ctx context.Context, from, to string) (*report.Summary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Summary), args.Error(1)
}

func (m *MockPOSService) ExportCSV(ctx context.Context, from, to string) ([]byte, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPOSService) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockPOSService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockPOSService) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockPOSService) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPOSService) ListProducts(ctx context.Context, q string, categoryID *int64) ([]models.ProductView, error) {
	args := m.Called(ctx, q, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductView), args.Error(1)
}

func (m *MockPOSService) CreateProduct(ctx context.Context, in posh.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockPOSService) UpdateProduct(ctx context.Context, id int64, in posh.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockPOSService) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPOSService) AdjustStock(ctx context.Context, id, delta int64) (*models.Product, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockPOSService) ListLowStock(ctx context.Context, threshold int64) ([]models.Product, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockPOSService) GetSettings(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockPOSService) UpdateSettings(ctx context.Context, updates map[string]string) error {
	return m.Called(ctx, updates).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*userh.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userh.AuthResult), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
