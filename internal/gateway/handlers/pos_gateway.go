package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/services/pos/checkout"
	posh "cafe-pos/internal/services/pos/handler"
	"cafe-pos/internal/services/pos/report"
)

// POSService is the checkout, reporting and catalog surface the HTTP layer
// needs. *posh.POSHandler satisfies it.
type POSService interface {
	SubmitOrder(ctx context.Context, in posh.SubmitOrderInput) (*models.Order, error)
	QuoteOrder(ctx context.Context, lines []checkout.Line, discount decimal.Decimal) (*posh.QuoteResult, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, from, to string) ([]models.Order, error)

	Summary(ctx context.Context, from, to string) (*report.Summary, error)
	ExportCSV(ctx context.Context, from, to string) ([]byte, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, q string, categoryID *int64) ([]models.ProductView, error)
	CreateProduct(ctx context.Context, in posh.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in posh.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id, delta int64) (*models.Product, error)
	ListLowStock(ctx context.Context, threshold int64) ([]models.Product, error)

	GetSettings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, updates map[string]string) error
}

type POSHTTPHandler struct {
	pos POSService
}

func NewPOSHTTPHandler(pos POSService) *POSHTTPHandler {
	RegisterValidators()
	return &POSHTTPHandler{
		pos: pos,
	}
}

// Request structs
type CartLineRequest struct {
	ProductID *int64          `json:"product_id"`
	Name      string          `json:"name" binding:"required"`
	Price     decimal.Decimal `json:"price" binding:"gte=0"`
	Qty       int64           `json:"qty" binding:"required,gt=0"`
	Modifiers string          `json:"modifiers"`
	Notes     string          `json:"notes"`
}

func (r CartLineRequest) line() checkout.Line {
	return checkout.Line{
		ProductID: r.ProductID,
		Name:      r.Name,
		Price:     r.Price,
		Qty:       r.Qty,
		Modifiers: r.Modifiers,
		Notes:     r.Notes,
	}
}

func toLines(reqs []CartLineRequest) []checkout.Line {
	lines := make([]checkout.Line, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, r.line())
	}
	return lines
}

// CreateOrderRequest mirrors the register's submit payload. change_given is
// accepted for compatibility but always recomputed.
type CreateOrderRequest struct {
	Items         []CartLineRequest `json:"items" binding:"dive"`
	Subtotal      decimal.Decimal   `json:"subtotal" binding:"gte=0"`
	Tax           decimal.Decimal   `json:"tax" binding:"gte=0"`
	Discount      decimal.Decimal   `json:"discount" binding:"gte=0"`
	Total         decimal.Decimal   `json:"total" binding:"gte=0"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,payment_method"`
	CashReceived  decimal.Decimal   `json:"cash_received" binding:"gte=0"`
	ChangeGiven   *decimal.Decimal  `json:"change_given,omitempty"`
}

type QuoteRequest struct {
	Items    []CartLineRequest `json:"items" binding:"dive"`
	Discount decimal.Decimal   `json:"discount" binding:"gte=0"`
}

type RangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type ProductRequest struct {
	Name       string          `json:"name" binding:"required,max=128"`
	CategoryID *int64          `json:"category_id"`
	Price      decimal.Decimal `json:"price" binding:"gte=0"`
	Stock      int64           `json:"stock"`
}

func (r ProductRequest) input() posh.ProductInput {
	return posh.ProductInput{
		Name:       r.Name,
		CategoryID: r.CategoryID,
		Price:      r.Price,
		Stock:      r.Stock,
	}
}

type StockAdjustmentRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

type LowStockQuery struct {
	Threshold *int64 `form:"threshold"`
}

type ListProductsQuery struct {
	Search   string `form:"q"`
	Category *int64 `form:"category"`
}

func paramID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid "+what+" ID", CodeInvalidRequest))
		return 0, false
	}
	return id, true
}

// --- Order Handlers ---

func (h *POSHTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.pos.SubmitOrder(ctx, posh.SubmitOrderInput{
		Items:         toLines(req.Items),
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Discount:      req.Discount,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		CashReceived:  req.CashReceived,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId": order.ID,
		"order":   order,
	})
}

func (h *POSHTTPHandler) QuoteOrder(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	quote, err := h.pos.QuoteOrder(ctx, toLines(req.Items), req.Discount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *POSHTTPHandler) ListOrders(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.pos.ListOrders(ctx, q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *POSHTTPHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "order")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.pos.GetOrder(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	items := order.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// --- Report Handlers ---

func (h *POSHTTPHandler) Summary(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := h.pos.Summary(ctx, q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}
	if summary.Top == nil {
		summary.Top = []report.TopItem{}
	}
	c.JSON(http.StatusOK, summary)
}

func (h *POSHTTPHandler) Export(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.pos.ExportCSV(ctx, q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// --- Category Handlers ---

func (h *POSHTTPHandler) ListCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	categories, err := h.pos.ListCategories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *POSHTTPHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.pos.CreateCategory(ctx, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *POSHTTPHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "category")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.pos.UpdateCategory(ctx, id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *POSHTTPHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "category")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.pos.DeleteCategory(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Category deleted", nil))
}

// --- Product Handlers ---

func (h *POSHTTPHandler) ListProducts(c *gin.Context) {
	var q ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.pos.ListProducts(ctx, q.Search, q.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *POSHTTPHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.pos.CreateProduct(ctx, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *POSHTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.pos.UpdateProduct(ctx, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *POSHTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.pos.DeleteProduct(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Product deleted", nil))
}

// --- Stock Handlers ---

func (h *POSHTTPHandler) AdjustStock(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}
	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.pos.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *POSHTTPHandler) ListLowStock(c *gin.Context) {
	var q LowStockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	threshold := int64(posh.DefaultLowStockThreshold)
	if q.Threshold != nil {
		threshold = *q.Threshold
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.pos.ListLowStock(ctx, threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// --- Settings Handlers ---

func (h *POSHTTPHandler) GetSettings(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	settings, err := h.pos.GetSettings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *POSHTTPHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.pos.UpdateSettings(ctx, req); err != nil {
		respondError(c, err)
		return
	}

	settings, err := h.pos.GetSettings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
