package handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cafe-pos/internal/logger"
	"cafe-pos/internal/services/pos/checkout"
	posh "cafe-pos/internal/services/pos/handler"
	"cafe-pos/internal/services/pos/report"
	userh "cafe-pos/internal/services/user/handler"
)

const (
	CodeEmptyCart        = "EMPTY_CART"
	CodeInsufficientCash = "INSUFFICIENT_CASH"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeStorageFailure   = "STORAGE_FAILURE"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"

	requestTimeout = 10 * time.Second
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message, code string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   code,
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError maps service errors onto HTTP status codes. Storage failures
// are logged with their cause and reported with a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, errorResponse("Cart is empty", CodeEmptyCart))
	case errors.Is(err, checkout.ErrInsufficientCash):
		c.JSON(http.StatusBadRequest, errorResponse("Cash received is less than the total", CodeInsufficientCash))
	case errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, checkout.ErrInvalidLine),
		errors.Is(err, checkout.ErrInvalidTaxMode),
		errors.Is(err, report.ErrInvalidDate),
		errors.Is(err, posh.ErrInvalidSetting),
		errors.Is(err, posh.ErrInvalidProduct),
		errors.Is(err, posh.ErrInvalidAdjustment):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error(), CodeInvalidRequest))
	case errors.Is(err, posh.ErrOrderNotFound),
		errors.Is(err, posh.ErrProductNotFound),
		errors.Is(err, posh.ErrCategoryNotFound),
		errors.Is(err, userh.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error(), CodeNotFound))
	case errors.Is(err, posh.ErrCategoryInUse),
		errors.Is(err, posh.ErrCategoryExists):
		c.JSON(http.StatusConflict, errorResponse(err.Error(), CodeConflict))
	case errors.Is(err, userh.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error(), CodeUnauthorized))
	default:
		logger.Error(c, "Request failed", err, zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, errorResponse("Storage failure, nothing was saved", CodeStorageFailure))
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error(), CodeInvalidRequest))
}

var registerOnce sync.Once

// RegisterValidators teaches gin's validator about decimal amounts so that
// numeric tags such as gte=0 apply to them.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
			_, err := checkout.ParsePaymentMethod(fl.Field().String())
			return err == nil
		})
	})
}
