package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLogger_KeepsIncomingID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = getRequestID(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestRequestLogger_GeneratesID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetRequestID_PlainContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")
	assert.Equal(t, "abc", getRequestID(ctx))
	assert.Equal(t, "unknown", getRequestID(context.Background()))
}

func TestRequestLogger_IDReachesServiceContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/orders", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		Info(ctx, "Order recorded")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("Order recorded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}
