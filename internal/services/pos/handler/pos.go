package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"cafe-pos/internal/logger"
)

const (
	POS_PRODUCT_CACHE_KEY  = "pos:products"
	POS_SETTINGS_CACHE_KEY = "pos:settings"
	EventOrderCreated      = "order.created"
	CACHE_TTL_SHORT        = 5 * time.Minute
	CACHE_TTL_MEDIUM       = 30 * time.Minute

	sharedQueryTimeout = 10 * time.Second

	defaultOrderListLimit = 1000
	defaultTopItemsLimit  = 5
)

var (
	ErrStorage          = errors.New("storage failure")
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category has products")
	ErrCategoryExists   = errors.New("category exists")
	ErrInvalidSetting   = errors.New("invalid setting value")
	ErrInvalidProduct   = errors.New("invalid product")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// POSHandler owns the checkout engine and the reporting queries. redis may be
// nil, in which case caching and order events are skipped.
type POSHandler struct {
	db             *gorm.DB
	redis          *redis.Client
	loc            *time.Location
	now            func() time.Time
	orderListLimit int
	topItemsLimit  int
	sfg            singleflight.Group
}

type Option func(*POSHandler)

func WithLocation(loc *time.Location) Option {
	return func(s *POSHandler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *POSHandler) { s.now = now }
}

func WithLimits(orderList, topItems int) Option {
	return func(s *POSHandler) {
		if orderList > 0 {
			s.orderListLimit = orderList
		}
		if topItems > 0 {
			s.topItemsLimit = topItems
		}
	}
}

func NewPOSHandler(db *gorm.DB, redisClient *redis.Client, opts ...Option) *POSHandler {
	s := &POSHandler{
		db:             db,
		redis:          redisClient,
		loc:            time.Local,
		now:            time.Now,
		orderListLimit: defaultOrderListLimit,
		topItemsLimit:  defaultTopItemsLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *POSHandler) InvalidatePOSCaches(ctx context.Context, keys ...string) {
	if s.redis == nil {
		return
	}
	if len(keys) == 0 {
		keys = []string{POS_PRODUCT_CACHE_KEY, POS_SETTINGS_CACHE_KEY}
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "Failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *POSHandler) getCached(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "Redis error on GET, falling back to DB", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (s *POSHandler) setCached(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn(ctx, "Failed to set cache", zap.String("key", key), zap.Error(err))
	}
}

// -- Pub/Sub Related --
type OrderEvent struct {
	EventType     string    `json:"event_type"`
	OrderID       int64     `json:"order_id"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *POSHandler) publishOrderEvent(ctx context.Context, event OrderEvent) error {
	if s.redis == nil {
		return nil
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("pos:events:%s", event.EventType)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := s.redis.Publish(ctx, "pos:events:all", eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}
