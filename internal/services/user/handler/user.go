package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/logger"
	sysutils "cafe-pos/internal/utils"
)

const (
	USER_CACHE_PREFIX = "user:"
	CACHE_TTL_SHORT   = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// --- Handler ---
type UserHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	tokenTTL time.Duration
	now      func() time.Time
}

func NewUserHandler(db *gorm.DB, redisClient *redis.Client, tokenTTL time.Duration) *UserHandler {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &UserHandler{
		db:       db,
		redis:    redisClient,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (s *UserHandler) InvalidateUserCaches(ctx context.Context, userIDs ...int64) {
	if s.redis == nil {
		return
	}
	for _, id := range userIDs {
		_ = s.redis.Del(ctx, fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id))
	}
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Authenticate checks the bcrypt hash and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserHandler) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.Warn(ctx, "Failed login attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, exp, err := sysutils.GenerateToken(user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		logger.Warn(ctx, "Failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now
	s.InvalidateUserCaches(ctx, user.ID)

	logger.Info(ctx, "User logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// --- User Management ---
func (s *UserHandler) GetUser(ctx context.Context, id int64) (*models.User, error) {
	cacheKey := fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached models.User
			if json.Unmarshal([]byte(val), &cached) == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Warn(ctx, "Redis error on GET, falling back to DB", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(user); err == nil {
			s.redis.Set(ctx, cacheKey, data, CACHE_TTL_SHORT)
		}
	}
	return &user, nil
}
