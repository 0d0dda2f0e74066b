package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/gateway/middleware"
	userh "cafe-pos/internal/services/user/handler"
)

type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*userh.AuthResult, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type UserHTTPHandler struct {
	users         UserService
	secureCookies bool
}

func NewUserHTTPHandler(users UserService, secureCookies bool) *UserHTTPHandler {
	return &UserHTTPHandler{
		users:         users,
		secureCookies: secureCookies,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --- Authentication ---

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.Token, maxAge, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"user":       res.User,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	})
}

func (h *UserHTTPHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, successResponse("Logged out", nil))
}

// CurrentUser returns the account behind the session token.
func (h *UserHTTPHandler) CurrentUser(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, errorResponse("Not logged in", CodeUnauthorized))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
