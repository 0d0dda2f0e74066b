package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cafe-pos/internal/database/models"
	"cafe-pos/internal/gateway/middleware"
	userh "cafe-pos/internal/services/user/handler"
)

func userRouter(svc *MockUserService, userID int64) *gin.Engine {
	h := NewUserHTTPHandler(svc, false)
	r := gin.New()
	r.POST("/api/login", h.Login)
	r.POST("/api/logout", h.Logout)
	r.GET("/api/user", func(c *gin.Context) {
		if userID != 0 {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}, h.CurrentUser)
	return r
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	t.Run("Success - 200 OK", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Authenticate", mock.Anything, "kh@ch", "0000").Return(&userh.AuthResult{
			Token:     "signed-token",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      models.User{ID: 1, Email: "kh@ch", Role: models.RoleCashier},
		}, nil).Once()

		rec := do(userRouter(svc, 0), http.MethodPost, "/api/login", `{"email": "kh@ch", "password": "0000"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token":"signed-token"`)
		assert.NotContains(t, rec.Body.String(), "password")

		cookie := sessionCookie(rec)
		if assert.NotNil(t, cookie) {
			assert.Equal(t, "signed-token", cookie.Value)
			assert.True(t, cookie.HttpOnly)
		}
		svc.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Credentials - 401 Unauthorized", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Authenticate", mock.Anything, "kh@ch", "9999").Return(nil, userh.ErrInvalidCredentials).Once()

		rec := do(userRouter(svc, 0), http.MethodPost, "/api/login", `{"email": "kh@ch", "password": "9999"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid email or password")
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("Failure - Bad Request Body - 400 Bad Request", func(t *testing.T) {
		svc := new(MockUserService)

		rec := do(userRouter(svc, 0), http.MethodPost, "/api/login", `{"email": "kh@ch"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Authenticate")
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	rec := do(userRouter(new(MockUserService), 0), http.MethodPost, "/api/logout", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	if assert.NotNil(t, cookie) {
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.MaxAge < 0)
	}
}

func TestCurrentUser(t *testing.T) {
	t.Run("Session user", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetUser", mock.Anything, int64(2)).Return(&models.User{ID: 2, Email: "manager@example", Role: models.RoleManager}, nil).Once()

		rec := do(userRouter(svc, 2), http.MethodGet, "/api/user", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"manager"`)
	})

	t.Run("No session", func(t *testing.T) {
		svc := new(MockUserService)

		rec := do(userRouter(svc, 0), http.MethodGet, "/api/user", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "GetUser")
	})

	t.Run("Deleted user", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("GetUser", mock.Anything, int64(9)).Return(nil, userh.ErrUserNotFound).Once()

		rec := do(userRouter(svc, 9), http.MethodGet, "/api/user", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
