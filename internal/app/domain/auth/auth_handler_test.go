package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lijoraj-p-r/NoPaper/internal/app/models"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *models.UserAuth, error) {
	args := m.Called(ctx, email, password)
	var user *models.UserAuth
	if args.Get(1) != nil {
		user = args.Get(1).(*models.UserAuth)
	}
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (string, *models.UserAuth, error) {
	args := m.Called(ctx, email, password)
	var user *models.UserAuth
	if args.Get(1) != nil {
		user = args.Get(1).(*models.UserAuth)
	}
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, userID int64) (*models.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAuth), args.Error(1)
}

func setupAuthHandlerTest() (*gin.Engine, *MockAuthService) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockAuthService)
	handlers := NewAuthHandlers(mockService, zap.NewNop())

	r := gin.New()
	r.POST("/login", handlers.LoginHandler)
	r.POST("/register", handlers.RegisterHandler)
	return r, mockService
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	t.Run("success returns role and token", func(t *testing.T) {
		router, mockService := setupAuthHandlerTest()
		user := &models.UserAuth{ID: 1, Email: "reader@example.com", Role: models.RoleUser}
		mockService.On("Login", mock.Anything, "reader@example.com", "letmein7").
			Return("tok-abc", user, nil).Once()

		w := postJSON(router, "/login", gin.H{"email": "reader@example.com", "password": "letmein7"})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Login successful", resp.Message)
		assert.Equal(t, models.RoleUser, resp.Role)
		assert.Equal(t, "tok-abc", resp.Token)
		mockService.AssertExpectations(t)
	})

	t.Run("bad credentials get 401 with the canonical message", func(t *testing.T) {
		router, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "reader@example.com", "wrong").
			Return("", nil, fmt.Errorf("incorrect email or password: %w", models.ErrUnauthenticated)).Once()

		w := postJSON(router, "/login", gin.H{"email": "reader@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Incorrect email or password")
	})

	t.Run("missing fields get 400", func(t *testing.T) {
		router, mockService := setupAuthHandlerTest()

		w := postJSON(router, "/login", gin.H{"email": "reader@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Login")
	})
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created returns 201 with token", func(t *testing.T) {
		router, mockService := setupAuthHandlerTest()
		user := &models.UserAuth{ID: 7, Email: "new@example.com", Role: models.RoleUser}
		mockService.On("Register", mock.Anything, "new@example.com", "secret-7").
			Return("tok-new", user, nil).Once()

		w := postJSON(router, "/register", gin.H{"email": "new@example.com", "password": "secret-7"})
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Registration successful", resp.Message)
		assert.Equal(t, "tok-new", resp.Token)
	})

	t.Run("duplicate email gets 409", func(t *testing.T) {
		router, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "taken@example.com", "secret-7").
			Return("", nil, fmt.Errorf("registration failed: %w", models.ErrConflict)).Once()

		w := postJSON(router, "/register", gin.H{"email": "taken@example.com", "password": "secret-7"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Email already registered")
	})

	t.Run("validation failure gets 400 with the reason", func(t *testing.T) {
		router, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "new@example.com", "short").
			Return("", nil, fmt.Errorf("password must be at least 7 characters long: %w", models.ErrValidation)).Once()

		w := postJSON(router, "/register", gin.H{"email": "new@example.com", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "at least 7 characters")
	})
}
