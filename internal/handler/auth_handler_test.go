package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"planora/internal/handler"
	"planora/internal/model"
	"planora/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.User, error) {
	args := m.Called(ctx, query, limit)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func setupAuthTest() (*gin.Engine, *MockUserRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	mockRepo := new(MockUserRepository)
	sessions := session.NewManager("test-secret", 7)
	authHandler := handler.NewAuthHandler(mockRepo, sessions, false)

	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	return r, mockRepo
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	router, mockRepo := setupAuthTest()

	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	reqBody := handler.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser",
		Name:     "Test User",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	cookie := sessionCookie(resp)
	assert.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	mockRepo.AssertExpectations(t)
}

func TestRegister_EmailAlreadyExists(t *testing.T) {
	router, mockRepo := setupAuthTest()

	existing := &model.User{ID: uuid.New(), Email: "existing@example.com"}
	mockRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(existing, nil)

	reqBody := handler.RegisterRequest{
		Email:    "existing@example.com",
		Username: "someone",
		Name:     "Someone",
		Password: "password123",
	}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestRegister_InvalidInput(t *testing.T) {
	router, _ := setupAuthTest()

	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(`{"email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	router, mockRepo := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		Username:       "testuser",
		Name:           "Test User",
		HashedPassword: string(hash),
		Role:           model.GlobalRoleMember,
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	reqBody := handler.LoginRequest{Email: "test@example.com", Password: "password123"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotNil(t, sessionCookie(resp))

	// The cookie must parse back to the same identity.
	sessions := session.NewManager("test-secret", 7)
	sess, err := sessions.Parse(sessionCookie(resp).Value)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, user.Role, sess.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, mockRepo := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{ID: uuid.New(), Email: "test@example.com", HashedPassword: string(hash)}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	reqBody := handler.LoginRequest{Email: "test@example.com", Password: "wrong"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Nil(t, sessionCookie(resp))
}

func TestLogin_UnknownUser(t *testing.T) {
	router, mockRepo := setupAuthTest()

	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	reqBody := handler.LoginRequest{Email: "ghost@example.com", Password: "password123"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
