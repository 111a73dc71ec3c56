package handler

import (
	"net/http"
	"strings"

	"planora/internal/model"
	"planora/internal/repository"
	"planora/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users        repository.UserRepositoryInterface
	sessions     *session.Manager
	cookieSecure bool
}

func NewAuthHandler(users repository.UserRepositoryInterface, sessions *session.Manager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		cookieSecure: cookieSecure,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func userResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req.Email = strings.ToLower(req.Email)

	existing, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &model.User{
		Email:          req.Email,
		Username:       req.Username,
		Name:           req.Name,
		HashedPassword: string(hash),
		Role:           model.GlobalRoleMember,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	if !h.setSessionCookie(c, user) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userResponse(user)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !h.setSessionCookie(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": sess.UserID.String(),
		"email":   sess.Email,
		"name":    sess.Name,
		"role":    sess.Role,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, user *model.User) bool {
	token, err := h.sessions.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, h.sessions.MaxAgeSeconds(), "/", "", h.cookieSecure, true)
	return true
}
