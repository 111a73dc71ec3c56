package session

import (
	"errors"
	"time"

	"planora/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie issued at login.
const CookieName = "session"

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrInvalidClaims  = errors.New("invalid session claims")
)

// Session is the identity carried by the cookie.
type Session struct {
	Token  string
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string
}

// Manager issues and validates session cookie values. The payload is an
// HS256-signed JWT, never plain JSON, so a client cannot forge identity
// or role by editing the cookie.
type Manager struct {
	secret []byte
	maxAge time.Duration
}

func NewManager(secret string, maxAgeDays int) *Manager {
	return &Manager{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

// MaxAgeSeconds is the cookie Max-Age attribute value.
func (m *Manager) MaxAgeSeconds() int {
	return int(m.maxAge.Seconds())
}

func (m *Manager) Issue(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"token":   uuid.NewString(),
		"user_id": user.ID.String(),
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     time.Now().Add(m.maxAge).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(value string) (*Session, error) {
	token, err := jwt.Parse(value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	sess := &Session{UserID: userID}
	sess.Token, _ = claims["token"].(string)
	sess.Email, _ = claims["email"].(string)
	sess.Name, _ = claims["name"].(string)
	sess.Role, _ = claims["role"].(string)
	return sess, nil
}
