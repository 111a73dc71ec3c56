package session_test

import (
	"strings"
	"testing"

	"planora/internal/model"
	"planora/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testUser() *model.User {
	return &model.User{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  "Test User",
		Role:  model.GlobalRoleMember,
	}
}

func TestManager_IssueAndParse(t *testing.T) {
	manager := session.NewManager("test-secret", 7)
	user := testUser()

	value, err := manager.Issue(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, value)

	sess, err := manager.Parse(value)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, user.Email, sess.Email)
	assert.Equal(t, user.Name, sess.Name)
	assert.Equal(t, user.Role, sess.Role)
	assert.NotEmpty(t, sess.Token)
}

func TestManager_Parse_WrongSecret(t *testing.T) {
	manager := session.NewManager("test-secret", 7)
	other := session.NewManager("other-secret", 7)

	value, err := manager.Issue(testUser())
	assert.NoError(t, err)

	sess, err := other.Parse(value)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
	assert.Nil(t, sess)
}

func TestManager_Parse_TamperedPayload(t *testing.T) {
	manager := session.NewManager("test-secret", 7)

	value, err := manager.Issue(testUser())
	assert.NoError(t, err)

	// Flip the payload segment; the signature no longer matches.
	parts := strings.Split(value, ".")
	parts[1] = "eyJyb2xlIjoiQURNSU4ifQ"
	tampered := strings.Join(parts, ".")

	sess, err := manager.Parse(tampered)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
	assert.Nil(t, sess)
}

func TestManager_Parse_Expired(t *testing.T) {
	// Negative max age puts the expiry in the past.
	manager := session.NewManager("test-secret", -1)

	value, err := manager.Issue(testUser())
	assert.NoError(t, err)

	sess, err := manager.Parse(value)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
	assert.Nil(t, sess)
}

func TestManager_Parse_Garbage(t *testing.T) {
	manager := session.NewManager("test-secret", 7)

	sess, err := manager.Parse("not-a-token")
	assert.Error(t, err)
	assert.Nil(t, sess)
}
