package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/feedback-board/internal/config"
	"github.com/spec-kit/feedback-board/internal/domain"
)

func newAuthFixture(users *fakeUserRepo) *AuthService {
	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4, // minimum cost keeps the test fast
	}
	return NewAuthService(cfg, users, nil)
}

func TestRegisterIssuesToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthFixture(users)

	user, token, expiresAt, err := svc.Register(context.Background(), "Sam", " Sam@Example.COM ", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "sam@example.com", user.Email)
	assert.Equal(t, domain.RoleMember, user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthFixture(users)

	_, _, _, err := svc.Register(context.Background(), "Sam", "sam@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "Other", "SAM@example.com", "hunter22")
	assertHTTPStatus(t, err, 400)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newAuthFixture(newFakeUserRepo())

	_, _, _, err := svc.Register(context.Background(), "Sam", "sam@example.com", "12345")
	assertHTTPStatus(t, err, 400)
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthFixture(users)

	registered, _, _, err := svc.Register(context.Background(), "Sam", "sam@example.com", "hunter22")
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "Sam@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthFixture(users)

	_, _, _, err := svc.Register(context.Background(), "Sam", "sam@example.com", "hunter22")
	require.NoError(t, err)

	// Unknown email and wrong password produce the same answer.
	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assertHTTPStatus(t, err, 401)

	_, _, _, err = svc.Login(context.Background(), "sam@example.com", "wrong-pass")
	assertHTTPStatus(t, err, 401)
}
