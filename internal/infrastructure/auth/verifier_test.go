package auth

import (
	"testing"
	"time"

	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars!"

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret, Issuer: "erp-auth"})
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) *ActorClaims {
	now := time.Now()
	return &ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "erp-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			ID:        "jti-1",
		},
		Name:  "Clerk One",
		Roles: []string{"returns:approve"},
	}
}

func TestTokenVerifier_Verify(t *testing.T) {
	v := newTestVerifier()
	actor := uuid.New()

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(actor.String()))
	claims, actorID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor, actorID)
	assert.Equal(t, "Clerk One", claims.Name)
	assert.Equal(t, "jti-1", claims.ID)
	assert.False(t, claims.IssuedAtTime().IsZero())
}

func TestTokenVerifier_Failures(t *testing.T) {
	v := newTestVerifier()
	actor := uuid.NewString()

	expired := validClaims(actor)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	future := validClaims(actor)
	future.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	wrongIssuer := validClaims(actor)
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("another-secret-of-sufficient-len"), validClaims(actor)), ErrInvalidToken},
		{"wrong algorithm", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(actor)), ErrInvalidToken},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), ErrExpiredToken},
		{"not yet valid", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), future), ErrTokenNotYetValid},
		{"wrong issuer", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), ErrInvalidClaims},
		{"missing sub", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")), ErrMissingSubject},
		{"sub not a uuid", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("clerk-1")), ErrInvalidClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenVerifier_Disabled(t *testing.T) {
	v := NewTokenVerifier(config.AuthConfig{})
	assert.False(t, v.Enabled())

	_, _, err := v.Verify("anything")
	assert.ErrorIs(t, err, ErrVerifierDisabled)
}
