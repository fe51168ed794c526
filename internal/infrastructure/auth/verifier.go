package auth

import (
	"errors"
	"time"

	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingSubject   = errors.New("missing sub in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrVerifierDisabled = errors.New("token verification is not configured")
)

// ActorClaims are the claims this service reads from tokens issued by the
// auth service. Only sub is required; it is the acting user's UUID.
type ActorClaims struct {
	jwt.RegisteredClaims
	Name       string   `json:"name,omitempty"`
	LocationID string   `json:"location_id,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// ActorID parses the subject as a UUID
func (c *ActorClaims) ActorID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// IssuedAtTime returns the iat claim, or the zero time
func (c *ActorClaims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// TokenVerifier validates HS256 bearer tokens. It never issues tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewTokenVerifier creates a verifier from the auth config. A verifier with
// no secret rejects every token with ErrVerifierDisabled.
func NewTokenVerifier(cfg config.AuthConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		leeway: 30 * time.Second,
	}
}

// Enabled reports whether a signing secret is configured
func (v *TokenVerifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify validates the token and returns its claims and the actor ID
func (v *TokenVerifier) Verify(tokenString string) (*ActorClaims, uuid.UUID, error) {
	if !v.Enabled() {
		return nil, uuid.Nil, ErrVerifierDisabled
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, uuid.Nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, uuid.Nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, uuid.Nil, ErrInvalidClaims
		}
		return nil, uuid.Nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, uuid.Nil, ErrInvalidClaims
	}

	if claims.Subject == "" {
		return nil, uuid.Nil, ErrMissingSubject
	}
	actorID, err := claims.ActorID()
	if err != nil || actorID == uuid.Nil {
		return nil, uuid.Nil, ErrInvalidClaims
	}
	return claims, actorID, nil
}
