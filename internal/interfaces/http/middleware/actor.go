package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/returns/internal/infrastructure/auth"
	"github.com/erp/returns/internal/infrastructure/logger"
	"github.com/erp/returns/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor context keys and headers
const (
	ActorIDKey     = "actor_id"
	ActorClaimsKey = "actor_claims"
	ActorHeader    = "X-Actor-ID"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// ActorConfig holds configuration for the actor middleware
type ActorConfig struct {
	Verifier *auth.TokenVerifier
	// Revocations is optional; when nil revoked tokens are not detected
	Revocations auth.RevocationList
	// AllowHeader accepts X-Actor-ID when no bearer token is sent
	AllowHeader bool
	Logger      *zap.Logger
}

// Actor resolves who is acting on the request. A bearer token wins over the
// X-Actor-ID header. A request with neither passes through without an actor;
// RequireActor decides whether that is acceptable. A bearer token that fails
// verification is always rejected.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if strings.HasPrefix(header, BearerPrefix) {
			token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
			claims, actorID, err := cfg.Verifier.Verify(token)
			if err == nil && cfg.Revocations != nil {
				err = checkRevocation(c, cfg.Revocations, claims, log)
			}
			if err != nil {
				log.Warn("Actor token rejected",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
				)
				abortUnauthorized(c, err)
				return
			}
			c.Set(ActorClaimsKey, claims)
			setActor(c, actorID)
			c.Next()
			return
		}

		if cfg.AllowHeader {
			if raw := c.GetHeader(ActorHeader); raw != "" {
				actorID, err := uuid.Parse(raw)
				if err != nil || actorID == uuid.Nil {
					c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
						dto.ErrCodeUnauthorized, "X-Actor-ID must be a UUID", GetRequestID(c)))
					return
				}
				setActor(c, actorID)
			}
		}
		c.Next()
	}
}

// checkRevocation fails open when the revocation store is unreachable
func checkRevocation(c *gin.Context, list auth.RevocationList, claims *auth.ActorClaims, log *zap.Logger) error {
	ctx := c.Request.Context()
	if claims.ID != "" {
		revoked, err := list.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check token revocation", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			return auth.ErrTokenRevoked
		}
	}
	invalidated, err := list.IsActorInvalidated(ctx, claims.Subject, claims.IssuedAtTime())
	if err != nil {
		log.Error("Failed to check actor invalidation", zap.String("actor_id", claims.Subject), zap.Error(err))
		return nil
	}
	if invalidated {
		return auth.ErrTokenRevoked
	}
	return nil
}

func setActor(c *gin.Context, actorID uuid.UUID) {
	c.Set(ActorIDKey, actorID)
	c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), actorID))
}

func abortUnauthorized(c *gin.Context, err error) {
	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		message = "Token has been revoked"
	case errors.Is(err, auth.ErrVerifierDisabled):
		code, message = dto.ErrCodeUnauthorized, "Bearer tokens are not accepted by this service"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// RequireActor rejects requests that reached it without an actor
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorID(c) == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// GetActorID returns the actor resolved by Actor, or uuid.Nil
func GetActorID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ActorIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetActorClaims returns the verified token claims, or nil for header actors
func GetActorClaims(c *gin.Context) *auth.ActorClaims {
	if v, ok := c.Get(ActorClaimsKey); ok {
		if claims, ok := v.(*auth.ActorClaims); ok {
			return claims
		}
	}
	return nil
}
