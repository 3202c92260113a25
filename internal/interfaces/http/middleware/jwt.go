package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/menusync/backend/internal/infrastructure/auth"
	"github.com/menusync/backend/internal/infrastructure/logger"
	"github.com/menusync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey     = "jwt_claims"
	JWTMerchantIDKey = "jwt_merchant_id"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// MerchantParam is the route parameter JWTAuth checks the merchant claim against
const MerchantParam = "id"

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier TokenVerifier
	// RequireMerchantMatch rejects tokens whose merchant_id differs from the :id path parameter
	RequireMerchantMatch bool
	Logger               *zap.Logger
}

// JWTAuth creates JWT authentication middleware for merchant scoped admin routes
func JWTAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthWithConfig(JWTMiddlewareConfig{
		Verifier:             verifier,
		RequireMerchantMatch: true,
		Logger:               log,
	})
}

// JWTAuthWithConfig creates JWT authentication middleware with custom config
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid)
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			logger.Enrich(c.Request.Context(), cfg.Logger).Debug("token rejected", zap.Error(err))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortAuth(c, http.StatusUnauthorized, dto.ErrCodeTokenExpired)
				return
			}
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid)
			return
		}

		if cfg.RequireMerchantMatch {
			if param := c.Param(MerchantParam); !strings.EqualFold(param, claims.MerchantID) {
				logger.Enrich(c.Request.Context(), cfg.Logger).Warn("token merchant does not match route",
					zap.String("token_merchant_id", claims.MerchantID),
					zap.String("route_merchant_id", param),
				)
				abortAuth(c, http.StatusForbidden, dto.ErrCodeForbidden)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTMerchantIDKey, claims.MerchantID)
		c.Request = c.Request.WithContext(logger.WithMerchantID(c.Request.Context(), claims.MerchantID))
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(
		code,
		dto.LocalizeMessage(c.GetHeader("Accept-Language"), code, ""),
		GetRequestID(c),
	))
}

// GetJWTClaims returns the verified claims, if any
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// GetJWTMerchantID returns the merchant the verified token is scoped to
func GetJWTMerchantID(c *gin.Context) string {
	return c.GetString(JWTMerchantIDKey)
}
