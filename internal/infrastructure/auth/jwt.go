package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrMissingMerchantID = errors.New("missing merchant_id in claims")
	ErrMissingSecret     = errors.New("jwt secret is not configured")
)

// Claims are the claims of an admin API token. MerchantID scopes the token to one merchant.
type Claims struct {
	jwt.RegisteredClaims
	MerchantID string `json:"merchant_id"`
}

// TokenVerifier validates HS256 admin API tokens issued by the identity service
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for the configured secret and issuer
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses tokenString and returns its claims
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.MerchantID == "" {
		return nil, ErrMissingMerchantID
	}
	if _, err := uuid.Parse(claims.MerchantID); err != nil {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// Issue signs a token for merchantID valid for ttl. It backs the local token
// command and tests; production tokens come from the identity service.
func (v *TokenVerifier) Issue(merchantID uuid.UUID, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    v.issuer,
			Subject:   merchantID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		MerchantID: merchantID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
