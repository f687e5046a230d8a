// Package auth verifies access tokens issued by the identity service and turns
// their claims into the principal the application layer works with.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/schoolfee/backend/internal/domain/identity"
	"github.com/schoolfee/backend/internal/infrastructure/config"
)

// TokenTypeAccess is the only token type accepted by the fee API
const TokenTypeAccess = "access"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims are the access-token claims the fee API relies on
type Claims struct {
	jwt.RegisteredClaims
	TenantID      string `json:"tenant_id"`
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	PlatformAdmin bool   `json:"platform_admin,omitempty"`
	TokenType     string `json:"token_type"`
}

// Principal converts the claims into an identity.Principal
func (c *Claims) Principal() (identity.Principal, error) {
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: tenant_id", ErrInvalidClaims)
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: user_id", ErrInvalidClaims)
	}
	role, err := identity.ParseRole(c.Role)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: role", ErrInvalidClaims)
	}
	p, err := identity.NewPrincipal(tenantID, userID, role)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	p.PlatformAdmin = c.PlatformAdmin
	return p, nil
}

// JWTService verifies HMAC-signed access tokens
type JWTService struct {
	secret    []byte
	issuer    string
	clockSkew time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		clockSkew: cfg.ClockSkew,
	}
}

// ValidateAccessToken parses and verifies an access token
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.clockSkew),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// IssueInput describes a token minted for local development and tests
type IssueInput struct {
	TenantID      uuid.UUID
	UserID        uuid.UUID
	Role          identity.Role
	PlatformAdmin bool
	TTL           time.Duration
}

// Issue signs an access token with the configured secret. Production tokens
// come from the identity service; this is used by tooling and tests.
func (s *JWTService) Issue(in IssueInput, now time.Time) (string, error) {
	if in.TTL <= 0 {
		in.TTL = 15 * time.Minute
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   in.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(in.TTL)),
		},
		TenantID:      in.TenantID.String(),
		UserID:        in.UserID.String(),
		Role:          in.Role.String(),
		PlatformAdmin: in.PlatformAdmin,
		TokenType:     TokenTypeAccess,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
