package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var errTokenInvalid = errors.New("token invalid")

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess returns a short-lived access token for user.
func (t *TokenIssuer) IssueAccess(user *domain.User) (string, error) {
	token, _, err := t.sign(user, ports.TokenAccess, t.accessTTL)
	return token, err
}

// IssueRefresh returns a refresh token for user and its expiry.
func (t *TokenIssuer) IssueRefresh(user *domain.User) (string, time.Time, error) {
	return t.sign(user, ports.TokenRefresh, t.refreshTTL)
}

func (t *TokenIssuer) sign(user *domain.User, typ string, ttl time.Duration) (string, time.Time, error) {
	now := t.now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"typ":  typ,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

// Verify parses token, checks its signature, expiry and type.
func (t *TokenIssuer) Verify(token, tokenType string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		if tkn.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return nil, errTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	typ, _ := claims["typ"].(string)
	if sub == "" || typ != tokenType {
		return nil, errTokenInvalid
	}

	out := &ports.TokenClaims{UserID: sub, Type: typ}
	out.Role, _ = claims["role"].(string)
	out.ID, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
