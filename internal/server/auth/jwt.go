package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/judgeserver/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTTL is the lifetime of tokens that authorize API calls.
	AccessTokenTTL = 20 * time.Minute
	// RefreshTokenTTL is the lifetime of tokens that can only mint new
	// access tokens.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload of every token: {"exp", "sub", "refresh"}.
// Subject holds the username. Refresh distinguishes the two token classes.
type Claims struct {
	jwt.RegisteredClaims
	Refresh bool `json:"refresh"`
}

// TokenIssuer signs and verifies HS256 tokens with a fixed secret key.
// It is safe for concurrent use.
type TokenIssuer struct {
	key []byte
	now func() time.Time
}

// NewTokenIssuer returns an issuer bound to secretKey. The key is copied, so
// later changes to the caller's slice do not affect issued tokens.
func NewTokenIssuer(secretKey []byte) *TokenIssuer {
	key := make([]byte, len(secretKey))
	copy(key, secretKey)
	return &TokenIssuer{key: key, now: time.Now}
}

// IssueAccessToken returns a short-lived token for subject.
func (i *TokenIssuer) IssueAccessToken(subject string) (string, error) {
	return i.Encode(subject, AccessTokenTTL, false)
}

// IssueRefreshToken returns a long-lived refresh-class token for subject.
func (i *TokenIssuer) IssueRefreshToken(subject string) (string, error) {
	return i.Encode(subject, RefreshTokenTTL, true)
}

// Encode signs {exp: now+ttl, sub: subject, refresh: refresh}.
// Prefer IssueAccessToken and IssueRefreshToken outside of tests.
func (i *TokenIssuer) Encode(subject string, ttl time.Duration, refresh bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(i.now().Add(ttl)),
		},
		Refresh: refresh,
	})

	tokenString, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tokenString, nil
}

// Decode verifies the signature and expiry of tokenString and returns its
// claims. Failures are common.ErrTokenMalformed, common.ErrTokenInvalidSignature
// or common.ErrTokenExpired; all of them match common.ErrInvalidToken.
// A token is expired from the exact second stored in exp onwards.
func (i *TokenIssuer) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !token.Valid {
		return nil, common.ErrTokenInvalidSignature
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrTokenInvalidSignature
	}
}
