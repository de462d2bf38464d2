// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/config"
)

const signingKeyLen = 32

// Claims are the token claims. The JWT ID doubles as the revocation key.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager signs and parses tokens with an HKDF-derived key.
type TokenManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager derives the signing key from cfg.JWTSecret using
// cfg.HKDFContext as the HKDF info parameter.
func NewTokenManager(cfg *config.SecurityConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	key, err := deriveKey([]byte(cfg.JWTSecret), []byte(cfg.HKDFContext), signingKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return &TokenManager{
		key:    key,
		issuer: cfg.JWTIssuer,
		ttl:    cfg.TokenTTL,
	}, nil
}

func deriveKey(secret, info []byte, keyLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// TTL is the lifetime used for tokens issued on behalf of Authenticate.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for email valid for ttl. A non-positive ttl yields a
// token that is already expired.
func (m *TokenManager) Issue(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// disqualifying are the jwt failures that make a token invalid whether or not
// it has also expired. jwt/v5 joins every claim failure into one error.
var disqualifying = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenInvalidSubject,
	jwt.ErrTokenInvalidId,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenUsedBeforeIssued,
}

func onlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}
	for _, d := range disqualifying {
		if errors.Is(err, d) {
			return false
		}
	}
	return true
}

// Parse verifies token and returns its claims. A token whose only defect is
// expiry wraps access.ErrTokenExpired; every other failure, including an
// expired token that also fails another check, wraps access.ErrInvalidToken.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return m.key, nil
	}, opts...)
	switch {
	case onlyExpired(err):
		return nil, fmt.Errorf("%w: %w", access.ErrTokenExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", access.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", access.ErrInvalidToken)
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing email or jti claim", access.ErrInvalidToken)
	}
	return claims, nil
}
