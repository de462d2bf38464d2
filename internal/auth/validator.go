// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
)

// RoleDirectory answers role membership for a subject.
type RoleDirectory interface {
	HasRole(ctx context.Context, subject string, rt models.RoleType) (bool, error)
}

// Validator implements access.TokenValidator.
type Validator struct {
	tokens      *TokenManager
	revocations RevocationStore
	roles       RoleDirectory
}

var _ access.TokenValidator = (*Validator)(nil)

func NewValidator(tokens *TokenManager, revocations RevocationStore, roles RoleDirectory) *Validator {
	return &Validator{tokens: tokens, revocations: revocations, roles: roles}
}

// Validate reports whether token is active. Malformed tokens return an error
// wrapping access.ErrInvalidToken; expired and revoked tokens return false.
func (v *Validator) Validate(ctx context.Context, token string) (bool, error) {
	claims, err := v.tokens.Parse(token)
	switch {
	case errors.Is(err, access.ErrTokenExpired):
		metrics.RecordTokenValidation("expired")
		return false, nil
	case err != nil:
		metrics.RecordTokenValidation("invalid")
		return false, err
	}

	revoked, err := v.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		metrics.RecordTokenValidation("error")
		return false, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		metrics.RecordTokenValidation("revoked")
		logging.Ctx(ctx).Debug().Str("jti", claims.ID).Msg("Revoked token presented")
		return false, nil
	}

	metrics.RecordTokenValidation("valid")
	return true, nil
}

func (v *Validator) UserOf(_ context.Context, token string) (*models.User, error) {
	claims, err := v.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return &models.User{Email: claims.Email}, nil
}

// IsInRole resolves the token holder and asks the role directory.
func (v *Validator) IsInRole(ctx context.Context, token string, role *models.Role) (bool, error) {
	if role == nil {
		return false, fmt.Errorf("%w: nil role", access.ErrRoleNotFound)
	}
	claims, err := v.tokens.Parse(token)
	if err != nil {
		return false, err
	}
	return v.roles.HasRole(ctx, claims.Email, role.Type)
}

// Authenticate issues a token for user with the configured lifetime.
func (v *Validator) Authenticate(_ context.Context, user *models.User) (string, error) {
	if user == nil || user.Email == "" {
		return "", fmt.Errorf("%w: user email is required", access.ErrInvalidArgument)
	}
	return v.tokens.Issue(user.Email, v.tokens.TTL())
}

// Revoke invalidates token until it expires. Revoking an expired token is a
// no-op.
func (v *Validator) Revoke(ctx context.Context, token string) error {
	claims, err := v.tokens.Parse(token)
	switch {
	case errors.Is(err, access.ErrTokenExpired):
		return nil
	case err != nil:
		return err
	}
	if err := v.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	logging.Ctx(ctx).Info().
		Str("jti", claims.ID).
		Str("email", claims.Email).
		Msg("Token revoked")
	return nil
}
