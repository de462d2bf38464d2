// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"context"

	"github.com/tomtom215/reelgate/internal/models"
)

// TokenValidator resolves opaque tokens.
type TokenValidator interface {
	// Validate returns ErrInvalidToken for a malformed token and false (with
	// a nil error) for a well-formed token that is no longer active.
	Validate(ctx context.Context, token string) (bool, error)

	// UserOf returns the identity that owns token.
	UserOf(ctx context.Context, token string) (*models.User, error)

	// IsInRole reports whether the token holder has role. Lookup failures
	// are ErrInvalidToken or ErrRoleNotFound.
	IsInRole(ctx context.Context, token string, role *models.Role) (bool, error)

	// Authenticate derives a token for user.
	Authenticate(ctx context.Context, user *models.User) (string, error)
}

// RoleCatalog returns catalog entries for role types.
type RoleCatalog interface {
	// ByType returns ErrRoleNotFound for a role the catalog does not declare.
	ByType(ctx context.Context, roleType models.RoleType) (*models.Role, error)
}

// MovieStore reads movies.
type MovieStore interface {
	// ByID returns ErrMovieNotFound when no movie has id.
	ByID(ctx context.Context, id int64) (*models.Movie, error)
}

// ClipStore reads clip payload descriptors.
type ClipStore interface {
	// ByClipID returns ErrClipNotFound when clip storage has no such clip.
	ByClipID(ctx context.Context, id int64) (*models.ClipData, error)
}

// AdStore lists the ad pool. The result may be nil or empty.
type AdStore interface {
	AllAds(ctx context.Context) ([]models.Ad, error)
}

// ActivityStore appends activity reports. Implementations should not retry
// internally; the core calls Add once per accepted report.
type ActivityStore interface {
	Add(ctx context.Context, activity *models.Activity) error
}
