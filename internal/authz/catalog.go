// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package authz

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/models"
)

// Catalog serves role catalog entries for the roles the policy declares.
type Catalog struct {
	enforcer *Enforcer
}

// NewCatalog returns a Catalog over e.
func NewCatalog(e *Enforcer) *Catalog {
	return &Catalog{enforcer: e}
}

// ByType implements access.RoleCatalog.
func (c *Catalog) ByType(ctx context.Context, rt models.RoleType) (*models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !rt.Valid() {
		return nil, fmt.Errorf("%w: %q", access.ErrRoleNotFound, rt)
	}

	declared, err := c.enforcer.Declares(rt)
	if err != nil {
		return nil, err
	}
	if !declared {
		return nil, fmt.Errorf("%w: %s is not declared by the policy", access.ErrRoleNotFound, rt)
	}
	return &models.Role{ID: rt.ID(), Type: rt}, nil
}
