// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
)

// RoleSet is a set of role types, one bit per catalog id.
type RoleSet uint8

// NewRoleSet returns a set holding roles. Values outside the closed set are
// ignored.
func NewRoleSet(roles ...models.RoleType) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

// With returns s plus r.
func (s RoleSet) With(r models.RoleType) RoleSet {
	id := r.ID()
	if id == 0 {
		return s
	}
	return s | 1<<(id-1)
}

// Has reports whether r is in s.
func (s RoleSet) Has(r models.RoleType) bool {
	id := r.ID()
	return id != 0 && s&(1<<(id-1)) != 0
}

func (s RoleSet) String() string {
	var names []string
	for _, r := range models.AllRoleTypes {
		if s.Has(r) {
			names = append(names, string(r))
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Reason explains a Decision.
type Reason string

const (
	ReasonEnabled        Reason = "enabled"
	ReasonPrivilegedRole Reason = "privileged_role"
	ReasonRestrictedRole Reason = "restricted_role"
	ReasonNoRole         Reason = "no_role"
	ReasonLookupFailed   Reason = "lookup_failed"
)

// Decision is the outcome of the movie-access rule.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var (
	privilegedRoles = []models.RoleType{models.RoleAdministrator, models.RoleReviewer}
	restrictedRoles = []models.RoleType{models.RoleAdProvider, models.RoleMovieProvider, models.RoleUser}

	// probeOrder is the order roles are queried in for a disabled movie.
	probeOrder = append(append([]models.RoleType{}, privilegedRoles...), restrictedRoles...)
)

// Evaluate applies the movie-access rule. It performs no I/O.
func Evaluate(enabled bool, held RoleSet) Decision {
	if enabled {
		return Decision{Allowed: true, Reason: ReasonEnabled}
	}
	for _, r := range privilegedRoles {
		if held.Has(r) {
			return Decision{Allowed: true, Reason: ReasonPrivilegedRole}
		}
	}
	for _, r := range restrictedRoles {
		if held.Has(r) {
			return Decision{Allowed: false, Reason: ReasonRestrictedRole}
		}
	}
	return Decision{Allowed: false, Reason: ReasonNoRole}
}

// roleProbe answers role membership for one token within one request.
// Answers are memoized so each role reaches the collaborators at most once.
type roleProbe struct {
	token  string
	tokens TokenValidator
	roles  RoleCatalog

	asked RoleSet
	held  RoleSet
}

func newRoleProbe(token string, tokens TokenValidator, roles RoleCatalog) *roleProbe {
	return &roleProbe{token: token, tokens: tokens, roles: roles}
}

func (p *roleProbe) has(ctx context.Context, rt models.RoleType) (bool, error) {
	if p.asked.Has(rt) {
		return p.held.Has(rt), nil
	}

	role, err := p.roles.ByType(ctx, rt)
	if err != nil {
		metrics.RecordRoleLookup(string(rt), false, err)
		return false, fmt.Errorf("resolve role %s: %w", rt, err)
	}

	in, err := p.tokens.IsInRole(ctx, p.token, role)
	metrics.RecordRoleLookup(string(rt), in, err)
	if err != nil {
		return false, fmt.Errorf("check role %s: %w", rt, err)
	}

	p.asked = p.asked.With(rt)
	if in {
		p.held = p.held.With(rt)
	}
	return in, nil
}

// decide applies the movie-access rule for the probe's token. Roles are
// queried in probeOrder until the outcome is fixed; any lookup failure
// denies.
func (p *roleProbe) decide(ctx context.Context, movie *models.Movie) Decision {
	d := p.evaluate(ctx, movie)
	metrics.RecordRuleDecision(d.Allowed, string(d.Reason))
	return d
}

func (p *roleProbe) evaluate(ctx context.Context, movie *models.Movie) Decision {
	if movie.Enabled {
		return Evaluate(true, 0)
	}

	for _, rt := range probeOrder {
		in, err := p.has(ctx, rt)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Int64("movie_id", movie.ID).
				Str("role", string(rt)).
				Msg("role lookup failed, denying access")
			return Decision{Allowed: false, Reason: ReasonLookupFailed}
		}
		if !in {
			continue
		}
		if d := Evaluate(false, p.held); d.Reason != ReasonNoRole {
			return d
		}
	}
	return Evaluate(false, p.held)
}
