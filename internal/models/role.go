// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
role.go - Role Catalog Types

Roles form a closed set. Membership of a token holder in a role is always
queried from the role directory (internal/authz); it is never stored here.

Access classes:
  - ADMINISTRATOR, REVIEWER: may view disabled (unreleased) movies
  - AD_PROVIDER, MOVIE_PROVIDER, USER: enabled movies only

Catalog ids are stable and shared with the directory policy.
*/

package models

import (
	"fmt"
	"strings"
)

// RoleType names one access class.
type RoleType string

const (
	RoleAdministrator RoleType = "ADMINISTRATOR"
	RoleUser          RoleType = "USER"
	RoleMovieProvider RoleType = "MOVIE_PROVIDER"
	RoleAdProvider    RoleType = "AD_PROVIDER"
	RoleReviewer      RoleType = "REVIEWER"
)

// AllRoleTypes lists the closed set in catalog id order.
var AllRoleTypes = []RoleType{
	RoleAdministrator,
	RoleUser,
	RoleMovieProvider,
	RoleAdProvider,
	RoleReviewer,
}

// ID returns the stable catalog id, or 0 for a value outside the set.
func (r RoleType) ID() int64 {
	for i, rt := range AllRoleTypes {
		if rt == r {
			return int64(i + 1)
		}
	}
	return 0
}

// Valid reports whether r belongs to the closed set.
func (r RoleType) Valid() bool {
	return r.ID() != 0
}

func (r RoleType) String() string {
	return string(r)
}

// ParseRoleType parses a role name, case-insensitively.
func ParseRoleType(s string) (RoleType, error) {
	rt := RoleType(strings.ToUpper(strings.TrimSpace(s)))
	if !rt.Valid() {
		return "", fmt.Errorf("unknown role type %q", s)
	}
	return rt, nil
}

// Role is a catalog entry for a RoleType.
type Role struct {
	ID   int64    `json:"id"`
	Type RoleType `json:"type"`
}
