// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import "errors"

// Sentinel errors. Adapters wrap them with %w; callers match with errors.Is.
var (
	// ErrInvalidArgument means a required input was missing.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidToken means the token is malformed or its signature is bad.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired means the token is well formed but no longer active.
	ErrTokenExpired = errors.New("token expired")

	ErrMovieNotFound = errors.New("movie not found")
	ErrClipNotFound  = errors.New("clip not found")

	// ErrUserNotAllowed is an authorization denial.
	ErrUserNotAllowed = errors.New("user not allowed")

	// ErrActivityInvalid means an activity report is malformed or failed a
	// cross-check.
	ErrActivityInvalid = errors.New("activity invalid")

	// ErrNoAdsAvailable means no ad could be served. It also covers an ad
	// whose clip is missing from clip storage.
	ErrNoAdsAvailable = errors.New("no ads available")

	// ErrRoleNotFound is reported by role catalogs and directories.
	ErrRoleNotFound = errors.New("role not found")
)

// kinds is checked in order; the first match names the error.
var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidArgument, "invalid_argument"},
	{ErrTokenExpired, "token_expired"},
	{ErrInvalidToken, "invalid_token"},
	{ErrActivityInvalid, "activity_invalid"},
	{ErrMovieNotFound, "movie_not_found"},
	{ErrClipNotFound, "clip_not_found"},
	{ErrUserNotAllowed, "user_not_allowed"},
	{ErrNoAdsAvailable, "no_ads_available"},
	{ErrRoleNotFound, "role_not_found"},
}

// Kind returns a stable label for err, suitable for metrics. It returns
// "ok" for nil and "internal" for errors outside the sentinel set.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
