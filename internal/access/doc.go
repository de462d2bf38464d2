// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package access decides whether a token holder may retrieve movie content and
validates playback activity before it is forwarded to persistence.

# Operations

Controller serves content lookups:
  - GetMovie: the clip list of a movie, subject to the movie-access rule
  - GetClipData: a clip payload descriptor, for any valid token
  - GetAd: one ad clip drawn uniformly at random from the ad pool

Recorder serves SendActivity, which validates a playback report, re-applies
the movie-access rule for the reported user and checks that the sender is the
reported user before handing the report to the activity store exactly once.

# Movie-access rule

Evaluate is a pure function over (movie enabled, roles held):

	enabled                               -> allow
	ADMINISTRATOR or REVIEWER             -> allow
	AD_PROVIDER, MOVIE_PROVIDER or USER   -> deny
	no role                               -> deny

Roles are probed lazily in that order, each at most once per request, and
probing stops as soon as the outcome is fixed. A failed role lookup denies.

# Collaborators

Everything stateful sits behind the interfaces in ports.go and is injected
through Deps at construction. Adapters report failures with the sentinel
errors in errors.go so callers can match them with errors.Is.

Controller and Recorder are safe for concurrent use.
*/
package access
