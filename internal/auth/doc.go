// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package auth validates bearer tokens for the access core.

Tokens are HS256 JWTs. The signing key is derived from the configured secret
with HKDF-SHA256, so the raw secret never signs anything and changing the
HKDF context rotates every issued token at once.

Components:

  - TokenManager issues and parses tokens
  - RevocationStore records revoked token IDs until they expire, in memory or
    in BadgerDB
  - Validator implements access.TokenValidator on top of both and a role
    directory (internal/authz)

Expired and revoked tokens are reported as inactive rather than as errors;
only malformed tokens produce access.ErrInvalidToken.
*/
package auth
