// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

// Package logging provides the zerolog-based logger shared by every Reelgate
// package.
//
// A package-global logger is configured once at startup with Init and read
// through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("ops server listening")
//
// Request-scoped code should log through Ctx so the correlation id assigned
// at the edge travels with every line:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Debug().Int64("movie_id", id).Msg("movie resolved")
//
// Libraries that speak log/slog (the suture supervisor) are bridged with
// NewSlogHandler.
//
// Tokens and other credentials must never be written to a log line.
package logging
