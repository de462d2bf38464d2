// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

// Package models defines the value types shared by the access core and its
// adapters: the closed role set, catalog entries (Movie, Clip, Ad), clip
// payloads and playback activity reports.
//
// Models carry JSON tags for the adapters that serialize them (clip storage
// responses, activity events). They hold no behavior beyond small lookups.
package models
