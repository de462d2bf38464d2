// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package models

import "time"

// Movie is a catalog entry. Enabled movies are publicly released; disabled
// ones are restricted to privileged roles.
type Movie struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Enabled bool   `json:"enabled"`

	// Clips are ordered by Sequence.
	Clips []Clip `json:"clips"`
}

// Clip references one segment of a movie or ad. Its payload lives in clip
// storage and is fetched as ClipData.
type Clip struct {
	ID       int64         `json:"id"`
	Sequence int           `json:"sequence"`
	Duration time.Duration `json:"duration"`
}

// ClipData is the retrievable payload descriptor for a clip.
type ClipData struct {
	ClipID      int64  `json:"clip_id"`
	URI         string `json:"uri" validate:"required"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Ad is served before or between movie clips.
type Ad struct {
	ID   int64 `json:"id"`
	Clip Clip  `json:"clip"`
}
