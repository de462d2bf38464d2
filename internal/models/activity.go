// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package models

// User is the minimal identity carried by activity reports.
type User struct {
	Email string `json:"email"`
}

// Activity is a playback-progress report.
type Activity struct {
	// MovieID is the decimal id of the movie being played.
	MovieID string `json:"movie_id" validate:"required"`

	// Position is the playback position within the movie.
	Position int `json:"position"`

	// Timestamp is the report time in Unix seconds.
	Timestamp int64 `json:"timestamp"`

	User *User `json:"user" validate:"required"`
}
