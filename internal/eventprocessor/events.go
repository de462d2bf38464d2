// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package eventprocessor

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelgate/internal/models"
)

// ActivityEvent is one accepted playback-progress report.
type ActivityEvent struct {
	EventID    string    `json:"event_id"`
	MovieID    int64     `json:"movie_id"`
	Position   int       `json:"position"`
	Timestamp  int64     `json:"timestamp"`
	UserEmail  string    `json:"user_email"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewActivityEvent converts a validated activity into an event with a fresh
// EventID.
func NewActivityEvent(activity *models.Activity, recordedAt time.Time) (*ActivityEvent, error) {
	if activity == nil || activity.User == nil {
		return nil, errors.New("activity and its user are required")
	}
	movieID, err := strconv.ParseInt(activity.MovieID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("movie id %q: %w", activity.MovieID, err)
	}
	return &ActivityEvent{
		EventID:    uuid.NewString(),
		MovieID:    movieID,
		Position:   activity.Position,
		Timestamp:  activity.Timestamp,
		UserEmail:  activity.User.Email,
		RecordedAt: recordedAt.UTC(),
	}, nil
}

// Validate checks the fields every consumer relies on.
func (e *ActivityEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.MovieID <= 0 {
		return errors.New("movie_id must be positive")
	}
	if e.UserEmail == "" {
		return errors.New("user_email is required")
	}
	return nil
}
