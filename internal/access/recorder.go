// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/models"
	"github.com/tomtom215/reelgate/internal/validation"
)

// Recorder validates playback activity and forwards it to the activity store.
type Recorder struct {
	tokens     TokenValidator
	roles      RoleCatalog
	movies     MovieStore
	activities ActivityStore
}

// NewRecorder builds a Recorder. Tokens, Roles, Movies and Activities are
// required.
func NewRecorder(deps Deps) (*Recorder, error) {
	if err := requireDeps(
		dep{"Tokens", deps.Tokens != nil},
		dep{"Roles", deps.Roles != nil},
		dep{"Movies", deps.Movies != nil},
		dep{"Activities", deps.Activities != nil},
	); err != nil {
		return nil, err
	}
	return &Recorder{
		tokens:     deps.Tokens,
		roles:      deps.Roles,
		movies:     deps.Movies,
		activities: deps.Activities,
	}, nil
}

// SendActivity checks activity and appends it to the activity store.
//
// The reported user must be allowed to view the reported movie, and must be
// the owner of token. Nothing is written unless every check passes; the
// store is called exactly once and its error is returned as is.
func (r *Recorder) SendActivity(ctx context.Context, token string, activity *models.Activity) (err error) {
	defer func() { observe(ctx, opSendActivity, err) }()

	if activity == nil {
		return fmt.Errorf("%w: activity is required", ErrInvalidArgument)
	}
	if err := checkToken(ctx, r.tokens, token); err != nil {
		return err
	}

	log := logging.Ctx(ctx).With().Str("operation", opSendActivity).Str("movie_id", activity.MovieID).Logger()
	log.Debug().Msg("token valid, validating activity")

	if err := r.validate(ctx, activity); err != nil {
		return err
	}

	sender, err := r.tokens.UserOf(ctx, token)
	if err != nil {
		return err
	}
	if sender == nil || sender.Email != activity.User.Email {
		return fmt.Errorf("%w: sender and activity subject differ", ErrActivityInvalid)
	}

	if err := r.activities.Add(ctx, activity); err != nil {
		return fmt.Errorf("store activity: %w", err)
	}
	log.Debug().Int("position", activity.Position).Int64("timestamp", activity.Timestamp).Msg("activity recorded")
	return nil
}

// validate checks the activity fields, resolves its movie and re-applies the
// movie-access rule for the reported user.
func (r *Recorder) validate(ctx context.Context, activity *models.Activity) error {
	if err := validation.ValidateStruct(activity); err != nil {
		return fmt.Errorf("%w: %s", ErrActivityInvalid, err.Error())
	}

	movieID, err := strconv.ParseInt(activity.MovieID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: movie id %q is not a number", ErrActivityInvalid, activity.MovieID)
	}

	movie, err := r.movies.ByID(ctx, movieID)
	if errors.Is(err, ErrMovieNotFound) {
		return fmt.Errorf("%w: movie %d does not exist", ErrActivityInvalid, movieID)
	}
	if err != nil {
		return err
	}

	subjectToken, err := r.tokens.Authenticate(ctx, activity.User)
	if err != nil {
		return fmt.Errorf("%w: activity subject cannot be authenticated: %s", ErrActivityInvalid, err.Error())
	}

	d := newRoleProbe(subjectToken, r.tokens, r.roles).decide(ctx, movie)
	if !d.Allowed {
		return fmt.Errorf("%w: activity subject may not view movie %d (%s)", ErrUserNotAllowed, movieID, d.Reason)
	}
	return nil
}
