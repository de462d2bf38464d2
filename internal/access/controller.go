// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
)

// Controller serves movie, clip and ad lookups.
type Controller struct {
	tokens TokenValidator
	roles  RoleCatalog
	movies MovieStore
	clips  ClipStore
	ads    AdStore
	pick   func(n int) int
}

// NewController builds a Controller. Tokens, Roles, Movies, Clips and Ads are
// required; PickAd is optional.
func NewController(deps Deps) (*Controller, error) {
	if err := requireDeps(
		dep{"Tokens", deps.Tokens != nil},
		dep{"Roles", deps.Roles != nil},
		dep{"Movies", deps.Movies != nil},
		dep{"Clips", deps.Clips != nil},
		dep{"Ads", deps.Ads != nil},
	); err != nil {
		return nil, err
	}
	return &Controller{
		tokens: deps.Tokens,
		roles:  deps.Roles,
		movies: deps.Movies,
		clips:  deps.Clips,
		ads:    deps.Ads,
		pick:   defaultPicker(deps.PickAd),
	}, nil
}

// GetMovie returns the clips of movie movieID if the token holder may view it.
// The clip slice is returned as stored.
func (c *Controller) GetMovie(ctx context.Context, token string, movieID int64) (clips []models.Clip, err error) {
	defer func() { observe(ctx, opGetMovie, err) }()
	log := logging.Ctx(ctx).With().Str("operation", opGetMovie).Int64("movie_id", movieID).Logger()

	if err := checkToken(ctx, c.tokens, token); err != nil {
		return nil, err
	}
	log.Debug().Msg("token valid, resolving movie")

	movie, err := c.movies.ByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	d := newRoleProbe(token, c.tokens, c.roles).decide(ctx, movie)
	if !d.Allowed {
		return nil, fmt.Errorf("%w: movie %d (%s)", ErrUserNotAllowed, movieID, d.Reason)
	}

	log.Debug().Str("reason", string(d.Reason)).Int("clips", len(movie.Clips)).Msg("movie access granted")
	return movie.Clips, nil
}

// GetClipData returns the payload descriptor of clip clipID. Any valid token
// may read any clip; the clip store result is returned unchanged.
func (c *Controller) GetClipData(ctx context.Context, token string, clipID int64) (data *models.ClipData, err error) {
	defer func() { observe(ctx, opGetClipData, err) }()

	if err := checkToken(ctx, c.tokens, token); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Str("operation", opGetClipData).Int64("clip_id", clipID).Msg("token valid, fetching clip data")

	return c.clips.ByClipID(ctx, clipID)
}

// GetAd returns the clip data of one ad drawn uniformly at random from the
// whole ad pool.
//
// An ad whose clip cannot be resolved is reported as ErrNoAdsAvailable, like
// an empty pool. The failure is logged and counted separately since it points
// at an inconsistency between the ad catalog and clip storage.
func (c *Controller) GetAd(ctx context.Context, token string, movieID int64) (data *models.ClipData, err error) {
	defer func() { observe(ctx, opGetAd, err) }()
	log := logging.Ctx(ctx).With().Str("operation", opGetAd).Int64("movie_id", movieID).Logger()

	if err := checkToken(ctx, c.tokens, token); err != nil {
		return nil, err
	}

	ads, err := c.ads.AllAds(ctx)
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, ErrNoAdsAvailable
	}

	ad := ads[c.pick(len(ads))]
	log.Debug().Int64("ad_id", ad.ID).Int("pool", len(ads)).Msg("ad selected")

	data, err = c.clips.ByClipID(ctx, ad.Clip.ID)
	if err != nil {
		cause := "clip_lookup_error"
		if errors.Is(err, ErrClipNotFound) {
			cause = "clip_not_found"
		}
		metrics.RecordAdIntegrityFailure(cause)
		log.Warn().Err(err).
			Int64("ad_id", ad.ID).
			Int64("clip_id", ad.Clip.ID).
			Str("cause", cause).
			Msg("selected ad has no resolvable clip")
		return nil, fmt.Errorf("%w: ad %d clip unavailable", ErrNoAdsAvailable, ad.ID)
	}
	return data, nil
}
