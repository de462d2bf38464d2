// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
)

// Operation names used in logs and metrics.
const (
	opGetMovie     = "get_movie"
	opGetClipData  = "get_clip_data"
	opGetAd        = "get_ad"
	opSendActivity = "send_activity"
)

// Deps carries the collaborators of Controller and Recorder.
type Deps struct {
	Tokens     TokenValidator
	Roles      RoleCatalog
	Movies     MovieStore
	Clips      ClipStore
	Ads        AdStore
	Activities ActivityStore

	// PickAd returns an index in [0, n). Defaults to rand.IntN.
	PickAd func(n int) int
}

// Service bundles a Controller and a Recorder built from one Deps.
type Service struct {
	*Controller
	*Recorder
}

// New builds a Service. Every collaborator in deps is required.
func New(deps Deps) (*Service, error) {
	c, err := NewController(deps)
	if err != nil {
		return nil, err
	}
	r, err := NewRecorder(deps)
	if err != nil {
		return nil, err
	}
	return &Service{Controller: c, Recorder: r}, nil
}

// dep names one collaborator and whether it was provided.
type dep struct {
	name string
	set  bool
}

func requireDeps(deps ...dep) error {
	var missing []string
	for _, d := range deps {
		if !d.set {
			missing = append(missing, d.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("access: missing collaborators: %s", strings.Join(missing, ", "))
	}
	return nil
}

func defaultPicker(pick func(int) int) func(int) int {
	if pick != nil {
		return pick
	}
	return rand.IntN
}

// checkToken applies the shared token preconditions of every operation.
func checkToken(ctx context.Context, tokens TokenValidator, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}

	ok, err := tokens.Validate(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenExpired
	}
	return nil
}

// observe records the outcome of one operation.
func observe(ctx context.Context, op string, err error) {
	kind := Kind(err)
	if err == nil {
		metrics.RecordAccess(op, "allowed")
		return
	}
	metrics.RecordAccess(op, kind)

	ev := logging.Ctx(ctx).Info()
	if kind == "internal" || errors.Is(err, context.DeadlineExceeded) {
		ev = logging.Ctx(ctx).Error()
	}
	ev.Err(err).Str("operation", op).Str("kind", kind).Msg("request rejected")
}
