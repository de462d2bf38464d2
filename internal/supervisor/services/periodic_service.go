// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package services

import (
	"context"
	"time"

	"github.com/tomtom215/reelgate/internal/logging"
)

// PeriodicService runs task every interval. Task errors are logged and the
// loop continues; only ctx ends it.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
}

func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error) *PeriodicService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.task(ctx); err != nil && ctx.Err() == nil {
				logging.Warn().Err(err).Str("service", s.name).Msg("Periodic task failed")
			}
		}
	}
}

func (s *PeriodicService) String() string {
	return s.name
}
