// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package services

import (
	"context"
	"fmt"
	"time"
)

// EmbeddedServer is satisfied by *eventprocessor.EmbeddedServer.
type EmbeddedServer interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// EmbeddedNATSService supervises the in-process NATS server. Start is
// idempotent, so the server may already be running when the tree starts it.
type EmbeddedNATSService struct {
	server          EmbeddedServer
	shutdownTimeout time.Duration
}

func NewEmbeddedNATSService(server EmbeddedServer, shutdownTimeout time.Duration) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EmbeddedNATSService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve starts the server, waits for ctx and shuts it down.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	if err := s.server.Start(ctx); err != nil {
		return fmt.Errorf("embedded NATS start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.server.Shutdown(shutdownCtx)

	return ctx.Err()
}

func (s *EmbeddedNATSService) String() string {
	return "embedded-nats"
}
