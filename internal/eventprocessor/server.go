// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/reelgate/internal/config"
	"github.com/tomtom215/reelgate/internal/logging"
)

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Host     string
	Port     int
	StoreDir string

	// ReadyTimeout bounds how long Start waits for client connections.
	ReadyTimeout time.Duration
}

func ServerConfigFrom(cfg *config.NATSConfig) ServerConfig {
	return ServerConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		StoreDir:     cfg.StoreDir,
		ReadyTimeout: 30 * time.Second,
	}
}

// EmbeddedServer runs nats-server with JetStream in-process. A Port of -1
// picks a random free port.
type EmbeddedServer struct {
	config ServerConfig

	mu     sync.Mutex
	server *server.Server
}

func NewEmbeddedServer(cfg ServerConfig) *EmbeddedServer {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 30 * time.Second
	}
	return &EmbeddedServer{config: cfg}
}

// Start launches the server and waits until it accepts connections.
func (s *EmbeddedServer) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil && s.server.Running() {
		return nil
	}

	ns, err := server.NewServer(&server.Options{
		ServerName: "reelgate-events",
		Host:       s.config.Host,
		Port:       s.config.Port,
		JetStream:  true,
		StoreDir:   s.config.StoreDir,
		NoLog:      true,
		NoSigs:     true,
	})
	if err != nil {
		return fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(s.config.ReadyTimeout) {
		ns.Shutdown()
		return fmt.Errorf("NATS server not ready within %s", s.config.ReadyTimeout)
	}

	s.server = ns
	logging.Info().
		Str("url", ns.ClientURL()).
		Str("store_dir", s.config.StoreDir).
		Msg("Embedded NATS server started")
	return nil
}

// ClientURL returns the connection URL, or "" before Start.
func (s *EmbeddedServer) ClientURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return ""
	}
	return s.server.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown(ctx context.Context) {
	s.mu.Lock()
	ns := s.server
	s.server = nil
	s.mu.Unlock()

	if ns == nil {
		return
	}
	ns.Shutdown()

	done := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(done)
	}()
	select {
	case <-done:
		logging.Info().Msg("Embedded NATS server stopped")
	case <-ctx.Done():
		logging.Warn().Err(ctx.Err()).Msg("Embedded NATS server shutdown timed out")
	}
}

func (s *EmbeddedServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil && s.server.Running()
}
