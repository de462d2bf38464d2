// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockEmbeddedServer struct {
	mu       sync.Mutex
	startErr error
	running  bool
	starts   int
	stops    int
}

func (m *mockEmbeddedServer) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.starts++
	m.running = true
	return nil
}

func (m *mockEmbeddedServer) Shutdown(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.running = false
}

func (m *mockEmbeddedServer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func TestEmbeddedNATSService_Lifecycle(t *testing.T) {
	server := &mockEmbeddedServer{}
	svc := NewEmbeddedNATSService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for !server.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !server.IsRunning() {
		t.Fatal("server not started")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if server.IsRunning() {
		t.Error("server still running after Serve returned")
	}
	if server.stops != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.stops)
	}
}

func TestEmbeddedNATSService_StartFailure(t *testing.T) {
	server := &mockEmbeddedServer{startErr: errors.New("port in use")}
	svc := NewEmbeddedNATSService(server, 0)

	err := svc.Serve(context.Background())
	if !errors.Is(err, server.startErr) {
		t.Fatalf("Serve() error = %v, want start error", err)
	}
	if server.stops != 0 {
		t.Error("Shutdown should not run when Start failed")
	}
	if svc.String() != "embedded-nats" {
		t.Errorf("String() = %q", svc.String())
	}
}
