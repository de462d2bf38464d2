// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/auth"
	"github.com/tomtom215/reelgate/internal/authz"
	"github.com/tomtom215/reelgate/internal/catalog"
	"github.com/tomtom215/reelgate/internal/clipstore"
	"github.com/tomtom215/reelgate/internal/config"
	"github.com/tomtom215/reelgate/internal/eventprocessor"
	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/ops"
	"github.com/tomtom215/reelgate/internal/supervisor"
	"github.com/tomtom215/reelgate/internal/supervisor/services"
)

// revocationGCInterval is how often the badger value log is compacted.
const revocationGCInterval = 10 * time.Minute

// App holds every component the daemon owns.
type App struct {
	cfg *config.Config

	Access      *access.Service
	Validator   *auth.Validator
	Enforcer    *authz.Enforcer
	Revocations auth.RevocationStore
	Catalog     *catalog.Store
	Clips       *clipstore.Client

	natsServer *eventprocessor.EmbeddedServer
	natsConn   *natsgo.Conn
	publisher  *eventprocessor.Publisher

	Handler http.Handler

	closers []func() error
}

// NewApp builds the adapters in dependency order. On error everything built
// so far is closed.
//
//nolint:gocyclo // Sequential setup steps
func NewApp(ctx context.Context, cfg *config.Config) (app *App, err error) {
	app = &App{cfg: cfg}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	app.Enforcer, err = authz.NewEnforcer(authz.EnforcerConfig{
		PolicyPath:     cfg.Security.PolicyPath,
		AutoReload:     cfg.Security.PolicyPath != "" && cfg.Security.PolicyReload > 0,
		ReloadInterval: cfg.Security.PolicyReload,
		CacheTTL:       cfg.Security.RoleCacheTTL,
	})
	if err != nil {
		return app, fmt.Errorf("role directory: %w", err)
	}
	app.closers = append(app.closers, func() error { app.Enforcer.Close(); return nil })

	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		return app, fmt.Errorf("token manager: %w", err)
	}
	app.Revocations, err = auth.NewRevocationStore(&cfg.Security)
	if err != nil {
		return app, fmt.Errorf("revocation store: %w", err)
	}
	app.closers = append(app.closers, app.Revocations.Close)
	app.Validator = auth.NewValidator(tokens, app.Revocations, app.Enforcer)

	app.Catalog, err = catalog.Open(&cfg.Catalog)
	if err != nil {
		return app, err
	}
	app.closers = append(app.closers, app.Catalog.Close)
	if cfg.Catalog.Bootstrap {
		if err = app.Catalog.EnsureSchema(ctx); err != nil {
			return app, err
		}
		logging.Info().Str("path", cfg.Catalog.Path).Msg("Catalog schema bootstrapped")
	}

	app.Clips = clipstore.New(&cfg.ClipStore)

	sink, err := app.initActivityStream(ctx)
	if err != nil {
		return app, err
	}

	app.Access, err = access.New(access.Deps{
		Tokens:     app.Validator,
		Roles:      authz.NewCatalog(app.Enforcer),
		Movies:     app.Catalog,
		Clips:      app.Clips,
		Ads:        app.Catalog,
		Activities: sink,
	})
	if err != nil {
		return app, err
	}

	app.Handler = ops.NewRouter(&cfg.Server,
		ops.Check{Name: "catalog", Probe: app.Catalog.Ping},
		ops.Check{Name: "nats", Probe: eventprocessor.ConnectionCheck(app.natsConn)},
		ops.Check{Name: "clipstore", Probe: app.Clips.Check},
	)
	return app, nil
}

// initActivityStream starts the embedded broker when configured, provisions
// the stream and connects the publisher.
func (a *App) initActivityStream(ctx context.Context) (*eventprocessor.ActivitySink, error) {
	cfg := &a.cfg.NATS
	url := cfg.URL

	if cfg.Embedded {
		a.natsServer = eventprocessor.NewEmbeddedServer(eventprocessor.ServerConfigFrom(cfg))
		if err := a.natsServer.Start(ctx); err != nil {
			return nil, fmt.Errorf("embedded NATS: %w", err)
		}
		a.closers = append(a.closers, func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.natsServer.Shutdown(shutdownCtx)
			return nil
		})
		url = a.natsServer.ClientURL()
	}

	nc, js, err := eventprocessor.Connect(url)
	if err != nil {
		return nil, err
	}
	a.natsConn = nc
	a.closers = append(a.closers, func() error { nc.Close(); return nil })

	if _, err := eventprocessor.EnsureStream(ctx, js, eventprocessor.StreamConfigFrom(cfg)); err != nil {
		return nil, err
	}

	a.publisher, err = eventprocessor.NewPublisher(
		eventprocessor.PublisherConfigFrom(cfg, url),
		eventprocessor.NewZerologAdapter(logging.WithComponent("publisher")),
	)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.publisher.Close)

	logging.Info().
		Str("url", url).
		Str("stream", cfg.Stream).
		Str("subject", cfg.Subject).
		Bool("embedded", cfg.Embedded).
		Msg("Activity stream ready")
	return eventprocessor.NewActivitySink(a.publisher, cfg.Subject), nil
}

// Tree wires the long-lived services into a supervisor tree.
func (a *App) Tree() *supervisor.SupervisorTree {
	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	})

	if gc, ok := a.Revocations.(*auth.BadgerRevocationStore); ok {
		tree.AddDataService(services.NewPeriodicService("revocation-gc", revocationGCInterval, gc.RunGC))
	}
	if a.natsServer != nil {
		tree.AddMessagingService(services.NewEmbeddedNATSService(a.natsServer, a.cfg.Server.ShutdownTimeout))
	}

	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           a.Handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService("ops-http", server, a.cfg.Server.ShutdownTimeout))
	return tree
}

// Close releases components in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}
	a.closers = nil
}
