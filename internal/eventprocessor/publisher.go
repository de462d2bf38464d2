// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelgate/internal/config"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// PublisherConfig configures the NATS connection and publish behavior.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	PublishTimeout   time.Duration
	EnableTrackMsgID bool
	Breaker          CircuitBreakerConfig
}

// PublisherConfigFrom maps service configuration onto a PublisherConfig.
// url overrides cfg.URL when non-empty, which is how an embedded server's
// client URL is passed in.
func PublisherConfigFrom(cfg *config.NATSConfig, url string) PublisherConfig {
	if url == "" {
		url = cfg.URL
	}
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		PublishTimeout:   cfg.PublishTimeout,
		EnableTrackMsgID: true,
		Breaker: CircuitBreakerConfig{
			Name:             "nats-publisher",
			MaxRequests:      1,
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: cfg.BreakerMaxFailures,
		},
	}
}

// Publisher wraps the Watermill JetStream publisher with a circuit breaker.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[any]
	mu             sync.RWMutex
	closed         bool
}

// NewPublisher connects a Watermill NATS publisher. The target stream must
// already exist; see EnsureStream.
func NewPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:       false,
			AutoProvision:  false,
			TrackMsgId:     cfg.EnableTrackMsgID,
			PublishOptions: publishOptions(cfg),
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher:      pub,
		circuitBreaker: NewCircuitBreaker(cfg.Breaker),
	}, nil
}

// publishOptions sets the JetStream ack wait. No retry options are set: a
// failed publish surfaces to the caller, which decides whether to resend.
func publishOptions(cfg PublisherConfig) []natsgo.PubOpt {
	if cfg.PublishTimeout <= 0 {
		return nil
	}
	return []natsgo.PubOpt{natsgo.AckWait(cfg.PublishTimeout)}
}

// Publish sends msg to topic. The message UUID is used as Nats-Msg-Id when
// the caller has not set one.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	_, err := p.circuitBreaker.Execute(func() (any, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	return err
}

// BreakerOpen reports whether publishing is currently short-circuited.
func (p *Publisher) BreakerOpen() bool {
	return p.circuitBreaker.State() == gobreaker.StateOpen
}

// Close shuts down the underlying publisher. It is safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
