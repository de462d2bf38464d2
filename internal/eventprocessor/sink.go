// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/reelgate/internal/access"
	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
)

// EventPublisher is the subset of Publisher used by ActivitySink.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// ActivitySink implements access.ActivityStore by publishing one event per
// accepted activity.
type ActivitySink struct {
	publisher EventPublisher
	subject   string
	now       func() time.Time
}

var _ access.ActivityStore = (*ActivitySink)(nil)

func NewActivitySink(publisher EventPublisher, subject string) *ActivitySink {
	return &ActivitySink{publisher: publisher, subject: subject, now: time.Now}
}

// Add publishes activity. It does not retry.
func (s *ActivitySink) Add(ctx context.Context, activity *models.Activity) error {
	event, err := NewActivityEvent(activity, s.now())
	if err != nil {
		return fmt.Errorf("build activity event: %w", err)
	}
	data, err := SerializeEvent(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("movie_id", activity.MovieID)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}

	start := time.Now()
	err = s.publisher.Publish(ctx, s.subject, msg)
	metrics.RecordPublish(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("publish activity %s: %w", event.EventID, err)
	}

	logging.Ctx(ctx).Debug().
		Str("event_id", event.EventID).
		Int64("movie_id", event.MovieID).
		Str("subject", s.subject).
		Msg("Activity published")
	return nil
}
