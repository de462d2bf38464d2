// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package eventprocessor publishes accepted activity reports to NATS JetStream.

Architecture:

	access.Recorder --Add--> ActivitySink --ActivityEvent--> Publisher --> JetStream (ACTIVITY stream)

Components:

  - ActivityEvent: the wire form of an accepted report, JSON encoded
  - Publisher: Watermill NATS publisher behind a circuit breaker, with the
    message UUID sent as Nats-Msg-Id for broker-side deduplication
  - ActivitySink: access.ActivityStore implementation
  - EnsureStream: idempotent stream provisioning
  - EmbeddedServer: in-process nats-server for development and tests

The sink publishes each report once. Redelivery and retry policy belong to
downstream consumers.
*/
package eventprocessor
