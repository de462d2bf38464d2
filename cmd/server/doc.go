// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package main is the Reelgate daemon.

Reelgate decides who may stream which movie clips and ads, and records
viewing activity. The daemon builds every adapter behind the access
service and keeps the long-lived pieces under a suture v4 tree:

	RootSupervisor ("reelgate")
	├── DataSupervisor ("data-layer")
	│   └── revocation-gc (REVOCATION_BACKEND=badger)
	├── MessagingSupervisor ("messaging-layer")
	│   └── embedded-nats (NATS_EMBEDDED=true)
	└── APISupervisor ("api-layer")
	    └── ops-http (/healthz, /readyz, /metrics)

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Role directory: casbin policy with a decision cache
 4. Tokens: HKDF-derived HS256 keys and the revocation list
 5. Catalog: DuckDB, read-only unless CATALOG_BOOTSTRAP is set
 6. Clip storage: HTTP client behind a rate limiter and circuit breaker
 7. Activity stream: NATS JetStream (embedded broker optional)
 8. Supervisor tree and ops HTTP server

# Configuration

The minimum for a local run:

	export JWT_SECRET=$(openssl rand -base64 48)
	export CLIPSTORE_URL=http://localhost:9000
	export NATS_EMBEDDED=true
	export CATALOG_READ_ONLY=false CATALOG_BOOTSTRAP=true
	./reelgate

# Signal Handling

SIGINT and SIGTERM cancel the root context. The tree stops the HTTP server
gracefully, then the embedded broker. The publisher, catalog and stores are
closed after the tree returns.
*/
package main
