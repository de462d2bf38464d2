// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package supervisor runs Reelgate's long-lived services under suture v4.

The tree has three layers so a failure in one does not restart the others:

	RootSupervisor ("reelgate")
	├── DataSupervisor ("data-layer")
	│   └── PeriodicService "revocation-gc" (badger revocation backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EmbeddedNATSService (NATS_EMBEDDED=true only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (ops surface)

Supervisor events are logged through sutureslog onto the zerolog-backed slog
handler from internal/logging.
*/
package supervisor
