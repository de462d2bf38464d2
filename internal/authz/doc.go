// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

/*
Package authz is the role directory: it answers which roles a subject holds
and which roles the catalog declares. It is backed by a Casbin synced
enforcer.

# Policy

The model (model.conf) treats holding a role as a permission:

	p, REVIEWER, role:REVIEWER, hold     # declares REVIEWER
	g, critic@example.com, REVIEWER      # critic holds REVIEWER
	g, ADMINISTRATOR, REVIEWER           # administrators also hold REVIEWER

The embedded policy.csv declares the five roles and a handful of development
accounts. Deployments point EnforcerConfig.PolicyPath at their own file, which
is reloaded periodically when AutoReload is set.

# Components

  - Enforcer: HasRole, AssignRole, RevokeRole, with a TTL decision cache
  - Catalog: implements access.RoleCatalog over the declared roles

Subjects are user email addresses.
*/
package authz
