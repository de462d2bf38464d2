// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package authz

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/reelgate/internal/logging"
	"github.com/tomtom215/reelgate/internal/metrics"
	"github.com/tomtom215/reelgate/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

const holdAction = "hold"

// roleObject is the policy object that declares rt.
func roleObject(rt models.RoleType) string {
	return "role:" + string(rt)
}

// EnforcerConfig configures the role directory.
type EnforcerConfig struct {
	// PolicyPath is a Casbin CSV policy file. Empty means the embedded policy.
	PolicyPath string

	// AutoReload re-reads PolicyPath every ReloadInterval and drops cached
	// decisions.
	AutoReload     bool
	ReloadInterval time.Duration

	// CacheTTL bounds how long a membership answer is reused. Zero disables
	// the cache.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns the development defaults.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{
		ReloadInterval: 30 * time.Second,
		CacheTTL:       time.Minute,
	}
}

// Enforcer answers role membership questions.
type Enforcer struct {
	cfg      EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache

	stopReload chan struct{}
	reloadDone chan struct{}
	closeOnce  sync.Once
}

// NewEnforcer loads the embedded model and the configured policy.
func NewEnforcer(cfg EnforcerConfig) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var se *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if _, statErr := os.Stat(cfg.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		se, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		se, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(se, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	e := &Enforcer{cfg: cfg, enforcer: se}
	if cfg.CacheTTL > 0 {
		e.cache = newDecisionCache(cfg.CacheTTL, nil)
	}
	if cfg.AutoReload && cfg.PolicyPath != "" && cfg.ReloadInterval > 0 {
		e.stopReload = make(chan struct{})
		e.reloadDone = make(chan struct{})
		go e.reloadLoop(cfg.ReloadInterval)
	}

	logging.Info().
		Str("policy", policySource(cfg.PolicyPath)).
		Bool("auto_reload", cfg.AutoReload).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("role directory loaded")
	return e, nil
}

func policySource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// loadPolicy adds the p and g lines of a CSV policy to se.
func loadPolicy(se *casbin.SyncedEnforcer, policy string) error {
	sc := bufio.NewScanner(strings.NewReader(policy))
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		var err error
		switch {
		case fields[0] == "p" && len(fields) == 4:
			_, err = se.AddPolicy(fields[1], fields[2], fields[3])
		case fields[0] == "g" && len(fields) == 3:
			_, err = se.AddGroupingPolicy(fields[1], fields[2])
		default:
			return fmt.Errorf("policy line %d: unsupported rule %q", lineNo, line)
		}
		if err != nil {
			return fmt.Errorf("policy line %d: %w", lineNo, err)
		}
	}
	return sc.Err()
}

// HasRole reports whether subject holds rt, directly or through inheritance.
func (e *Enforcer) HasRole(ctx context.Context, subject string, rt models.RoleType) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.enforce(subject, roleObject(rt), holdAction)
}

func (e *Enforcer) enforce(subject, object, action string) (bool, error) {
	if e.cache != nil {
		if allowed, ok := e.cache.get(subject, object, action); ok {
			metrics.RecordRoleCache(true)
			return allowed, nil
		}
		metrics.RecordRoleCache(false)
	}

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforce %s on %s: %w", subject, object, err)
	}

	if e.cache != nil {
		e.cache.set(subject, object, action, allowed)
	}
	return allowed, nil
}

// Declares reports whether the policy declares rt.
func (e *Enforcer) Declares(rt models.RoleType) (bool, error) {
	rules, err := e.enforcer.GetFilteredPolicy(0, string(rt), roleObject(rt), holdAction)
	if err != nil {
		return false, fmt.Errorf("read policy: %w", err)
	}
	return len(rules) > 0, nil
}

// RolesOf returns the roles directly assigned to subject.
func (e *Enforcer) RolesOf(subject string) ([]models.RoleType, error) {
	names, err := e.enforcer.GetRolesForUser(subject)
	if err != nil {
		return nil, fmt.Errorf("roles for %s: %w", subject, err)
	}
	roles := make([]models.RoleType, 0, len(names))
	for _, n := range names {
		if rt, perr := models.ParseRoleType(n); perr == nil {
			roles = append(roles, rt)
		}
	}
	return roles, nil
}

// AssignRole grants rt to subject. subject may itself be a role, which makes
// rt inherited by that role's members.
func (e *Enforcer) AssignRole(subject string, rt models.RoleType) (bool, error) {
	added, err := e.enforcer.AddGroupingPolicy(subject, string(rt))
	if err != nil {
		return false, fmt.Errorf("assign %s to %s: %w", rt, subject, err)
	}
	e.invalidate(subject)
	return added, nil
}

// RevokeRole removes a direct assignment of rt from subject.
func (e *Enforcer) RevokeRole(subject string, rt models.RoleType) (bool, error) {
	removed, err := e.enforcer.RemoveGroupingPolicy(subject, string(rt))
	if err != nil {
		return false, fmt.Errorf("revoke %s from %s: %w", rt, subject, err)
	}
	e.invalidate(subject)
	return removed, nil
}

// invalidate drops cached answers affected by a grouping change on subject.
// A change on a role affects every member, so the whole cache goes.
func (e *Enforcer) invalidate(subject string) {
	if e.cache == nil {
		return
	}
	if models.RoleType(subject).Valid() {
		e.cache.clear()
		return
	}
	e.cache.invalidateSubject(subject)
}

// Reload re-reads the policy file. It is a no-op for the embedded policy.
func (e *Enforcer) Reload() error {
	if e.cfg.PolicyPath == "" {
		return nil
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload policy: %w", err)
	}
	if e.cache != nil {
		e.cache.clear()
	}
	return nil
}

// reloadLoop calls Reload every interval so a changed policy file also
// drops cached decisions.
func (e *Enforcer) reloadLoop(interval time.Duration) {
	defer close(e.reloadDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopReload:
			return
		case <-ticker.C:
			if err := e.Reload(); err != nil {
				logging.Warn().Err(err).Str("policy", e.cfg.PolicyPath).Msg("policy reload failed")
			}
		}
	}
}

// Close stops policy reloading and the cache sweeper. It is safe to call
// more than once.
func (e *Enforcer) Close() {
	e.closeOnce.Do(func() {
		if e.stopReload != nil {
			close(e.stopReload)
			<-e.reloadDone
		}
		if e.cache != nil {
			e.cache.close()
		}
	})
}
