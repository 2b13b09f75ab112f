// Package notify implements the notification surface: the permission gate
// and the sinks a surfaced notification is delivered to.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/event-calendar/internal/logging"
)

// Permission mirrors the desktop notification permission states.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission accepts the three permission names, case-insensitively.
// An empty value means PermissionDefault.
func ParsePermission(value string) (Permission, error) {
	switch Permission(strings.ToLower(strings.TrimSpace(value))) {
	case "", PermissionDefault:
		return PermissionDefault, nil
	case PermissionGranted:
		return PermissionGranted, nil
	case PermissionDenied:
		return PermissionDenied, nil
	}
	return "", fmt.Errorf("notify: unknown permission %q", value)
}

// PermissionGate holds the current permission. It is checked on every fire,
// so a change takes effect for notifications already armed.
type PermissionGate struct {
	mu        sync.RWMutex
	state     Permission
	requested bool
}

// NewPermissionGate returns a gate in the given state.
func NewPermissionGate(initial Permission) *PermissionGate {
	if initial == "" {
		initial = PermissionDefault
	}
	return &PermissionGate{state: initial}
}

// State reports the current permission.
func (g *PermissionGate) State() Permission {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Granted reports whether notifications may be surfaced.
func (g *PermissionGate) Granted() bool {
	return g.State() == PermissionGranted
}

// Requested reports whether Request has asked for permission.
func (g *PermissionGate) Requested() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.requested
}

// Set resolves the permission.
func (g *PermissionGate) Set(ctx context.Context, p Permission) {
	g.mu.Lock()
	previous := g.state
	g.state = p
	g.mu.Unlock()

	if previous != p {
		loggerFrom(ctx).InfoContext(ctx, "notification permission changed", "from", string(previous), "to", string(p))
	}
}

// Request asks for permission once, unless it is already granted. The
// prompt stays pending until a client calls Set.
func (g *PermissionGate) Request(ctx context.Context) Permission {
	g.mu.Lock()
	state := g.state
	ask := state != PermissionGranted && !g.requested
	if ask {
		g.requested = true
	}
	g.mu.Unlock()

	if ask {
		loggerFrom(ctx).WarnContext(ctx, "notification permission requested; notifications stay silent until it is granted", "permission", string(state))
	}
	return state
}

func loggerFrom(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, nil).With("component", "notify")
}
