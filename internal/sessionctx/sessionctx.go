// Package sessionctx holds the single active session as explicitly scoped
// state with an init/restore/clear lifecycle. It is injected into the auth
// orchestrator and the conversation relay rather than accessed as ambient
// global state.
package sessionctx

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quickdatapro/core/internal/domain"
	"github.com/quickdatapro/core/internal/store"
)

// Context is the process-wide session holder. Initialized empty; populated
// only by a completed login flow or by restoring persisted state at
// startup; cleared by explicit logout.
type Context struct {
	mu      sync.RWMutex
	current *domain.Session
	repo    store.Repository
}

// New creates an empty session context backed by repo.
func New(repo store.Repository) *Context {
	return &Context{repo: repo}
}

// Restore loads the persisted session record. Corrupted or missing state
// restores to "no session"; only a storage failure is an error.
func (c *Context) Restore(ctx context.Context) error {
	sess, err := c.repo.GetSession(ctx, store.SessionKey)
	if err != nil {
		return err
	}
	if sess != nil && !sess.Valid() {
		slog.Warn("Discarding corrupted persisted session")
		if delErr := c.repo.DeleteSession(ctx, store.SessionKey); delErr != nil {
			slog.Warn("Failed to delete corrupted session", "error", delErr)
		}
		sess = nil
	}

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	if sess != nil {
		slog.Info("Session restored", "email", sess.Email, "role", sess.Role)
	}
	return nil
}

// Current returns a copy of the active session, or nil if none.
func (c *Context) Current() *domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	sess := *c.current
	return &sess
}

// Set installs and persists a freshly produced session.
func (c *Context) Set(ctx context.Context, sess *domain.Session) error {
	if err := c.repo.SaveSession(ctx, store.SessionKey, sess); err != nil {
		return err
	}

	c.mu.Lock()
	copy := *sess
	c.current = &copy
	c.mu.Unlock()
	return nil
}

// Clear drops the active session and its persisted record. Token
// invalidation with the identity provider is the orchestrator's job and
// happens before Clear is called.
func (c *Context) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	return c.repo.DeleteSession(ctx, store.SessionKey)
}

// Decorate appends the session identity to an outgoing relay payload.
// It is invoked synchronously before dispatch; with no active session the
// payload is left untouched.
func (c *Context) Decorate(payload map[string]string) {
	sess := c.Current()
	if sess == nil {
		return
	}
	if sess.Role.IsAgent() {
		payload["agent_email"] = sess.Email
	} else {
		payload["user_email"] = sess.Email
	}
}
