// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/quickdatapro/core/internal/domain"
)

// SessionKey is the well-known key the single active session record is
// persisted under. Exactly one session exists per deployment context.
const SessionKey = "active"

// Repository defines the interface for persisting the session record.
type Repository interface {
	// GetSession retrieves the session stored under key, or nil if none.
	GetSession(ctx context.Context, key string) (*domain.Session, error)

	// SaveSession stores or replaces the session under key.
	SaveSession(ctx context.Context, key string, session *domain.Session) error

	// DeleteSession removes the session under key. Removing a missing
	// session is not an error.
	DeleteSession(ctx context.Context, key string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
