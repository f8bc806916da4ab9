package repository

import (
	"context"
	"errors"

	"gentle/internal/domain"
)

// ErrNotFound is returned when a session does not exist
var ErrNotFound = errors.New("session not found")

// SessionRepository defines the interface for session snapshot persistence.
// Saves replace the full snapshot of a session atomically.
type SessionRepository interface {
	// Read operations
	GetSession(ctx context.Context, id string) (*domain.Network, error)
	ListSessions(ctx context.Context) ([]domain.SessionSummary, error)

	// Write operations
	SaveSession(ctx context.Context, net *domain.Network) error
	DeleteSession(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
