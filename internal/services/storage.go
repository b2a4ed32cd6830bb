package services

import (
	"context"

	"github.com/sigco3111/rpg-script-editor/pkg/player"
	"github.com/sigco3111/rpg-script-editor/pkg/script"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for project and play session persistence
type Storage interface {
	HealthChecker
	Closer

	// SaveProject stores the working project document
	SaveProject(ctx context.Context, project *script.Project) error

	// LoadProject retrieves the working project document.
	// Returns nil if no project has been saved.
	LoadProject(ctx context.Context) (*script.Project, error)

	// DeleteProject removes the working project document
	DeleteProject(ctx context.Context) error

	// SavePlaySession stores a play session under its UUID
	SavePlaySession(ctx context.Context, session *player.Session) error

	// LoadPlaySession retrieves a play session by UUID.
	// Returns nil if the session doesn't exist.
	LoadPlaySession(ctx context.Context, id string) (*player.Session, error)

	// DeletePlaySession removes a play session by UUID
	DeletePlaySession(ctx context.Context, id string) error
}
