package storage

import (
	"context"

	"embedserver/internal/models"
)

// Storage defines the interface for embed persistence and retrieval.
// It provides a clean abstraction that can be implemented by different
// backends such as in-memory maps or databases.
type Storage interface {
	// GetEmbed retrieves an embed by its code. Returns ErrNotFound when
	// no embed exists for the code.
	GetEmbed(ctx context.Context, code string) (*models.Embed, error)

	// SaveEmbed stores a new embed. Returns ErrAlreadyExists when the
	// code is already taken.
	SaveEmbed(ctx context.Context, embed *models.Embed) error

	// UpdateEmbed replaces an existing embed. Returns ErrNotFound when
	// no embed exists for the code.
	UpdateEmbed(ctx context.Context, embed *models.Embed) error

	// DeleteEmbed removes an embed by its code. Returns ErrNotFound when
	// no embed exists for the code.
	DeleteEmbed(ctx context.Context, code string) error

	// Ping verifies the backend is reachable and operational.
	Ping(ctx context.Context) error

	// Close closes the storage connection and cleans up resources.
	Close() error
}
