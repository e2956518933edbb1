package embed

import (
	"context"

	"embedserver/internal/models"
)

// ServiceInterface defines the interface for embed service operations
type ServiceInterface interface {
	// Create stores a new embed owned by the given client and returns it
	Create(ctx context.Context, clientIP string, payload *models.EmbedPayload) (*models.Embed, error)

	// Get retrieves an embed by its code
	Get(ctx context.Context, code string) (*models.Embed, error)

	// Update applies a partial payload to an embed owned by the given client
	Update(ctx context.Context, clientIP, code string, payload *models.EmbedPayload) (*models.Embed, error)

	// Delete removes an embed owned by the given client
	Delete(ctx context.Context, clientIP, code string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
