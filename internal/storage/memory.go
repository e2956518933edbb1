package storage

import (
	"context"
	"sync"

	"embedserver/internal/models"
)

// MemoryStorage implements the Storage interface with an in-memory map.
// Contents are lost on restart; intended for tests and development.
type MemoryStorage struct {
	mu     sync.RWMutex
	embeds map[string]models.Embed
}

// NewMemoryStorage creates an empty in-memory storage instance.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		embeds: make(map[string]models.Embed),
	}
}

// GetEmbed retrieves an embed by its code.
func (ms *MemoryStorage) GetEmbed(ctx context.Context, code string) (*models.Embed, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	embed, ok := ms.embeds[code]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate stored state.
	return &embed, nil
}

// SaveEmbed stores a new embed.
func (ms *MemoryStorage) SaveEmbed(ctx context.Context, embed *models.Embed) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.embeds[embed.Code]; ok {
		return ErrAlreadyExists
	}
	ms.embeds[embed.Code] = *embed
	return nil
}

// UpdateEmbed replaces an existing embed.
func (ms *MemoryStorage) UpdateEmbed(ctx context.Context, embed *models.Embed) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.embeds[embed.Code]; !ok {
		return ErrNotFound
	}
	ms.embeds[embed.Code] = *embed
	return nil
}

// DeleteEmbed removes an embed by its code.
func (ms *MemoryStorage) DeleteEmbed(ctx context.Context, code string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.embeds[code]; !ok {
		return ErrNotFound
	}
	delete(ms.embeds, code)
	return nil
}

// Ping always succeeds for in-memory storage.
func (ms *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for in-memory storage.
func (ms *MemoryStorage) Close() error {
	return nil
}
