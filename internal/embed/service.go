// Package embed implements the business logic for creating, reading,
// updating and deleting rich embeds. Ownership is tracked as a SHA-256
// digest of the creating client's IP so raw addresses are never stored.
package embed

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"embedserver/internal/models"
	"embedserver/internal/storage"
)

// codeAttempts bounds collision retries during code generation. With the
// default 16-character charset and 6-character codes the space holds 16M
// codes, so more than a couple of collisions means something is wrong.
const codeAttempts = 10

// Service handles embed business logic on top of a storage backend.
type Service struct {
	storage     storage.Storage
	logger      *slog.Logger
	codeSize    int
	codeCharset string
	now         func() time.Time
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new embed service with the given storage backend.
func NewService(store storage.Storage, logger *slog.Logger, cfg models.EmbedConfig, opts ...Option) *Service {
	s := &Service{
		storage:     store,
		logger:      logger,
		codeSize:    cfg.CodeSize,
		codeCharset: cfg.CodeCharset,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OwnerHash derives the stored owner identifier from a client IP.
func OwnerHash(clientIP string) string {
	sum := sha256.Sum256([]byte(clientIP))
	return hex.EncodeToString(sum[:])
}

// Create validates the payload, generates a unique code and stores the embed.
func (s *Service) Create(ctx context.Context, clientIP string, payload *models.EmbedPayload) (*models.Embed, error) {
	if err := payload.ValidateForCreate(); err != nil {
		return nil, NewValidationError("invalid embed payload", err)
	}

	now := s.now().UTC()
	e := &models.Embed{
		Title:     *payload.Title,
		Timestamp: now,
		Owner:     OwnerHash(clientIP),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyPayload(e, payload)

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, NewInternalError("failed to generate embed code", err)
		}
		e.Code = code

		err = s.storage.SaveEmbed(ctx, e)
		if err == nil {
			s.logger.Info("embed created", "code", e.Code)
			return e, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return nil, NewInternalError("failed to save embed", err)
		}
		s.logger.Debug("embed code collision, retrying", "code", code, "attempt", attempt+1)
	}

	return nil, NewConflictError("could not generate a unique embed code")
}

// Get retrieves an embed by its code.
func (s *Service) Get(ctx context.Context, code string) (*models.Embed, error) {
	e, err := s.storage.GetEmbed(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewEmbedNotFoundError(code)
		}
		return nil, NewInternalError("failed to load embed", err)
	}
	return e, nil
}

// Update applies a partial payload to an embed. Only the owner may update.
func (s *Service) Update(ctx context.Context, clientIP, code string, payload *models.EmbedPayload) (*models.Embed, error) {
	if err := payload.Validate(); err != nil {
		return nil, NewValidationError("invalid embed payload", err)
	}

	e, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if e.Owner != OwnerHash(clientIP) {
		return nil, NewNotOwnerError(code)
	}

	applyPayload(e, payload)
	e.UpdatedAt = s.now().UTC()

	if err := s.storage.UpdateEmbed(ctx, e); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewEmbedNotFoundError(code)
		}
		return nil, NewInternalError("failed to update embed", err)
	}

	s.logger.Info("embed updated", "code", code)
	return e, nil
}

// Delete removes an embed. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, clientIP, code string) error {
	e, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if e.Owner != OwnerHash(clientIP) {
		return NewNotOwnerError(code)
	}

	if err := s.storage.DeleteEmbed(ctx, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewEmbedNotFoundError(code)
		}
		return NewInternalError("failed to delete embed", err)
	}

	s.logger.Info("embed deleted", "code", code)
	return nil
}

// generateCode draws a random code from the configured charset.
func (s *Service) generateCode() (string, error) {
	max := big.NewInt(int64(len(s.codeCharset)))
	buf := make([]byte, s.codeSize)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = s.codeCharset[n.Int64()]
	}
	return string(buf), nil
}

// applyPayload copies set payload fields onto the embed.
func applyPayload(e *models.Embed, p *models.EmbedPayload) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Colour != nil {
		e.Colour = p.Colour
	}
	if p.Timestamp != nil {
		e.Timestamp = time.Unix(*p.Timestamp, 0).UTC()
	}
	if p.AuthorName != nil {
		e.AuthorName = *p.AuthorName
	}
	if p.MediaURL != nil {
		e.MediaURL = *p.MediaURL
	}
}
