package models

import (
	"errors"
	"fmt"
	"time"
)

// Embed payload field limits. Codes are generated server-side so the
// code limit only matters for storage sizing.
const (
	MaxCodeLength        = 256
	MaxTitleLength       = 255
	MaxDescriptionLength = 2048
	MaxAuthorNameLength  = 255
	MaxMediaURLLength    = 2048
	MaxColour            = 0xFFFFFF
)

// Embed is a stored rich embed. Owner is the SHA-256 hex digest of the
// creating client's IP, never the raw address.
type Embed struct {
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Colour      *int      `json:"colour,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	AuthorName  string    `json:"author_name,omitempty"`
	MediaURL    string    `json:"media_url,omitempty"`
	Owner       string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ColourHex renders the colour as a #rrggbb string for HTML output.
// Returns the empty string when no colour is set.
func (e *Embed) ColourHex() string {
	if e.Colour == nil {
		return ""
	}
	return fmt.Sprintf("#%06x", *e.Colour)
}

// EmbedPayload is the request body for creating or updating an embed.
// Pointer fields distinguish "absent" from zero values on update.
type EmbedPayload struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Colour      *int    `json:"colour,omitempty"`
	Timestamp   *int64  `json:"timestamp,omitempty"`
	AuthorName  *string `json:"author_name,omitempty"`
	MediaURL    *string `json:"media_url,omitempty"`
}

// Validate checks field constraints common to create and update.
func (p *EmbedPayload) Validate() error {
	if p.Title != nil {
		if len(*p.Title) == 0 || len(*p.Title) > MaxTitleLength {
			return fmt.Errorf("title must be between 1 and %d characters", MaxTitleLength)
		}
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	if p.Colour != nil {
		if *p.Colour <= 0 || *p.Colour > MaxColour {
			return fmt.Errorf("colour must be between 1 and %d", MaxColour)
		}
	}
	if p.Timestamp != nil && *p.Timestamp < 0 {
		return errors.New("timestamp cannot be negative")
	}
	if p.AuthorName != nil {
		if len(*p.AuthorName) == 0 || len(*p.AuthorName) > MaxAuthorNameLength {
			return fmt.Errorf("author_name must be between 1 and %d characters", MaxAuthorNameLength)
		}
	}
	if p.MediaURL != nil {
		if len(*p.MediaURL) == 0 || len(*p.MediaURL) > MaxMediaURLLength {
			return fmt.Errorf("media_url must be between 1 and %d characters", MaxMediaURLLength)
		}
	}
	return nil
}

// ValidateForCreate additionally requires the fields a new embed
// cannot do without.
func (p *EmbedPayload) ValidateForCreate() error {
	if p.Title == nil {
		return errors.New("title is required")
	}
	return p.Validate()
}

// IsEmpty reports whether the payload carries no fields at all.
func (p *EmbedPayload) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Colour == nil &&
		p.Timestamp == nil && p.AuthorName == nil && p.MediaURL == nil
}
