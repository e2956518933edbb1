package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func i64Ptr(i int64) *int64   { return &i }

func TestEmbedPayload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payload EmbedPayload
		wantErr string
	}{
		{"empty payload", EmbedPayload{}, ""},
		{"valid full", EmbedPayload{
			Title:       strPtr("hello"),
			Description: strPtr("a description"),
			Colour:      intPtr(0xFF00FF),
			Timestamp:   i64Ptr(1700000000),
			AuthorName:  strPtr("someone"),
			MediaURL:    strPtr("https://example.com/cat.png"),
		}, ""},
		{"empty title", EmbedPayload{Title: strPtr("")}, "title"},
		{"title too long", EmbedPayload{Title: strPtr(strings.Repeat("x", 256))}, "title"},
		{"title at limit", EmbedPayload{Title: strPtr(strings.Repeat("x", 255))}, ""},
		{"description too long", EmbedPayload{Description: strPtr(strings.Repeat("x", 2049))}, "description"},
		{"colour zero", EmbedPayload{Colour: intPtr(0)}, "colour"},
		{"colour negative", EmbedPayload{Colour: intPtr(-1)}, "colour"},
		{"colour over white", EmbedPayload{Colour: intPtr(0x1000000)}, "colour"},
		{"colour white", EmbedPayload{Colour: intPtr(0xFFFFFF)}, ""},
		{"negative timestamp", EmbedPayload{Timestamp: i64Ptr(-1)}, "timestamp"},
		{"empty author", EmbedPayload{AuthorName: strPtr("")}, "author_name"},
		{"media url too long", EmbedPayload{MediaURL: strPtr("https://" + strings.Repeat("x", 2048))}, "media_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestEmbedPayload_ValidateForCreate(t *testing.T) {
	assert.ErrorContains(t, (&EmbedPayload{}).ValidateForCreate(), "title is required")
	assert.NoError(t, (&EmbedPayload{Title: strPtr("hi")}).ValidateForCreate())
}

func TestEmbedPayload_IsEmpty(t *testing.T) {
	assert.True(t, (&EmbedPayload{}).IsEmpty())
	assert.False(t, (&EmbedPayload{Colour: intPtr(1)}).IsEmpty())
}

func TestEmbed_ColourHex(t *testing.T) {
	e := &Embed{}
	assert.Equal(t, "", e.ColourHex())

	e.Colour = intPtr(0xFF)
	assert.Equal(t, "#0000ff", e.ColourHex())

	e.Colour = intPtr(0xABCDEF)
	assert.Equal(t, "#abcdef", e.ColourHex())
}
