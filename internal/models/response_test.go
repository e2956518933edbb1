package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("embed not found", ErrorCodeNotFound)

	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, "embed not found", resp.Message)
	assert.Equal(t, ErrorCodeNotFound, resp.Code)
	assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Second)
}

func TestNewRateLimitedResponse_ExactBody(t *testing.T) {
	data, err := json.Marshal(NewRateLimitedResponse())
	require.NoError(t, err)
	assert.JSONEq(t, `{"detail": "You are being rate limited."}`, string(data))
}

func TestEmbedResponse_FromEmbed(t *testing.T) {
	colour := 0xFF0000
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := &Embed{
		Code:        "a1b2c3",
		Title:       "hello",
		Description: "world",
		Colour:      &colour,
		Timestamp:   created,
		AuthorName:  "someone",
		MediaURL:    "https://example.com/cat.png",
		Owner:       "deadbeef",
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	var resp EmbedResponse
	resp.FromEmbed(e, "https://embed.example.com")

	assert.Equal(t, "a1b2c3", resp.Code)
	assert.Equal(t, "https://embed.example.com/embed/a1b2c3", resp.URL)
	assert.Equal(t, created.Unix(), resp.Timestamp)
	assert.Nil(t, resp.UpdatedAt, "updated_at omitted until the embed changes")

	// The owner hash must never appear in the serialized form.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "deadbeef")
}

func TestEmbedResponse_FromEmbed_IncludesUpdatedAt(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	e := &Embed{Code: "a1b2c3", Title: "hello", Timestamp: created, CreatedAt: created, UpdatedAt: updated}

	var resp EmbedResponse
	resp.FromEmbed(e, "http://localhost:8080")
	require.NotNil(t, resp.UpdatedAt)
	assert.Equal(t, updated, *resp.UpdatedAt)
}

func TestNewHealthCheckResponse(t *testing.T) {
	resp := NewHealthCheckResponse(StatusHealthy)
	resp.AddComponent("storage", StatusHealthy, "")
	resp.AddComponent("ratelimit", StatusUnhealthy, "connection refused")

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, StatusUnhealthy, resp.Components["ratelimit"].Status)
}
