package storage

import (
	"os"
	"testing"

	"embedserver/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresStorage connects using EMBEDSERVER_TEST_POSTGRES_DSN or skips.
func newPostgresStorage(t *testing.T) Storage {
	t.Helper()

	dsn := os.Getenv("EMBEDSERVER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: EMBEDSERVER_TEST_POSTGRES_DSN not set")
	}

	s, err := NewPostgresStorage(models.DatabaseConfig{DSN: dsn, ConnectRetries: 1})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStorage_Integration_CRUD(t *testing.T) {
	s := newPostgresStorage(t)
	exerciseStorage(t, s)
}

func TestNewPostgresStorage_RequiresDSN(t *testing.T) {
	_, err := NewPostgresStorage(models.DatabaseConfig{})
	assert.Error(t, err)
}

func TestNewPostgresStorage_InvalidDSN(t *testing.T) {
	_, err := NewPostgresStorage(models.DatabaseConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}
