package storage

import (
	"path/filepath"
	"testing"

	"embedserver/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_CreateMemory(t *testing.T) {
	f := NewFactory()

	s, err := f.Create(models.StorageConfig{Type: models.StorageTypeMemory})
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &MemoryStorage{}, s)
}

func TestFactory_CreateSQLite(t *testing.T) {
	f := NewFactory()

	s, err := f.Create(models.StorageConfig{
		Type: models.StorageTypeSQLite,
		Database: models.DatabaseConfig{
			DSN: filepath.Join(t.TempDir(), "embeds.db"),
		},
	})
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &SQLiteStorage{}, s)
}

func TestFactory_CreateUnsupported(t *testing.T) {
	f := NewFactory()

	_, err := f.Create(models.StorageConfig{Type: "cassandra"})
	assert.ErrorContains(t, err, "unsupported storage type")
}

func TestFactory_GetSupportedProviders(t *testing.T) {
	f := NewFactory()

	providers := f.GetSupportedProviders()
	assert.Contains(t, providers, models.StorageTypeMemory)
	assert.Contains(t, providers, models.StorageTypePostgres)
	assert.Contains(t, providers, models.StorageTypeSQLite)
}
