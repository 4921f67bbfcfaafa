package app

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"villrein/internal/adapter/storage"
	"villrein/internal/config"
)

func TestOpenStoreFile(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{
		Backend: config.BackendFile,
		DataDir: t.TempDir(),
		OutDir:  t.TempDir(),
	}}

	store, release, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer release()
	assert.IsType(t, &storage.FileStore{}, store)
}

// Needs a reachable database; set VILLREIN_TEST_DB_HOST to run.
func TestOpenStorePostgres(t *testing.T) {
	host := os.Getenv("VILLREIN_TEST_DB_HOST")
	if host == "" {
		t.Skip("VILLREIN_TEST_DB_HOST not set")
	}

	cfg := config.Config{
		Storage: config.StorageConfig{Backend: config.BackendPostgres},
		Database: config.DatabaseConfig{
			Host:         host,
			Port:         5432,
			User:         "postgres",
			Password:     "postgres",
			Database:     "villrein_test",
			MaxOpenConns: 2,
			MaxIdleConns: 1,
			SSLMode:      "disable",
		},
	}

	ctx := context.Background()
	store, release, err := OpenStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer release()

	require.NoError(t, store.SaveSnapshot(ctx, "years", []string{"2023"}))
	_, err = store.ListYears(ctx)
	assert.NoError(t, err)
}
