package storage

import (
	"context"
	"testing"
	"time"

	"github.com/split-ledger/internal/config"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// setupTestDB connects to the local development database, skipping the test
// when it is unavailable.
func setupTestDB(t *testing.T) *PostgresDB {
	t.Helper()

	cfg := &config.PostgresConfig{
		Host:           "localhost",
		Port:           "5432",
		Database:       "split_ledger",
		User:           "ledger",
		Password:       "ledger_dev_password",
		MaxConnections: 10,
	}

	db, err := NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}
