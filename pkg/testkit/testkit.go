// Package testkit holds test fixtures for the inventory: throwaway sqlite
// databases and product stores over them.
//
//	func TestSomething(t *testing.T) {
//	    st := testkit.NewStore(t, store.Options{})
//	    ...
//	}
//
// Everything is released through t.Cleanup.
package testkit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/store"
	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/logger"
)

// DatabaseConfig describes a fresh database file under t.TempDir().
func DatabaseConfig(t testing.TB) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "inventory.db"),
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

// OpenDB opens an empty database that is closed when the test ends.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(DatabaseConfig(t))
	require.NoError(t, err, "testkit: open database")
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewStore returns a store over a fresh database. A nil logger in opts is
// replaced by one that discards.
func NewStore(t testing.TB, opts store.Options) *store.Store {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return store.New(OpenDB(t), opts)
}
