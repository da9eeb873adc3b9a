// Package testutil provides shared test helpers for setting up managed
// directories and index databases.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/mkarlsen/planvault/internal/catalog"
	"github.com/mkarlsen/planvault/internal/index"
	"github.com/mkarlsen/planvault/internal/security"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// DB creates a temporary SQLite index that is automatically cleaned up.
func DB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "planvault-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Manager creates a catalog manager over a temporary directory with the
// default validation policy.
func Manager(t *testing.T) *catalog.Manager {
	t.Helper()
	mgr, err := catalog.NewManager(t.TempDir(), security.DefaultPolicy(), Logger())
	if err != nil {
		t.Fatal(err)
	}
	return mgr
}
