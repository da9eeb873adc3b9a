package index

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mkarlsen/planvault/internal/catalog"
	"github.com/mkarlsen/planvault/internal/security"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "planvault-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEnv(t *testing.T) (*DB, *catalog.Manager) {
	t.Helper()
	db := testDB(t)
	mgr, err := catalog.NewManager(t.TempDir(), security.DefaultPolicy(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return db, mgr
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{
		Name:      "DOCREF_001.hello.md",
		Category:  "doc",
		Title:     "Hello",
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertDocument(row, "# Hello\n\nBody text.\n"); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.GetChecksum("DOCREF_001.hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Name: "del.md", Category: "doc", Checksum: "x", UpdatedAt: time.Now()}, "body")

	if err := db.DeleteDocument("del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Error("checksum should be empty after delete")
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Name: "a.md", Category: "doc", Checksum: "1", UpdatedAt: time.Now()}, "a")
	_ = db.UpsertDocument(DocumentRow{Name: "b.md", Category: "code", Checksum: "2", UpdatedAt: time.Now()}, "b")

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(all) != 2 || all["a.md"] != "1" || all["b.md"] != "2" {
		t.Errorf("AllChecksums = %v", all)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Name: "DOCREF_001.auth.md", Category: "doc", Title: "Auth Notes", Checksum: "1", UpdatedAt: time.Now()},
		"# Auth Notes\n\nTokens rotate hourly.\n")
	_ = db.UpsertDocument(DocumentRow{Name: "CODEREF_db.md", Category: "code", Title: "DB Layer", Checksum: "2", UpdatedAt: time.Now()},
		"# DB Layer\n\nConnection pooling details.\n")

	results, err := db.Search("rotate", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "DOCREF_001.auth.md" || results[0].Category != "doc" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestSearchLimit(t *testing.T) {
	db := testDB(t)
	for _, n := range []string{"DOCREF_001.a.md", "DOCREF_002.b.md", "DOCREF_003.c.md"} {
		_ = db.UpsertDocument(DocumentRow{Name: n, Category: "doc", Checksum: n, UpdatedAt: time.Now()}, "shared keyword everywhere")
	}
	results, err := db.Search("keyword", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected limit of 2, got %d", len(results))
	}
}

func TestIndexDocumentDerivesFields(t *testing.T) {
	db := testDB(t)
	if err := IndexDocument(db, "OPINIONS_001.style.md", "# Style Call\n\nTabs over spaces.\n"); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	results, err := db.Search("tabs", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Style Call" || results[0].Category != "opinion" {
		t.Errorf("results = %+v", results)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name, content, want string
	}{
		{"x.md", "# Heading\n\nbody", "Heading"},
		{"x.md", "no heading here", "x"},
		{"x.md", "## sub only\n# Late Heading\n", "Late Heading"},
		{"x.md", "#notaheading\n", "x"},
	}
	for _, c := range cases {
		if got := deriveTitle(c.name, c.content); got != c.want {
			t.Errorf("deriveTitle(%q, %q) = %q, want %q", c.name, c.content, got, c.want)
		}
	}
}

func TestSyncIndexesAndRemovesStale(t *testing.T) {
	db, mgr := testEnv(t)
	logger := slog.New(slog.DiscardHandler)

	if _, err := mgr.Write("DOCREF_001.a.md", "# A\n\nalpha content\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Write("PLAN.md", "# Plan\n"); err != nil {
		t.Fatal(err)
	}
	// A stale entry whose file never existed on disk.
	_ = db.UpsertDocument(DocumentRow{Name: "DOCREF_099.gone.md", Category: "doc", Checksum: "old", UpdatedAt: time.Now()}, "old")

	if err := Sync(db, mgr, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := all["DOCREF_099.gone.md"]; ok {
		t.Error("stale entry should have been removed")
	}
	if _, ok := all["DOCREF_001.a.md"]; !ok {
		t.Error("on-disk document should be indexed")
	}
	if _, ok := all["PLAN.md"]; !ok {
		t.Error("core document should be indexed")
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	db, mgr := testEnv(t)
	logger := slog.New(slog.DiscardHandler)

	content := "# A\n\nstable\n"
	if _, err := mgr.Write("DOCREF_001.a.md", content); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, mgr, logger); err != nil {
		t.Fatal(err)
	}
	var before string
	if err := db.conn.QueryRow(`SELECT updated_at FROM documents WHERE name = ?`, "DOCREF_001.a.md").Scan(&before); err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := Sync(db, mgr, logger); err != nil {
		t.Fatal(err)
	}
	var after string
	if err := db.conn.QueryRow(`SELECT updated_at FROM documents WHERE name = ?`, "DOCREF_001.a.md").Scan(&after); err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Error("unchanged document should not be re-upserted")
	}
}

func TestChecksumStable(t *testing.T) {
	if Checksum("abc") != Checksum("abc") {
		t.Error("checksum must be deterministic")
	}
	if Checksum("abc") == Checksum("abd") {
		t.Error("different content must yield different checksums")
	}
	if len(Checksum("abc")) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(Checksum("abc")))
	}
}
