package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkarlsen/planvault/internal/security"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), security.DefaultPolicy(), discardLogger())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seed(t *testing.T, m *Manager, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(m.Root(), n), []byte("# seed\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Simple Target", "simple_target"},
		{"  padded  ", "padded"},
		{"Mixed CASE-and-dash", "mixed_case-and-dash"},
		{"punct!@#uation", "punctuation"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"many   spaces", "many_spaces"},
		{"___", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGenerateNameDocSequence(t *testing.T) {
	m := testManager(t)

	name, err := m.GenerateName(CategoryDoc, "first target")
	if err != nil {
		t.Fatalf("GenerateName: %v", err)
	}
	if name != "DOCREF_001.first_target.md" {
		t.Errorf("name = %q", name)
	}

	// Sequence is max+1, not count+1: a gap at 002 must not be reused.
	seed(t, m, "DOCREF_001.x.md", "DOCREF_003.x.md")
	name, err = m.GenerateName(CategoryDoc, "next")
	if err != nil {
		t.Fatalf("GenerateName: %v", err)
	}
	if name != "DOCREF_004.next.md" {
		t.Errorf("name = %q, want DOCREF_004.next.md", name)
	}
}

func TestGenerateNameOpinionSequenceIndependent(t *testing.T) {
	m := testManager(t)
	seed(t, m, "DOCREF_005.x.md", "OPINIONS_002.y.md")

	name, err := m.GenerateName(CategoryOpinion, "hot take")
	if err != nil {
		t.Fatalf("GenerateName: %v", err)
	}
	if name != "OPINIONS_003.hot_take.md" {
		t.Errorf("name = %q, want OPINIONS_003.hot_take.md", name)
	}
}

func TestGenerateNameCodeNoSequence(t *testing.T) {
	m := testManager(t)

	first, err := m.GenerateName(CategoryCode, "auth module")
	if err != nil {
		t.Fatalf("GenerateName: %v", err)
	}
	seed(t, m, first)

	// Same target produces the same name: code refs overwrite by design.
	second, err := m.GenerateName(CategoryCode, "auth module")
	if err != nil {
		t.Fatalf("GenerateName: %v", err)
	}
	if first != second || first != "CODEREF_auth_module.md" {
		t.Errorf("names = %q, %q", first, second)
	}
}

func TestGenerateNameRejects(t *testing.T) {
	m := testManager(t)
	if _, err := m.GenerateName(CategoryDoc, "!!!"); err == nil {
		t.Error("empty slug should fail")
	}
	if _, err := m.GenerateName(CategorySprint, "target"); err == nil {
		t.Error("sprint is not a recordable category")
	}
	if _, err := m.GenerateName(CategoryCore, "target"); err == nil {
		t.Error("core is not a recordable category")
	}
}
