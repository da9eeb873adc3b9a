// Package catalog owns the managed plan directory: it lists, categorizes,
// reads, and writes plan documents, routing every path-accepting operation
// through the security validator before any disk I/O.
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/planvault/internal/apperr"
	"github.com/mkarlsen/planvault/internal/security"
)

// Core document names, produced only by project initialization.
const (
	PlanFile    = "PLAN.md"
	CurrentFile = "CURRENT.md"
)

// DocumentRecord describes one plan document. Every field is derived from
// the filesystem at query time; nothing is cached between calls.
type DocumentRecord struct {
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	LineCount int       `json:"line_count"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
}

// Status summarizes the managed directory.
type Status struct {
	HasCore     bool             `json:"has_core"`
	Total       int              `json:"total"`
	ByCategory  map[Category]int `json:"by_category"`
	LastUpdated time.Time        `json:"last_updated"`
}

// Manager mediates all I/O against the managed directory.
type Manager struct {
	root      string
	validator *security.Validator
	logger    *slog.Logger

	// writeFile is swappable in tests to force a commit failure and
	// exercise the backup/restore path.
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewManager creates a Manager for root. The directory itself is created
// lazily on the first write.
func NewManager(root string, policy security.Policy, logger *slog.Logger) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: resolve root: %w", err)
	}
	v, err := security.New(abs, policy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		root:      abs,
		validator: v,
		logger:    logger,
		writeFile: os.WriteFile,
	}, nil
}

// Root returns the managed directory path.
func (m *Manager) Root() string { return m.root }

// EnsureDirectory creates the managed directory (and parents) if absent.
func (m *Manager) EnsureDirectory() error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("catalog: create plan directory: %w", err)
	}
	return nil
}

// FileExists reports whether name resolves to an existing file inside the
// managed directory. Paths that fail validation simply do not exist.
func (m *Manager) FileExists(name string) bool {
	abs, err := m.validator.ValidatePath(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// HasCoreDocuments reports whether both PLAN.md and CURRENT.md exist.
func (m *Manager) HasCoreDocuments() bool {
	return m.FileExists(PlanFile) && m.FileExists(CurrentFile)
}

// List enumerates .md documents, optionally filtered by category, ordered
// by category rank and then name. An unreadable entry is logged and
// skipped; the listing is best-effort over the directory, not
// all-or-nothing.
func (m *Manager) List(filter Category) ([]DocumentRecord, error) {
	if err := m.EnsureDirectory(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("catalog: list plan directory: %w", err)
	}

	var out []DocumentRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cat := Categorize(e.Name())
		if filter != CategoryAll && cat != filter {
			continue
		}
		info, err := e.Info()
		if err != nil {
			m.logger.Warn("catalog: stat failed, skipping entry",
				slog.String("name", e.Name()), slog.String("error", err.Error()))
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.root, e.Name()))
		if err != nil {
			m.logger.Warn("catalog: read failed, skipping entry",
				slog.String("name", e.Name()), slog.String("error", err.Error()))
			continue
		}
		out = append(out, DocumentRecord{
			Name:      e.Name(),
			Category:  cat,
			LineCount: countLines(data),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i].Category), rank(out[j].Category)
		if ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetStatus derives a summary from the current directory contents.
// LastUpdated is the newest document modification time, or now when the
// directory holds no documents.
func (m *Manager) GetStatus() (Status, error) {
	docs, err := m.List(CategoryAll)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		HasCore:    m.HasCoreDocuments(),
		Total:      len(docs),
		ByCategory: make(map[Category]int),
	}
	for _, d := range docs {
		st.ByCategory[d.Category]++
		if d.ModTime.After(st.LastUpdated) {
			st.LastUpdated = d.ModTime
		}
	}
	if st.LastUpdated.IsZero() {
		st.LastUpdated = time.Now()
	}
	return st, nil
}

// Read returns the text of the document at name. Content is validated on
// the way out as well as on the way in: a file edited out of band must
// still satisfy the policy before being served.
func (m *Manager) Read(name string) (string, error) {
	abs, err := m.validator.ValidatePath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", name, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("catalog: %s is not accessible: %w", name, err)
	}
	if err := m.validator.ValidateContent(string(data)); err != nil {
		return "", err
	}
	return string(data), nil
}

// Write validates name and content as one operation and writes the
// document. An existing target is first copied to a backup sibling; on
// commit failure the backup is renamed back into place (best-effort, a
// restore failure is logged and the original error still propagates), and
// on success the backup is removed. The write either fully succeeds with
// no backup residue or fails with the previous content restored.
func (m *Manager) Write(name, content string) (string, error) {
	if err := m.EnsureDirectory(); err != nil {
		return "", err
	}
	abs, err := m.validator.ValidateOperation(name, content)
	if err != nil {
		return "", err
	}

	backup := ""
	if _, statErr := os.Stat(abs); statErr == nil {
		backup = backupName(abs)
		if err := copyFile(abs, backup); err != nil {
			return "", fmt.Errorf("catalog: back up %s: %w", name, err)
		}
	}

	if err := m.writeFile(abs, []byte(content), 0o644); err != nil {
		if backup != "" {
			if restoreErr := os.Rename(backup, abs); restoreErr != nil {
				m.logger.Warn("catalog: restore from backup failed",
					slog.String("name", name),
					slog.String("backup", backup),
					slog.String("error", restoreErr.Error()))
			}
		}
		return "", fmt.Errorf("catalog: write %s: %w", name, err)
	}

	if backup != "" {
		if rmErr := os.Remove(backup); rmErr != nil {
			m.logger.Warn("catalog: remove backup failed",
				slog.String("backup", backup), slog.String("error", rmErr.Error()))
		}
	}
	return abs, nil
}

// backupName appends a timestamp plus a random token. The token keeps two
// near-simultaneous overwrites of the same document from colliding on one
// backup name, and the suffix keeps backups out of .md listings.
func backupName(abs string) string {
	return fmt.Sprintf("%s.bak.%s.%s",
		abs, time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
}

// countLines splits on newline and counts the segments, matching how the
// line numbers shown by a text editor come out.
func countLines(data []byte) int {
	return len(strings.Split(string(data), "\n"))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
