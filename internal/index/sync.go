package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/mkarlsen/planvault/internal/catalog"
)

// Checksum returns the hex-encoded SHA-256 digest of content.
func Checksum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// IndexDocument upserts one document into the index, deriving its category
// from the name and its title from the first markdown heading.
func IndexDocument(db *DB, name, content string) error {
	row := DocumentRow{
		Name:      name,
		Category:  string(catalog.Categorize(name)),
		Title:     deriveTitle(name, content),
		Checksum:  Checksum(content),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertDocument(row, content)
}

// Sync walks the managed directory and brings the index up to date:
//   - new/changed documents are upserted
//   - documents removed from disk are deleted from the index
func Sync(db *DB, mgr *catalog.Manager, logger *slog.Logger) error {
	docs, err := mgr.List(catalog.CategoryAll)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		disk[d.Name] = struct{}{}

		content, err := mgr.Read(d.Name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("name", d.Name), slog.String("error", err.Error()))
			continue
		}
		if checksums[d.Name] == Checksum(content) {
			continue
		}
		if err := IndexDocument(db, d.Name, content); err != nil {
			logger.Warn("sync: index failed", slog.String("name", d.Name), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("name", d.Name))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if err := db.DeleteDocument(name); err != nil {
				logger.Warn("sync: delete failed", slog.String("name", name), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("name", name))
			}
		}
	}

	return nil
}

// deriveTitle extracts the first level-one markdown heading, falling back to
// the file name without its extension.
func deriveTitle(name, content string) string {
	for _, line := range strings.Split(content, "\n") {
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			if title := strings.TrimSpace(rest); title != "" {
				return title
			}
		}
	}
	return strings.TrimSuffix(name, ".md")
}
