package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkarlsen/planvault/internal/apperr"
)

var (
	slugStripRe  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe  = regexp.MustCompile(`\s+`)
	slugRepeatRe = regexp.MustCompile(`_+`)

	docSeqRe     = regexp.MustCompile(`^DOCREF_(\d{3})\.`)
	opinionSeqRe = regexp.MustCompile(`^OPINIONS_(\d{3})\.`)
)

// Slug normalizes free text into a filesystem-safe filename fragment:
// lowercase, strip everything outside [a-z0-9\s-], whitespace runs become
// single underscores, repeats collapse, leading/trailing underscores drop.
func Slug(s string) string {
	s = strings.ToLower(s)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "_")
	s = slugRepeatRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// GenerateName produces the canonical filename for a new categorized
// record. Doc and opinion names embed a three-digit sequence derived as
// max-existing+1 over the category; the counter is never stored. Code
// names carry no sequence, so recording the same target twice overwrites
// the earlier record.
//
// Two concurrent callers can observe the same max and pick the same
// sequence number; the write path's backup/restore keeps that from
// corrupting files but the loser's content is replaced.
func (m *Manager) GenerateName(c Category, target string) (string, error) {
	slug := Slug(target)
	if slug == "" {
		return "", fmt.Errorf("%w: target %q produces an empty name", apperr.ErrValidation, target)
	}

	switch c {
	case CategoryCode:
		return fmt.Sprintf("CODEREF_%s.md", slug), nil
	case CategoryDoc:
		next, err := m.nextSequence(docSeqRe)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("DOCREF_%03d.%s.md", next, slug), nil
	case CategoryOpinion:
		next, err := m.nextSequence(opinionSeqRe)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("OPINIONS_%03d.%s.md", next, slug), nil
	default:
		return "", fmt.Errorf("%w: category %q does not support generated names", apperr.ErrValidation, c)
	}
}

// nextSequence scans the managed directory for filenames matching re and
// returns the highest captured number plus one, or 1 when none match.
func (m *Manager) nextSequence(re *regexp.Regexp) (int, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("catalog: scan for sequence: %w", err)
	}

	maxSeen := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := re.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		if n, convErr := strconv.Atoi(match[1]); convErr == nil && n > maxSeen {
			maxSeen = n
		}
	}
	return maxSeen + 1, nil
}
