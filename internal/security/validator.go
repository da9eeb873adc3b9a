// Package security enforces the fixed file-access policy for the managed
// plan directory: path containment, filename shape, and content and size
// limits. Every filesystem touch in the catalog routes through a Validator.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mkarlsen/planvault/internal/apperr"
)

// Policy holds the limits applied to every file operation. A Policy is
// fixed at construction time; callers cannot loosen it per call.
type Policy struct {
	MaxFileSize       int64
	MaxContentLength  int
	MaxFilenameLength int
	AllowedExtensions []string
}

// DefaultPolicy returns the standard limits for plan documents.
func DefaultPolicy() Policy {
	return Policy{
		MaxFileSize:       1 << 20,
		MaxContentLength:  512 << 10,
		MaxFilenameLength: 200,
		AllowedExtensions: []string{".md", ".json", ".txt"},
	}
}

// forbiddenPattern tags a content pattern with a human-readable name so
// rejections tell the caller what was matched, not just that something was.
type forbiddenPattern struct {
	name string
	re   *regexp.Regexp
}

var forbiddenPatterns = []forbiddenPattern{
	{"script tag", regexp.MustCompile(`(?i)<\s*script\b`)},
	{"javascript: URI", regexp.MustCompile(`(?i)javascript:`)},
	{"iframe tag", regexp.MustCompile(`(?i)<\s*iframe\b`)},
	{"inline event handler", regexp.MustCompile(`(?i)\bon\w+\s*=`)},
	{"eval call", regexp.MustCompile(`(?i)\beval\s*\(`)},
}

var safeFilenameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Validator checks candidate paths and content against an immutable Policy
// and a trusted root. It performs no I/O and holds no mutable state.
type Validator struct {
	root   string
	policy Policy
}

// New creates a Validator whose containment root is root.
func New(root string, policy Policy) (*Validator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("security: resolve root: %w", err)
	}
	return &Validator{root: abs, policy: policy}, nil
}

// Root returns the trusted root directory.
func (v *Validator) Root() string { return v.root }

// ValidatePath resolves candidate against the trusted root and returns the
// absolute path. It rejects anything that could name a file outside the
// root: traversal segments, home-directory shorthand, absolute paths, and
// filenames whose characters or extension fall outside the policy.
func (v *Validator) ValidatePath(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" {
		return "", fmt.Errorf("%w: path must be a non-empty string", apperr.ErrValidation)
	}
	if len(candidate) > v.policy.MaxFilenameLength {
		return "", fmt.Errorf("%w: path exceeds %d characters", apperr.ErrValidation, v.policy.MaxFilenameLength)
	}
	if filepath.IsAbs(candidate) {
		return "", fmt.Errorf("%w: absolute paths are not allowed: %s", apperr.ErrValidation, candidate)
	}

	cleaned := filepath.Clean(candidate)
	if strings.Contains(cleaned, "..") || strings.Contains(cleaned, "~") {
		return "", fmt.Errorf("%w: path traversal is not allowed: %s", apperr.ErrValidation, candidate)
	}

	abs, err := filepath.Abs(filepath.Join(v.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("security: resolve path: %w", err)
	}
	if abs != v.root && !strings.HasPrefix(abs, v.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: path escapes the managed directory: %s", apperr.ErrValidation, candidate)
	}

	name := filepath.Base(abs)
	if !safeFilenameRe.MatchString(name) {
		return "", fmt.Errorf("%w: filename may only contain letters, digits, '.', '_' and '-': %s", apperr.ErrValidation, name)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(v.policy.AllowedExtensions, ext) {
		return "", fmt.Errorf("%w: extension %q is not allowed (want one of %s)",
			apperr.ErrValidation, ext, strings.Join(v.policy.AllowedExtensions, ", "))
	}

	return abs, nil
}

// ValidateContent rejects content that is too long, contains a null byte,
// or matches any forbidden pattern.
func (v *Validator) ValidateContent(content string) error {
	// The length limit is in characters, not bytes; multi-byte UTF-8
	// content must not be rejected early.
	if utf8.RuneCountInString(content) > v.policy.MaxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", apperr.ErrValidation, v.policy.MaxContentLength)
	}
	if strings.ContainsRune(content, '\x00') {
		return fmt.Errorf("%w: content contains a null byte; binary content is not allowed", apperr.ErrValidation)
	}
	for _, p := range forbiddenPatterns {
		if p.re.MatchString(content) {
			return fmt.Errorf("%w: content contains a forbidden %s", apperr.ErrValidation, p.name)
		}
	}
	return nil
}

// ValidateSize rejects negative sizes and sizes over the policy limit.
func (v *Validator) ValidateSize(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: size must be non-negative", apperr.ErrValidation)
	}
	if n > v.policy.MaxFileSize {
		return fmt.Errorf("%w: size %d exceeds the %d byte limit", apperr.ErrValidation, n, v.policy.MaxFileSize)
	}
	return nil
}

// ValidateOperation composes path, content, and size checks in order and
// returns the validated absolute path only when all three pass.
func (v *Validator) ValidateOperation(candidate, content string) (string, error) {
	abs, err := v.ValidatePath(candidate)
	if err != nil {
		return "", err
	}
	if err := v.ValidateContent(content); err != nil {
		return "", err
	}
	if err := v.ValidateSize(int64(len(content))); err != nil {
		return "", err
	}
	return abs, nil
}
