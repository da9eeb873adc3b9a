// Package docservice coordinates the managed directory, the search index,
// and document templates behind one API used by both the HTTP handlers and
// the MCP tools.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mkarlsen/planvault/internal/apperr"
	"github.com/mkarlsen/planvault/internal/catalog"
	"github.com/mkarlsen/planvault/internal/index"
	"github.com/mkarlsen/planvault/internal/templates"
)

var sprintIDRe = regexp.MustCompile(`^M\d{2}_S\d{2}$`)

// RecordParams carries the inputs for recording a reference document.
type RecordParams struct {
	Category string `json:"category"`
	Target   string `json:"target"`
	Content  string `json:"content"`
}

// RecordResult describes a recorded document.
type RecordResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Path     string `json:"path"`
}

// InitParams carries the inputs for project initialization.
type InitParams struct {
	Project     string `json:"project"`
	Description string `json:"description"`
}

// InitResult reports which scaffold documents were newly created and which
// existing ones were replaced with fresh templates.
type InitResult struct {
	Created     []string `json:"created"`
	Overwritten []string `json:"overwritten"`
}

// SprintResult is the content of one sprint document.
type SprintResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// TimeInfo is the current time in several renderings.
type TimeInfo struct {
	UTC         string `json:"utc"`
	Local       string `json:"local"`
	EpochSecs   int64  `json:"epoch_seconds"`
	EpochMillis int64  `json:"epoch_millis"`
}

// Service exposes the document operations.
type Service struct {
	mgr    *catalog.Manager
	db     *index.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a document service. db may be nil, in which case search
// is unavailable and indexing is skipped.
func NewService(mgr *catalog.Manager, db *index.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{mgr: mgr, db: db, logger: logger, now: time.Now}
}

// Manager exposes the underlying catalog manager.
func (s *Service) Manager() *catalog.Manager {
	return s.mgr
}

// List returns the documents in the managed directory, filtered by category.
// An empty filter means all documents.
func (s *Service) List(_ context.Context, filter string) ([]catalog.DocumentRecord, error) {
	c := catalog.Category(filter)
	if filter == "" {
		c = catalog.CategoryAll
	}
	if !catalog.ValidFilter(c) {
		return nil, fmt.Errorf("unknown category filter %q: %w", filter, apperr.ErrValidation)
	}
	return s.mgr.List(c)
}

// ShowPlan returns the PLAN.md content.
func (s *Service) ShowPlan(ctx context.Context) (string, error) {
	return s.readCore(ctx, catalog.PlanFile)
}

// ShowCurrent returns the CURRENT.md content.
func (s *Service) ShowCurrent(ctx context.Context) (string, error) {
	return s.readCore(ctx, catalog.CurrentFile)
}

func (s *Service) readCore(_ context.Context, name string) (string, error) {
	content, err := s.mgr.Read(name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("%s missing, run project initialization first: %w", name, apperr.ErrCoreMissing)
		}
		return "", err
	}
	return content, nil
}

// Record validates and persists a reference document under a generated name,
// then indexes it best-effort.
func (s *Service) Record(_ context.Context, p RecordParams) (*RecordResult, error) {
	c := catalog.Category(p.Category)
	if !catalog.Recordable(c) {
		return nil, fmt.Errorf("category %q is not recordable: %w", p.Category, apperr.ErrValidation)
	}

	name, err := s.mgr.GenerateName(c, p.Target)
	if err != nil {
		return nil, err
	}

	content := p.Content
	if strings.TrimSpace(content) == "" {
		content = s.defaultContent(c, p.Target)
	}

	abs, err := s.mgr.Write(name, content)
	if err != nil {
		return nil, err
	}
	s.indexDocument(name, content)

	s.logger.Info("document recorded",
		slog.String("name", name),
		slog.String("category", string(c)))

	return &RecordResult{Name: name, Category: string(c), Path: abs}, nil
}

func (s *Service) defaultContent(c catalog.Category, target string) string {
	date := s.now()
	switch c {
	case catalog.CategoryCode:
		return templates.CodeRef(templates.CodeRefParams{Target: target, Date: date})
	case catalog.CategoryOpinion:
		return templates.Opinion(templates.OpinionParams{Target: target, Date: date})
	default:
		return templates.DocRef(templates.DocRefParams{Target: target, Date: date})
	}
}

// InitProject scaffolds the core documents and the first sprint. Calling it
// again does not error: existing scaffold documents are replaced with fresh
// templates through the manager's backup cycle, so re-initialization always
// yields a deterministic scaffold.
func (s *Service) InitProject(_ context.Context, p InitParams) (*InitResult, error) {
	date := s.now()
	scaffold := []struct {
		name    string
		content string
	}{
		{catalog.PlanFile, templates.PlanRoot(templates.PlanRootParams{Project: p.Project, Description: p.Description, Date: date})},
		{catalog.CurrentFile, templates.StatusRoot(templates.StatusRootParams{Project: p.Project, Date: date})},
		{"M01_S01.project_setup.md", templates.Sprint(templates.SprintParams{Title: "Project Setup", Date: date})},
	}

	res := &InitResult{}
	for _, doc := range scaffold {
		existed := s.mgr.FileExists(doc.name)
		if _, err := s.mgr.Write(doc.name, doc.content); err != nil {
			return nil, err
		}
		s.indexDocument(doc.name, doc.content)
		if existed {
			res.Overwritten = append(res.Overwritten, doc.name)
		} else {
			res.Created = append(res.Created, doc.name)
		}
	}

	s.logger.Info("project initialized",
		slog.Int("created", len(res.Created)),
		slog.Int("overwritten", len(res.Overwritten)))
	return res, nil
}

// QuerySprint returns the sprint document matching an M##_S## identifier.
// When the sprint does not exist, the error lists the sprints that do.
func (s *Service) QuerySprint(ctx context.Context, id string) (*SprintResult, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !sprintIDRe.MatchString(id) {
		return nil, fmt.Errorf("sprint id %q must match M##_S##: %w", id, apperr.ErrValidation)
	}

	docs, err := s.mgr.List(catalog.CategorySprint)
	if err != nil {
		return nil, err
	}

	var available []string
	for _, d := range docs {
		available = append(available, d.Name)
		if strings.HasPrefix(d.Name, id+".") {
			content, err := s.mgr.Read(d.Name)
			if err != nil {
				return nil, err
			}
			return &SprintResult{ID: id, Name: d.Name, Content: content}, nil
		}
	}

	if len(available) == 0 {
		return nil, fmt.Errorf("sprint %s not found, no sprints recorded yet: %w", id, apperr.ErrNotFound)
	}
	return nil, fmt.Errorf("sprint %s not found, available: %s: %w",
		id, strings.Join(available, ", "), apperr.ErrNotFound)
}

// Status summarizes the managed directory.
func (s *Service) Status(_ context.Context) (catalog.Status, error) {
	return s.mgr.GetStatus()
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, fmt.Errorf("search index not configured: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query: %w", apperr.ErrValidation)
	}
	return s.db.Search(query, limit)
}

// Now reports the current time in UTC, local, and epoch renderings.
func (s *Service) Now() TimeInfo {
	t := s.now()
	return TimeInfo{
		UTC:         t.UTC().Format(time.RFC3339),
		Local:       t.Local().Format("2006-01-02 15:04:05 MST"),
		EpochSecs:   t.Unix(),
		EpochMillis: t.UnixMilli(),
	}
}

// indexDocument upserts one document into the search index, best-effort.
func (s *Service) indexDocument(name, content string) {
	if s.db == nil {
		return
	}
	if err := index.IndexDocument(s.db, name, content); err != nil {
		s.logger.Warn("index update failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
	}
}
