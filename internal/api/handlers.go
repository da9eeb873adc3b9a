package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/planvault/internal/apperr"
	"github.com/mkarlsen/planvault/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrCoreMissing):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List documents with optional category filtering
//	@Tags			documents
//	@Produce		json
//	@Param			category	query		string	false	"Filter by category"	Enums(all, sprint, doc, code, opinion)
//	@Success		200			{object}	DocumentListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocument handles GET /api/documents/{name}.
//
//	@Summary		Get a single document by name
//	@Tags			documents
//	@Produce		json
//	@Param			name	path		string	true	"Document file name"
//	@Success		200		{object}	DocumentResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{name} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	content, err := h.svc.Manager().Read(name)
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Name: name, Content: content})
}

// RecordDocument handles POST /api/documents.
//
//	@Summary		Record a reference document under a generated name
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordRequest	true	"Document to record"
//	@Success		201		{object}	RecordResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) RecordDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2<<20)
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Category == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("category and target are required"))
		return
	}
	res, err := h.svc.Record(r.Context(), docservice.RecordParams{
		Category: req.Category,
		Target:   req.Target,
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, "record document", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// InitProject handles POST /api/init.
//
//	@Summary		Scaffold the core project documents
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InitRequest	true	"Project metadata"
//	@Success		200		{object}	InitResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/init [post]
func (h *Handler) InitProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.InitProject(r.Context(), docservice.InitParams{
		Project:     req.Project,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, "init project", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ShowPlan handles GET /api/plan.
//
//	@Summary		Get the project plan document
//	@Tags			project
//	@Produce		json
//	@Success		200	{object}	DocumentResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plan [get]
func (h *Handler) ShowPlan(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.ShowPlan(r.Context())
	if err != nil {
		writeError(w, "show plan", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Name: "PLAN.md", Content: content})
}

// ShowCurrent handles GET /api/current.
//
//	@Summary		Get the current status document
//	@Tags			project
//	@Produce		json
//	@Success		200	{object}	DocumentResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/current [get]
func (h *Handler) ShowCurrent(w http.ResponseWriter, r *http.Request) {
	content, err := h.svc.ShowCurrent(r.Context())
	if err != nil {
		writeError(w, "show current", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Name: "CURRENT.md", Content: content})
}

// QuerySprint handles GET /api/sprints/{id}.
//
//	@Summary		Get a sprint document by its M##_S## identifier
//	@Tags			project
//	@Produce		json
//	@Param			id	path		string	true	"Sprint identifier"	example(M01_S02)
//	@Success		200	{object}	docservice.SprintResult
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sprints/{id} [get]
func (h *Handler) QuerySprint(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.QuerySprint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "query sprint", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Status handles GET /api/status.
//
//	@Summary		Summarize the managed directory
//	@Tags			project
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Now handles GET /api/now.
//
//	@Summary		Get the current server time
//	@Tags			time
//	@Produce		json
//	@Success		200	{object}	TimeResponse
//	@Security		BearerAuth
//	@Router			/now [get]
func (h *Handler) Now(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Now())
}
