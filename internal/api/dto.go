package api

import (
	"github.com/mkarlsen/planvault/internal/catalog"
	"github.com/mkarlsen/planvault/internal/docservice"
)

// RecordRequest is the request body for recording a reference document.
type RecordRequest struct {
	Category string `json:"category" example:"doc" validate:"required"`
	Target   string `json:"target" example:"API Design Notes" validate:"required"`
	Content  string `json:"content,omitempty" example:"# API Design Notes"`
}

// InitRequest is the request body for project initialization.
type InitRequest struct {
	Project     string `json:"project" example:"Planvault"`
	Description string `json:"description,omitempty" example:"Project documentation vault"`
}

// DocumentRecord is a single listing entry (aliased from the domain layer).
type DocumentRecord = catalog.DocumentRecord

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []DocumentRecord `json:"documents" validate:"required"`
	Total     int              `json:"total" example:"7" validate:"required"`
}

// DocumentResponse carries one document's content.
type DocumentResponse struct {
	Name    string `json:"name" example:"PLAN.md" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Name     string `json:"name" example:"DOCREF_001.api_design.md" validate:"required"`
	Category string `json:"category" example:"doc" validate:"required"`
	Title    string `json:"title" example:"API Design Notes" validate:"required"`
	Snippet  string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// RecordResult is returned after a successful record (aliased from the domain layer).
type RecordResult = docservice.RecordResult

// InitResult is returned after project initialization (aliased from the domain layer).
type InitResult = docservice.InitResult

// StatusResponse summarizes the managed directory (aliased from the domain layer).
type StatusResponse = catalog.Status

// TimeResponse is the current server time (aliased from the domain layer).
type TimeResponse = docservice.TimeInfo
