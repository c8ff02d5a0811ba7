// Package httpapi exposes collection runs over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/infrastructure/storage"
	"EvidenceCollector/internal/ports"
)

// Collector runs one collection to completion.
type Collector interface {
	Collect(ctx context.Context, target domain.Target) domain.CollectionResult
}

// Server routes collection requests to the use case and repository.
type Server struct {
	router     *chi.Mux
	collector  Collector
	repository ports.ResultRepository
	logger     *slog.Logger
}

// NewServer registers routes and middleware.
func NewServer(collector Collector, repository ports.ResultRepository, logger *slog.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		collector:  collector,
		repository: repository,
		logger:     logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/collections", s.handleCreateCollection)
	s.router.Get("/collections/{runID}", s.handleGetCollection)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type createRequest struct {
	Company       string `json:"company"`
	Domain        string `json:"domain"`
	CompanyDomain string `json:"company_domain"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateCollection runs the collection synchronously. The run is
// reported even when storing it fails.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Company = strings.TrimSpace(req.Company)
	if req.Company == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	result := s.collector.Collect(r.Context(), domain.Target{
		Company:       req.Company,
		Domain:        strings.TrimSpace(req.Domain),
		CompanyDomain: strings.TrimSpace(req.CompanyDomain),
	})

	if s.repository != nil {
		if err := s.repository.SaveResult(r.Context(), result); err != nil && s.logger != nil {
			s.logger.Error("persist collection failed",
				"run_id", result.RunID,
				"request_id", middleware.GetReqID(r.Context()),
				"error", err)
		}
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	if s.repository == nil {
		writeError(w, http.StatusNotFound, "no repository configured")
		return
	}

	result, err := s.repository.GetResult(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load collection failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
