// Package chi is the HTTP transport: routing, request decoding, and the
// domain-error-to-status mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/domain/search/request"
	"github.com/Toolenaar/decky/internal/domain/search/result"
	"github.com/Toolenaar/decky/internal/logger"
	"github.com/Toolenaar/decky/internal/sync"
)

// maxSyncBatchSize caps the ids accepted by the admin sync endpoint.
const maxSyncBatchSize = 500

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeEmbeddingError   = "embedding_provider_error"
	codeNotConfigured    = "not_configured"
	codeInternalError    = "internal_error"
)

// searcher is the slice of the search service this transport needs.
type searcher interface {
	Search(ctx context.Context, req *request.Search) (*result.Page, error)
	Suggest(ctx context.Context, req *request.Suggestion) ([]result.Suggestion, error)
	Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error)
}

// cardReader fetches single indexed documents.
type cardReader interface {
	Get(ctx context.Context, id string) (*card.Document, error)
}

// syncer runs on-demand catalog-to-index synchronization.
type syncer interface {
	SyncByIDs(ctx context.Context, ids []string) (synced, failed int)
	ReconcileByID(ctx context.Context, id string) (bool, error)
	Validate(ctx context.Context, sampleSize int) (*sync.ValidationReport, error)
}

// pinger checks index service connectivity for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        searcher
	cards         cardReader
	sync          syncer
	db            pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search searcher, cards cardReader, sync syncer, db pinger, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		cards:  cards,
		sync:   sync,
		db:     db,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrCardNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusServiceUnavailable, codeInternalError),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
		sentinelHandler(domain.ErrEmbeddingNotConfigured, http.StatusNotImplemented, codeNotConfigured),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cards/search", s.searchCards)
		r.Post("/cards/suggestions", s.suggestCards)
		r.Get("/cards/autocomplete", s.autocomplete)
		r.Get("/cards/{id}", s.getCard)

		r.Post("/admin/sync", s.syncCards)
		r.Post("/admin/reconcile/{id}", s.reconcileCard)
		r.Get("/admin/sync/status", s.syncStatus)
	})
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

type searchResponse struct {
	Items        []searchResultItem   `json:"items"`
	Total        int                  `json:"total"`
	From         int                  `json:"from"`
	Size         int                  `json:"size"`
	Aggregations *result.Aggregations `json:"aggregations,omitempty"`
}

type searchResultItem struct {
	Card  *card.Document `json:"card"`
	Score float64        `json:"score"`
}

// searchCards handles POST /api/v1/cards/search.
func (s *Server) searchCards(w http.ResponseWriter, r *http.Request) {
	var req request.Search
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	items := make([]searchResultItem, len(page.Hits))
	for i, h := range page.Hits {
		items[i] = searchResultItem{Card: h.Document, Score: h.Score}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:        items,
		Total:        page.Total,
		From:         req.Pagination.From,
		Size:         req.Pagination.Size,
		Aggregations: page.Aggregations,
	})
}

type suggestionsResponse struct {
	Items []result.Suggestion `json:"items"`
}

// suggestCards handles POST /api/v1/cards/suggestions.
func (s *Server) suggestCards(w http.ResponseWriter, r *http.Request) {
	var req request.Suggestion
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items, err := s.search.Suggest(r.Context(), &req)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	if items == nil {
		items = []result.Suggestion{}
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{Items: items})
}

type autocompleteResponse struct {
	Suggestions []string `json:"suggestions"`
}

// autocomplete handles GET /api/v1/cards/autocomplete?q=&limit=.
func (s *Server) autocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
			return
		}
		limit = n
	}

	names, err := s.search.Autocomplete(r.Context(), prefix, limit)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, autocompleteResponse{Suggestions: names})
}

// getCard handles GET /api/v1/cards/{id}.
func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.cards.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

type syncRequest struct {
	IDs []string `json:"ids"`
}

type syncResponse struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// syncCards handles POST /api/v1/admin/sync. Cards are fetched from the
// catalog by uuid, transformed, and written to the index; misses and
// per-item write failures are counted, never fatal.
func (s *Server) syncCards(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.IDs) == 0 || len(req.IDs) > maxSyncBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"ids count must be between 1 and "+strconv.Itoa(maxSyncBatchSize))
		return
	}

	synced, failed := s.sync.SyncByIDs(r.Context(), req.IDs)

	writeJSON(w, http.StatusOK, syncResponse{Synced: synced, Failed: failed})
}

type reconcileResponse struct {
	Reconciled bool `json:"reconciled"`
}

// reconcileCard handles POST /api/v1/admin/reconcile/{id}. Reconciled is
// true when the index copy had drifted and was rewritten.
func (s *Server) reconcileCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	wrote, err := s.sync.ReconcileByID(r.Context(), id)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, reconcileResponse{Reconciled: wrote})
}

type syncStatusResponse struct {
	CatalogCount int  `json:"catalog_count"`
	IndexCount   int  `json:"index_count"`
	InSync       bool `json:"in_sync"`
}

// syncStatus handles GET /api/v1/admin/sync/status with a counts-only
// comparison; sampled presence probes stay in the sync CLI.
func (s *Server) syncStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.sync.Validate(r.Context(), 0)
	if err != nil {
		s.handleDomainError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncStatusResponse{
		CatalogCount: report.CatalogCount,
		IndexCount:   report.IndexCount,
		InSync:       report.Valid(),
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"index": "ok"}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		checks["index"] = err.Error()
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrDocumentNotFound,
		domain.ErrCardNotFound,
		domain.ErrIndexNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrEmbeddingNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(r *http.Request, w http.ResponseWriter, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
