// Package chi is the HTTP API: the caller interface for search plus set
// management and health endpoints.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/set"
	logpkg "github.com/kailas-cloud/cardex/internal/logger"
	"github.com/kailas-cloud/cardex/internal/metrics"
	"github.com/kailas-cloud/cardex/internal/query"
	"github.com/kailas-cloud/cardex/internal/repository/setstore"
	ingestuc "github.com/kailas-cloud/cardex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/cardex/internal/usecase/search"
)

// Server serves the cardex HTTP API.
type Server struct {
	search  *searchuc.Service
	ingest  *ingestuc.Service
	store   *setstore.Store
	sources map[string]ingestuc.SourceRef
	logger  *zap.Logger
}

// NewServer creates an HTTP API server. sources maps set IDs to their
// configured upstream references for on-demand refresh.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	store *setstore.Store,
	sources []ingestuc.SourceRef,
	logger *zap.Logger,
) *Server {
	byID := make(map[string]ingestuc.SourceRef, len(sources))
	for _, src := range sources {
		byID[src.SetID] = src
	}
	return &Server{
		search:  search,
		ingest:  ingest,
		store:   store,
		sources: byID,
		logger:  logger,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Get("/sets", s.handleListSets)
	r.Get("/sets/{setID}", s.handleGetSet)
	r.Post("/sets/{setID}/refresh", s.handleRefreshSet)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleSearch handles GET /search?q=...&sets=a,b.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	scope := parseScope(r.URL.Query().Get("sets"))

	cards, err := s.search.Search(r.Context(), q, scope)
	if err != nil {
		s.handleSearchError(w, r, err)
		return
	}

	resp := searchResponse{
		Query: q,
		Count: len(cards),
		Cards: make([]cardDTO, len(cards)),
	}
	for i, c := range cards {
		resp.Cards[i] = cardToDTO(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListSets handles GET /sets.
func (s *Server) handleListSets(w http.ResponseWriter, _ *http.Request) {
	ids := s.store.SetIDs()
	resp := setListResponse{Sets: make([]setDTO, 0, len(ids))}
	for _, id := range ids {
		if st, ok := s.store.Get(id); ok {
			resp.Sets = append(resp.Sets, setToDTO(st))
		}
	}
	stats := s.store.Stats()
	resp.SetCount = stats.SetCount
	resp.CardCount = stats.CardCount
	writeJSON(w, http.StatusOK, resp)
}

// handleGetSet handles GET /sets/{setID}.
func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "setID")
	st, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "set_not_found", "no set with ID "+id)
		return
	}
	writeJSON(w, http.StatusOK, setToDTO(st))
}

// handleRefreshSet handles POST /sets/{setID}/refresh: a single on-demand
// fetch without the background refresher's retry policy.
func (s *Server) handleRefreshSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "setID")
	src, ok := s.sources[id]
	if !ok {
		writeError(w, http.StatusNotFound, "set_not_found", "no configured source for set "+id)
		return
	}

	changed, err := s.ingest.Refresh(r.Context(), src)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnreachable):
			writeError(w, http.StatusBadGateway, "source_unreachable", err.Error())
		case errors.Is(err, domain.ErrEmptySet):
			writeError(w, http.StatusBadGateway, "empty_set", err.Error())
		default:
			logpkg.FromContext(r.Context()).Error("refresh failed", zap.String("set_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "refresh failed")
		}
		return
	}

	stats := s.store.Stats()
	metrics.SetStoreSize(stats.SetCount, stats.CardCount)
	writeJSON(w, http.StatusOK, refreshResponse{SetID: id, Refreshed: changed})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.store.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		SetCount:  stats.SetCount,
		CardCount: stats.CardCount,
	})
}

func (s *Server) handleSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *query.ParseError
	if errors.As(err, &parseErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "parse_error",
			Kind:    string(parseErr.Kind),
			Message: parseErr.Msg,
			Pos:     parseErr.Pos,
		})
		return
	}
	if errors.Is(err, domain.ErrConsistency) {
		writeError(w, http.StatusInternalServerError, "consistency_fault", err.Error())
		return
	}
	logpkg.FromContext(r.Context()).Error("search failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "search failed")
}

// parseScope reads the sets query parameter: empty means all sets.
func parseScope(param string) set.Scope {
	if strings.TrimSpace(param) == "" {
		return set.All()
	}
	var ids []string
	for id := range strings.SplitSeq(param, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return set.Of(ids...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
