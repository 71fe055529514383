package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/set"
	"github.com/kailas-cloud/cardex/internal/repository/setstore"
	ingestuc "github.com/kailas-cloud/cardex/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/cardex/internal/usecase/search"
)

// --- Fixtures ---

type stubSource struct {
	raw ingestuc.RawSet
	err error
}

func (s *stubSource) Fetch(_ context.Context, _ string) (ingestuc.RawSet, error) {
	return s.raw, s.err
}

func intp(v int) *int { return &v }

func seedStore() *setstore.Store {
	store := setstore.New()
	store.UpsertSet(set.Reconstruct("std", "Standard", "v1", []card.Card{
		card.Reconstruct("Stoat", "std", intp(1), intp(1), intp(3), nil, "", card.RarityCommon, ""),
		card.Reconstruct("Wyrm", "std", intp(2), nil, nil, []string{"rare"}, "no bones", card.RarityUncommon, ""),
	}))
	store.UpsertSet(set.Reconstruct("ext", "Extended", "v1", []card.Card{
		card.Reconstruct("Mantis", "ext", intp(2), intp(1), intp(1), nil, "", card.RarityCommon, ""),
	}))
	return store
}

func newTestServer(t *testing.T, src ingestuc.Source, store *setstore.Store) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	ingestSvc := ingestuc.New(src, store, logger)
	searchSvc := searchuc.New(store, logger)
	sources := []ingestuc.SourceRef{
		{SetID: "std", Name: "Standard", URL: "http://example/std.json"},
	}
	server := NewServer(searchSvc, ingestSvc, store, sources, logger)

	r := chi.NewRouter()
	server.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response of %s: %v", url, err)
	}
}

func postJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", http.NoBody)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response of %s: %v", url, err)
	}
}

// --- Tests ---

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp searchResponse
	getJSON(t, srv.URL+"/search?q=cost%3D2+-tags%3Arare", http.StatusOK, &resp)
	if resp.Count != 1 || len(resp.Cards) != 1 {
		t.Fatalf("count = %d, cards = %d", resp.Count, len(resp.Cards))
	}
	if resp.Cards[0].Name != "Mantis" || resp.Cards[0].SetID != "ext" {
		t.Errorf("card = %+v", resp.Cards[0])
	}
	if resp.Cards[0].Cost == nil || *resp.Cards[0].Cost != 2 {
		t.Errorf("cost = %v", resp.Cards[0].Cost)
	}
}

func TestSearchEndpoint_Scoped(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp searchResponse
	getJSON(t, srv.URL+"/search?q=cost%3D2&sets=std", http.StatusOK, &resp)
	if resp.Count != 1 || resp.Cards[0].Name != "Wyrm" {
		t.Fatalf("scoped search: %+v", resp)
	}
}

func TestSearchEndpoint_ParseError(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp errorResponse
	getJSON(t, srv.URL+"/search?q=bogus%3A3", http.StatusBadRequest, &resp)
	if resp.Code != "parse_error" || resp.Kind != "unknown_field" {
		t.Fatalf("error = %+v", resp)
	}

	getJSON(t, srv.URL+"/search", http.StatusBadRequest, &resp)
	if resp.Kind != "empty_query" {
		t.Fatalf("error = %+v", resp)
	}
}

func TestListSets(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp setListResponse
	getJSON(t, srv.URL+"/sets", http.StatusOK, &resp)
	if resp.SetCount != 2 || resp.CardCount != 3 {
		t.Fatalf("counts = %d sets, %d cards", resp.SetCount, resp.CardCount)
	}
	if len(resp.Sets) != 2 || resp.Sets[0].SetID != "ext" || resp.Sets[1].SetID != "std" {
		t.Fatalf("sets = %+v", resp.Sets)
	}
}

func TestGetSet(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp setDTO
	getJSON(t, srv.URL+"/sets/std", http.StatusOK, &resp)
	if resp.Name != "Standard" || resp.Version != "v1" || resp.CardCount != 2 {
		t.Fatalf("set = %+v", resp)
	}

	var errResp errorResponse
	getJSON(t, srv.URL+"/sets/missing", http.StatusNotFound, &errResp)
	if errResp.Code != "set_not_found" {
		t.Fatalf("error = %+v", errResp)
	}
}

func TestRefreshSet(t *testing.T) {
	src := &stubSource{raw: ingestuc.RawSet{
		Name:    "Standard",
		Version: "v2",
		Records: []ingestuc.RawRecord{{Name: "Urayuli", Cost: intp(9)}},
	}}
	store := seedStore()
	srv := newTestServer(t, src, store)

	var resp refreshResponse
	postJSON(t, srv.URL+"/sets/std/refresh", http.StatusOK, &resp)
	if !resp.Refreshed || resp.SetID != "std" {
		t.Fatalf("refresh = %+v", resp)
	}
	if v, _ := store.Version("std"); v != "v2" {
		t.Errorf("store version = %q", v)
	}
}

func TestRefreshSet_NoSource(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp errorResponse
	postJSON(t, srv.URL+"/sets/ext/refresh", http.StatusNotFound, &resp)
	if resp.Code != "set_not_found" {
		t.Fatalf("error = %+v", resp)
	}
}

func TestRefreshSet_Unreachable(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("%w: connection refused", domain.ErrUnreachable)}
	srv := newTestServer(t, src, seedStore())

	var resp errorResponse
	postJSON(t, srv.URL+"/sets/std/refresh", http.StatusBadGateway, &resp)
	if resp.Code != "source_unreachable" {
		t.Fatalf("error = %+v", resp)
	}
}

func TestRefreshSet_EmptySet(t *testing.T) {
	src := &stubSource{raw: ingestuc.RawSet{Name: "Standard", Version: "v9"}}
	srv := newTestServer(t, src, seedStore())

	var resp errorResponse
	postJSON(t, srv.URL+"/sets/std/refresh", http.StatusBadGateway, &resp)
	if resp.Code != "empty_set" {
		t.Fatalf("error = %+v", resp)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, seedStore())

	var resp healthResponse
	getJSON(t, srv.URL+"/healthz", http.StatusOK, &resp)
	if resp.Status != "ok" || resp.SetCount != 2 || resp.CardCount != 3 {
		t.Fatalf("health = %+v", resp)
	}
}
