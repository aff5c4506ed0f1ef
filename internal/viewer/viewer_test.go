package viewer

//spellchecker:words nquads

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FAU-CDI/subsume/internal/isoindex"
	"github.com/FAU-CDI/subsume/internal/triples"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()

	index := isoindex.New[string, *triples.Graph, triples.Term, triples.Term](
		triples.Ops{}, triples.GraphMatcher{},
		func(g *triples.Graph) []triples.Term { return g.Tags() },
		triples.Term.Compare, nil)

	edge := triples.NewTriple(
		triples.NewBlank("x"),
		triples.NewConcrete("http://example.com/p"),
		triples.NewBlank("y"),
	)
	if err := index.Put("small", triples.NewGraph(edge)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if err := index.Put("big", triples.NewGraph(
		edge,
		triples.NewTriple(
			triples.NewBlank("y"),
			triples.NewConcrete("http://example.com/q"),
			triples.NewBlank("z"),
		),
	)); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	return &Viewer{Index: index}
}

func TestKeys(t *testing.T) {
	viewer := newTestViewer(t)

	recorder := httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/keys", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/keys returned status %d", recorder.Code)
	}
	var keys []string
	if err := json.Unmarshal(recorder.Body.Bytes(), &keys); err != nil {
		t.Fatalf("response is not valid json: %v", err)
	}
	if len(keys) != 2 || keys[0] != "big" || keys[1] != "small" {
		t.Errorf("keys = %v, want sorted [big small]", keys)
	}
}

func TestGraph(t *testing.T) {
	viewer := newTestViewer(t)

	recorder := httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/graph/small", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/graph/small returned status %d", recorder.Code)
	}
	var response struct {
		Key     string   `json:"key"`
		Triples []string `json:"triples"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("response is not valid json: %v", err)
	}
	if response.Key != "small" || len(response.Triples) != 1 {
		t.Errorf("response = %+v", response)
	}

	recorder = httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/graph/missing", nil))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("GET /api/v1/graph/missing returned status %d, want 404", recorder.Code)
	}
}

func TestLookup(t *testing.T) {
	viewer := newTestViewer(t)

	query := `_:a <http://example.com/p> _:b .
_:b <http://example.com/q> _:c .
`
	recorder := httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader(query)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("POST /api/v1/lookup returned status %d: %s", recorder.Code, recorder.Body.String())
	}
	var response []struct {
		Key      string   `json:"key"`
		Mappings []string `json:"mappings"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("response is not valid json: %v", err)
	}
	if len(response) != 2 || response[0].Key != "big" || response[1].Key != "small" {
		t.Errorf("lookup response = %+v, want big and small", response)
	}

	recorder = httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/lookup?exact=true", strings.NewReader(query)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("exact lookup returned status %d", recorder.Code)
	}
	response = nil
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("response is not valid json: %v", err)
	}
	if len(response) != 1 || response[0].Key != "big" {
		t.Errorf("exact lookup response = %+v, want only big", response)
	}

	recorder = httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader("not nquads")))
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("malformed lookup returned status %d, want 400", recorder.Code)
	}
}

func TestTree(t *testing.T) {
	viewer := newTestViewer(t)

	recorder := httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/tree", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("GET /tree returned status %d", recorder.Code)
	}
	body := recorder.Body.String()
	for _, key := range []string{"small", "big"} {
		if !strings.Contains(body, key) {
			t.Errorf("tree dump misses %q", key)
		}
	}
}

func TestStats(t *testing.T) {
	viewer := newTestViewer(t)

	recorder := httptest.NewRecorder()
	viewer.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/stats returned status %d", recorder.Code)
	}
	var response struct {
		Keys         int    `json:"keys"`
		MatcherCalls uint64 `json:"matcherCalls"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("response is not valid json: %v", err)
	}
	if response.Keys != 2 {
		t.Errorf("stats report %d keys, want 2", response.Keys)
	}
}
