package viewer

//spellchecker:words nquads

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/FAU-CDI/subsume/internal/loader"
	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/gorilla/mux"
	"golang.org/x/exp/slices"
)

func (viewer *Viewer) jsonKeys(w http.ResponseWriter, r *http.Request) {
	keys := viewer.Index.Keys()
	slices.Sort(keys)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(keys)
}

type graphResponse struct {
	Key     string   `json:"key"`
	Triples []string `json:"triples"`
	Tags    []string `json:"tags"`
}

func (viewer *Viewer) jsonGraph(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	graph, ok := viewer.Index.Get(vars["key"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	response := graphResponse{Key: vars["key"]}
	for _, triple := range graph.Triples() {
		response.Triples = append(response.Triples, triple.String())
	}
	for _, tag := range graph.Tags() {
		response.Tags = append(response.Tags, tag.String())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

type lookupResponse struct {
	Key      string   `json:"key"`
	Mappings []string `json:"mappings"`
}

// jsonLookup runs a lookup with the query graph read from the request body
// as N-Quads. Quads of every graph label are merged into a single query.
// The "exact" query parameter restricts results to covering keys.
func (viewer *Viewer) jsonLookup(w http.ResponseWriter, r *http.Request) {
	limit := viewer.MaxQuerySize
	if limit == 0 {
		limit = DefaultMaxQuerySize
	}

	dataset, err := loader.Read(http.MaxBytesReader(w, r.Body, limit), viewer.Status)
	if err != nil {
		http.Error(w, "invalid query: "+err.Error(), http.StatusBadRequest)
		return
	}

	query := dataset.Default.Clone()
	for _, name := range dataset.Keys() {
		dataset.Named[name].Iterate(func(triple triples.Triple) bool {
			query.Add(triple)
			return true
		})
	}

	exact, _ := strconv.ParseBool(r.URL.Query().Get("exact"))

	result, err := viewer.Index.Lookup(query, exact)
	if err != nil {
		viewer.Status.LogError("lookup failed", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	response := make([]lookupResponse, 0, len(result))
	for key, isos := range result {
		entry := lookupResponse{Key: key}
		for _, iso := range isos {
			entry.Mappings = append(entry.Mappings, iso.String())
		}
		slices.Sort(entry.Mappings)
		response = append(response, entry)
	}
	slices.SortFunc(response, func(a, b lookupResponse) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

type statsResponse struct {
	Keys               int    `json:"keys"`
	EdgesConsidered    uint64 `json:"edgesConsidered"`
	EdgesSkippedByTags uint64 `json:"edgesSkippedByTags"`
	MatcherCalls       uint64 `json:"matcherCalls"`
	CollisionsSkipped  uint64 `json:"collisionsSkipped"`
	IncompatibleIsos   uint64 `json:"incompatibleIsos"`
}

func (viewer *Viewer) jsonStats(w http.ResponseWriter, r *http.Request) {
	stats := viewer.Index.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(statsResponse{
		Keys:               viewer.Index.Len(),
		EdgesConsidered:    stats.EdgesConsidered,
		EdgesSkippedByTags: stats.EdgesSkippedByTags,
		MatcherCalls:       stats.MatcherCalls,
		CollisionsSkipped:  stats.CollisionsSkipped,
		IncompatibleIsos:   stats.IncompatibleIsos,
	})
}
