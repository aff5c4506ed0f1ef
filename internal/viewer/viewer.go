// Package viewer implements an [http.Handler] for inspecting a running
// index: key listings and graphs as JSON, lookups against the index, and
// a dump of the subsumption hierarchy.
package viewer

//spellchecker:words isoindex subsumption

import (
	"net/http"
	"sync"

	"github.com/FAU-CDI/subsume/internal/isoindex"
	"github.com/FAU-CDI/subsume/internal/status"
	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/gorilla/mux"
)

// Index is the concrete index type the viewer displays.
type Index = isoindex.Index[string, *triples.Graph, triples.Term, triples.Term]

// Viewer implements an [http.Handler] that displays an index.
type Viewer struct {
	Index  *Index
	Status *status.Status

	// MaxQuerySize limits the size of lookup request bodies in bytes.
	// Zero means [DefaultMaxQuerySize].
	MaxQuerySize int64

	init sync.Once
	mux  mux.Router
}

// DefaultMaxQuerySize is the lookup body limit used when none is set.
const DefaultMaxQuerySize = 1 << 20

func (viewer *Viewer) Prepare() {
	viewer.init.Do(func() {
		viewer.mux.HandleFunc("/", viewer.htmlIndex)
		viewer.mux.HandleFunc("/tree", viewer.htmlTree)

		viewer.mux.HandleFunc("/api/v1/keys", viewer.jsonKeys)
		viewer.mux.HandleFunc("/api/v1/graph/{key:.+}", viewer.jsonGraph)
		viewer.mux.HandleFunc("/api/v1/lookup", viewer.jsonLookup).Methods(http.MethodPost)
		viewer.mux.HandleFunc("/api/v1/stats", viewer.jsonStats)
	})
}

func (viewer *Viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	viewer.Prepare()
	viewer.mux.ServeHTTP(w, r)
}
