// Package loader reads N-Quads data into graphs the index can store.
//
// Quads are grouped by their graph label: every named graph becomes one
// [triples.Graph] value keyed by its label, quads without a label go into
// the default graph. IRIs and literals become concrete terms, blank nodes
// become renameable terms scoped to their graph.
package loader

//spellchecker:words nquads renameable

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/FAU-CDI/subsume/internal/status"
	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Dataset holds the graphs read from a single N-Quads source.
type Dataset struct {
	// Default holds the quads without a graph label.
	Default *triples.Graph

	// Named holds one graph per graph label.
	Named map[string]*triples.Graph

	// Quads counts the quads read, including skipped ones.
	Quads int
}

// Keys returns the labels of the named graphs in sorted order.
func (dataset *Dataset) Keys() []string {
	keys := maps.Keys(dataset.Named)
	slices.Sort(keys)
	return keys
}

// Read parses N-Quads from r and groups them into a dataset.
// Quads whose subject, predicate or object cannot be represented are skipped.
// st may be nil to disable logging.
func Read(r io.Reader, st *status.Status) (*Dataset, error) {
	reader := nquads.NewReader(r, true)
	defer func() { _ = reader.Close() }()

	dataset := &Dataset{
		Default: triples.NewGraph(),
		Named:   make(map[string]*triples.Graph),
	}

	for {
		value, err := reader.ReadQuad()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read quad %d: %w", dataset.Quads+1, err)
		}
		dataset.Quads++

		subject, ok := asTerm(value.Subject)
		if !ok {
			st.LogDebug("skipping quad, subject not representable", "quad", dataset.Quads)
			continue
		}
		predicate, ok := asTerm(value.Predicate)
		if !ok {
			st.LogDebug("skipping quad, predicate not representable", "quad", dataset.Quads)
			continue
		}
		object, ok := asTerm(value.Object)
		if !ok {
			st.LogDebug("skipping quad, object not representable", "quad", dataset.Quads)
			continue
		}

		triple := triples.NewTriple(subject, predicate, object)

		if label, ok := asLabel(value.Label); ok {
			graph := dataset.Named[label]
			if graph == nil {
				graph = triples.NewGraph()
				dataset.Named[label] = graph
			}
			graph.Add(triple)
		} else {
			dataset.Default.Add(triple)
		}
	}

	st.Log("dataset read", "quads", dataset.Quads, "graphs", len(dataset.Named))
	return dataset, nil
}

// ReadFile reads the N-Quads file at path.
func ReadFile(path string, st *status.Status) (*Dataset, error) {
	file, err := os.Open(path) // #nosec G304 -- user-supplied data file
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	dataset, err := Read(file, st)
	return dataset, errors.Join(err, file.Close())
}

// asTerm converts a quad value into a graph term.
// Blank nodes become renameable terms, everything else concrete.
func asTerm(value quad.Value) (triples.Term, bool) {
	switch datum := value.(type) {
	case nil:
		return triples.Term{}, false
	case quad.IRI:
		return triples.NewConcrete(string(datum)), true
	case quad.BNode:
		return triples.NewBlank(string(datum)), true
	case quad.String:
		return triples.NewConcrete(string(datum)), true
	case quad.LangString:
		return triples.NewConcrete(string(datum.Value) + "@" + datum.Lang), true
	case quad.TypedString:
		return triples.NewConcrete(string(datum.Value) + "^^" + string(datum.Type)), true
	default:
		return triples.NewConcrete(fmt.Sprint(value.Native())), true
	}
}

// asLabel extracts the graph label of a quad.
func asLabel(value quad.Value) (string, bool) {
	switch datum := value.(type) {
	case quad.IRI:
		return string(datum), true
	case quad.BNode:
		return string(datum), true
	default:
		return "", false
	}
}
