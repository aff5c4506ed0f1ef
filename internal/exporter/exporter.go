// Package exporter writes index content and lookup results to external
// formats. Implementations exist for CSV files and SQL databases; [Map]
// captures everything in memory.
package exporter

//spellchecker:words isoindex

import (
	"errors"
	"fmt"
	"io"

	"github.com/FAU-CDI/subsume/internal/isoindex"
	"github.com/FAU-CDI/subsume/internal/status"
	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/FAU-CDI/subsume/pkg/bimap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Exporter consumes stored graphs and lookup matches.
//
// Begin is called once before any data, End once after the last datum.
// Close releases underlying resources and is called even on error.
type Exporter interface {
	io.Closer

	// Begin prepares the destination for receiving data.
	Begin() error

	// AddGraph records a stored key together with its graph.
	AddGraph(key string, graph *triples.Graph) error

	// AddMatch records one witnessing mapping of a lookup result.
	AddMatch(key string, iso *bimap.BiMap[triples.Term]) error

	// End signals that no more data will be submitted.
	End() error
}

// Index is the part of the index an export reads.
type Index interface {
	Keys() []string
	Get(key string) (*triples.Graph, bool)
}

var _ Index = (*isoindex.Index[string, *triples.Graph, triples.Term, triples.Term])(nil)

// Export writes every graph stored in index, and the given lookup results,
// to e. Keys are exported in sorted order. e is closed in every case.
// st may be nil to disable logging.
func Export(index Index, results map[string][]*bimap.BiMap[triples.Term], e Exporter, st *status.Status) (err error) {
	defer func() {
		err = errors.Join(err, e.Close())
	}()

	if err := e.Begin(); err != nil {
		return fmt.Errorf("begin export: %w", err)
	}

	keys := index.Keys()
	slices.Sort(keys)
	for _, key := range keys {
		graph, ok := index.Get(key)
		if !ok {
			continue
		}
		if err := e.AddGraph(key, graph); err != nil {
			return fmt.Errorf("export graph %q: %w", key, err)
		}
	}
	st.Log("graphs exported", "count", len(keys))

	matches := 0
	matchKeys := maps.Keys(results)
	slices.Sort(matchKeys)
	for _, key := range matchKeys {
		for _, iso := range results[key] {
			if err := e.AddMatch(key, iso); err != nil {
				return fmt.Errorf("export match %q: %w", key, err)
			}
			matches++
		}
	}
	st.Log("matches exported", "count", matches)

	if err := e.End(); err != nil {
		return fmt.Errorf("end export: %w", err)
	}
	return nil
}

// Map implements an exporter that stores data inside maps.
type Map struct {
	Graphs  map[string]*triples.Graph
	Matches map[string][]string
}

func (mp *Map) Begin() error {
	mp.Graphs = make(map[string]*triples.Graph)
	mp.Matches = make(map[string][]string)
	return nil
}

func (mp *Map) AddGraph(key string, graph *triples.Graph) error {
	mp.Graphs[key] = graph
	return nil
}

func (mp *Map) AddMatch(key string, iso *bimap.BiMap[triples.Term]) error {
	mp.Matches[key] = append(mp.Matches[key], iso.String())
	return nil
}

func (mp *Map) End() error {
	return nil // no-op
}

func (mp *Map) Close() error {
	return nil // no-op
}
