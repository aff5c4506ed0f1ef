package isoindex

//spellchecker:words isoindex renameable

import (
	"errors"
	"fmt"

	"github.com/FAU-CDI/subsume/internal/tagmap"
	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// Flat is a reference index that stores graphs in a plain table and answers
// lookups by matching every candidate graph against the query directly.
//
// It returns the same results as [Index], only slower: the sole pruning is
// the tag prefilter. Its main use is as an oracle in tests and for the
// occasional sanity check on small data sets.
type Flat[K comparable, G any, V comparable, T comparable] struct {
	ops         SetOps[G, V]
	matcher     Matcher[G, V]
	extractTags func(G) []T
	compareTags tagmap.Comparator[T]

	graphs map[K]G
	tags   *tagmap.TagMap[K, T]
}

// NewFlat creates an empty flat index over the given graph algebra and matcher.
func NewFlat[K comparable, G any, V comparable, T comparable](
	ops SetOps[G, V],
	matcher Matcher[G, V],
	extractTags func(G) []T,
	compareTags tagmap.Comparator[T],
) *Flat[K, G, V, T] {
	return &Flat[K, G, V, T]{
		ops:         ops,
		matcher:     matcher,
		extractTags: extractTags,
		compareTags: compareTags,

		graphs: make(map[K]G),
		tags:   tagmap.New[K](compareTags),
	}
}

// Put stores graph under key.
// Like [Index.Put] it refuses to overwrite a key with a different graph.
func (flat *Flat[K, G, V, T]) Put(key K, graph G) error {
	if prior, ok := flat.graphs[key]; ok {
		if flat.ops.Equal(prior, graph) {
			return nil
		}
		return fmt.Errorf("%w: %v", errKeyExists, key)
	}
	flat.graphs[key] = graph
	flat.tags.Put(key, flat.extractTags(graph))
	return nil
}

// Remove drops key.
func (flat *Flat[K, G, V, T]) Remove(key K) {
	delete(flat.graphs, key)
	flat.tags.Remove(key)
}

// Get returns the graph stored under key.
func (flat *Flat[K, G, V, T]) Get(key K) (G, bool) {
	graph, ok := flat.graphs[key]
	return graph, ok
}

// Len returns the number of stored keys.
func (flat *Flat[K, G, V, T]) Len() int {
	return len(flat.graphs)
}

// Lookup returns for every stored key whose graph embeds into the query the
// witnessing mappings, identity pairs removed. With exact set, only keys
// whose graph covers the query completely are returned.
func (flat *Flat[K, G, V, T]) Lookup(query G, exact bool) (map[K][]*bimap.BiMap[V], error) {
	raw, err := flat.LookupRaw(query, exact, nil)
	if err != nil {
		return nil, err
	}

	result := make(map[K][]*bimap.BiMap[V], len(raw))
	for key, isos := range raw {
		seen := make(map[string]struct{}, len(isos))
		for _, iso := range isos {
			delta := iso.RemoveIdentity()
			form := delta.String()
			if _, dup := seen[form]; dup {
				continue
			}
			seen[form] = struct{}{}
			result[key] = append(result[key], delta)
		}
	}
	return result, nil
}

// LookupRaw returns the witnessing mappings with identity pairs kept.
// A nil base mapping means an unconstrained lookup.
func (flat *Flat[K, G, V, T]) LookupRaw(query G, exact bool, base *bimap.BiMap[V]) (map[K][]*bimap.BiMap[V], error) {
	if base == nil {
		base = bimap.New[V]()
	}
	queryTags := flat.extractTags(query)

	result := make(map[K][]*bimap.BiMap[V])
	for _, key := range flat.tags.SubsetsOf(queryTags, false) {
		graph := flat.graphs[key]

		isos := flat.matcher.Match(base, graph, query)
		for isos.Next() {
			iso := isos.Datum()
			if !iso.Compatible(base) {
				continue
			}
			if exact {
				mapped := flat.ops.Rename(graph, iso)
				if flat.ops.Size(flat.ops.Difference(query, mapped)) != 0 {
					continue
				}
			}
			result[key] = append(result[key], iso)
		}
		if err := isos.Err(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

var errNoGraph = errors.New("object has no graph")

// Wrapper adapts a [Source] over graphs into an index over arbitrary
// objects, deriving each object's graph through a conversion function.
type Wrapper[K comparable, O any, G any, V comparable] struct {
	source  Source[K, G, V]
	toGraph func(O) (G, error)

	objects map[K]O
}

// NewWrapper creates an object index on top of source.
// toGraph derives the graph stored for an object.
func NewWrapper[K comparable, O any, G any, V comparable](source Source[K, G, V], toGraph func(O) (G, error)) *Wrapper[K, O, G, V] {
	return &Wrapper[K, O, G, V]{
		source:  source,
		toGraph: toGraph,
		objects: make(map[K]O),
	}
}

// Put converts object to its graph and stores it under key.
func (wrapper *Wrapper[K, O, G, V]) Put(key K, object O) error {
	graph, err := wrapper.toGraph(object)
	if err != nil {
		return fmt.Errorf("%w: %v: %w", errNoGraph, key, err)
	}
	if err := wrapper.source.Put(key, graph); err != nil {
		return err
	}
	wrapper.objects[key] = object
	return nil
}

// Remove drops key from both the object table and the underlying source.
func (wrapper *Wrapper[K, O, G, V]) Remove(key K) {
	delete(wrapper.objects, key)
	wrapper.source.Remove(key)
}

// Get returns the object stored under key.
func (wrapper *Wrapper[K, O, G, V]) Get(key K) (O, bool) {
	object, ok := wrapper.objects[key]
	return object, ok
}

// Graph returns the graph derived for key when it was stored.
func (wrapper *Wrapper[K, O, G, V]) Graph(key K) (G, bool) {
	return wrapper.source.Get(key)
}

// Lookup converts query to its graph and looks it up in the underlying source.
func (wrapper *Wrapper[K, O, G, V]) Lookup(query O, exact bool) (map[K][]*bimap.BiMap[V], error) {
	graph, err := wrapper.toGraph(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoGraph, err)
	}
	return wrapper.source.Lookup(graph, exact)
}
