package isoindex

//spellchecker:words isoindex renameable subsumption

import (
	"errors"
	"fmt"
	"sort"

	"github.com/FAU-CDI/subsume/internal/status"
	"github.com/FAU-CDI/subsume/internal/tagmap"
	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// Index is a hierarchical sub-graph isomorphism index.
//
// Stored graphs are arranged below a virtual root node such that an edge
// from one node to another means the target's graph subsumes the source's,
// with the edge recording the residual graph and the vertex renaming. Keys
// whose graphs are isomorphic to an existing node's graph are recorded as
// alternative keys of that node instead of creating a new one.
//
// An Index must be created with [New]; the zero value is not ready for use.
// An Index supports a single writer and is not safe for concurrent use.
type Index[K comparable, G any, V comparable, T comparable] struct {
	ops         SetOps[G, V]
	matcher     Matcher[G, V]
	extractTags func(G) []T
	compareTags tagmap.Comparator[T]

	log *status.Status

	root *node[K, G, V, T]

	// nodes maps preferred keys to their hierarchy node
	nodes map[K]*node[K, G, V, T]

	// rowOf maps every stored key to the node whose alternative key row holds it
	rowOf map[K]*node[K, G, V, T]

	keyToGraph map[K]G

	// graphTags indexes every stored key by the tags of its full graph
	graphTags *tagmap.TagMap[K, T]

	stats Stats
}

// New creates an empty index over the given graph algebra and matcher.
// extractTags returns the tags of a graph, ordered by compareTags.
// st may be nil to disable logging.
func New[K comparable, G any, V comparable, T comparable](
	ops SetOps[G, V],
	matcher Matcher[G, V],
	extractTags func(G) []T,
	compareTags tagmap.Comparator[T],
	st *status.Status,
) *Index[K, G, V, T] {
	return &Index[K, G, V, T]{
		ops:         ops,
		matcher:     matcher,
		extractTags: extractTags,
		compareTags: compareTags,
		log:         st,

		root:       newNode[K, G, V](compareTags),
		nodes:      make(map[K]*node[K, G, V, T]),
		rowOf:      make(map[K]*node[K, G, V, T]),
		keyToGraph: make(map[K]G),
		graphTags:  tagmap.New[K](compareTags),
	}
}

var errKeyExists = errors.New("key already stored with a different graph")

// Put stores graph under key.
//
// Re-putting a key with an unchanged graph is a no-op. Storing a different
// graph under an existing key is an error; remove the key first.
// The graph becomes owned by the index and must not be modified afterwards.
func (index *Index[K, G, V, T]) Put(key K, graph G) error {
	if prior, ok := index.keyToGraph[key]; ok {
		if index.ops.Equal(prior, graph) {
			return nil
		}
		return fmt.Errorf("%w: %v", errKeyExists, key)
	}

	tags := index.canonTags(index.extractTags(graph))

	index.keyToGraph[key] = graph
	index.graphTags.Put(key, tags)

	if err := index.add(index.root, key, graph, tags, bimap.New[V](), bimap.New[V]()); err != nil {
		return fmt.Errorf("put %v: %w", key, err)
	}
	return nil
}

// Get returns the graph stored under key, as it was passed to [Index.Put].
func (index *Index[K, G, V, T]) Get(key K) (G, bool) {
	graph, ok := index.keyToGraph[key]
	return graph, ok
}

// Len returns the number of stored keys.
func (index *Index[K, G, V, T]) Len() int {
	return len(index.keyToGraph)
}

// Keys returns every stored key in unspecified order.
func (index *Index[K, G, V, T]) Keys() []K {
	keys := make([]K, 0, len(index.keyToGraph))
	for key := range index.keyToGraph {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns counters describing the work performed so far.
func (index *Index[K, G, V, T]) Stats() Stats {
	return index.stats
}

// Remove drops key. When it was the last key of its node and the node has
// no children, the node is removed from the hierarchy, and so is every
// ancestor that is thereby left without keys and without children.
func (index *Index[K, G, V, T]) Remove(key K) {
	if _, ok := index.keyToGraph[key]; !ok {
		return
	}

	delete(index.keyToGraph, key)
	index.graphTags.Remove(key)

	row := index.rowOf[key]
	delete(index.rowOf, key)
	if row == nil {
		return
	}

	delete(row.altKeys, key)
	if len(row.altKeys) == 0 {
		index.extinguish(row)
	}
}

// extinguish removes the node if it has become an empty leaf, then retries
// its parents, cascading upwards.
func (index *Index[K, G, V, T]) extinguish(n *node[K, G, V, T]) {
	if n == nil || !n.hasKey {
		return
	}
	if !n.isLeaf() || len(n.altKeys) != 0 {
		return
	}

	for parent := range n.parents {
		parent.removeChild(n)
	}
	delete(index.nodes, n.key)

	for parent := range n.parents {
		index.extinguish(parent)
	}
}

// canonTags sorts and deduplicates tags.
func (index *Index[K, G, V, T]) canonTags(tags []T) []T {
	sorted := make([]T, len(tags))
	copy(sorted, tags)
	sort.Slice(sorted, func(i, j int) bool {
		return index.compareTags(sorted[i], sorted[j]) < 0
	})
	deduped := sorted[:0]
	for i, tag := range sorted {
		if i == 0 || index.compareTags(deduped[len(deduped)-1], tag) != 0 {
			deduped = append(deduped, tag)
		}
	}
	return deduped
}

// diffTags returns the canonical tags of a not contained in b.
// Both arguments must be canonical.
func (index *Index[K, G, V, T]) diffTags(a, b []T) []T {
	result := make([]T, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := index.compareTags(a[i], b[j]); {
		case c < 0:
			result = append(result, a[i])
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	return append(result, a[i:]...)
}
