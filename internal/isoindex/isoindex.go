// Package isoindex implements an in-memory index over keyed graphs that
// answers sub-graph isomorphism queries.
//
// The index stores pairs of a key and a graph. A lookup with a query graph
// returns every stored key whose graph can be renamed, on its renameable
// vertices, into a sub-graph of the query, together with the witnessing
// mappings. Stored graphs are arranged in a subsumption hierarchy below a
// virtual root, so a lookup only descends into branches whose tag sets are
// subsets of the query's tags.
//
// The package is generic over the key type K, the graph type G, the vertex
// type V and the tag type T. The graph algebra and the isomorphism search
// are pluggable through [SetOps] and [Matcher].
package isoindex

//spellchecker:words isoindex renameable subsumption

import (
	"fmt"

	"github.com/FAU-CDI/subsume/pkg/bimap"
	"github.com/tkw1536/pkglib/iterator"
)

// SetOps is the algebra over graph values the index builds on.
//
// Graphs handed to the index are treated as immutable; implementations
// return fresh values and never modify their arguments.
type SetOps[G any, V comparable] interface {
	// New returns a fresh empty graph.
	New() G

	// Size returns the number of edges of g.
	Size(g G) int

	// Union returns a graph holding the edges of both a and b.
	Union(a, b G) G

	// Difference returns a graph holding the edges of a not contained in b.
	Difference(a, b G) G

	// Intersect returns a graph holding the edges contained in both a and b.
	Intersect(a, b G) G

	// Rename replaces every renameable vertex of g through iso.
	// Vertices without a mapping stay put.
	Rename(g G, iso *bimap.BiMap[V]) G

	// Equal reports if a and b hold exactly the same edges.
	Equal(a, b G) bool
}

// Matcher enumerates sub-graph isomorphisms.
//
// Match lazily yields mappings extending base that rename the renameable
// vertices of pattern, injectively, such that the renamed pattern becomes a
// sub-graph of target. Yielded mappings must be independent of the matcher's
// internal state; abandoning the iterator early must be safe.
//
// A Matcher need not be complete. An incomplete matcher makes the index
// miss results, never return wrong ones.
type Matcher[G any, V comparable] interface {
	Match(base *bimap.BiMap[V], pattern, target G) iterator.Iterator[*bimap.BiMap[V]]
}

// Source is the minimal interface shared by the hierarchical index, the
// flat reference index and wrappers around either.
type Source[K comparable, G any, V comparable] interface {
	// Put associates key with graph.
	Put(key K, graph G) error

	// Remove drops key and everything only reachable through it.
	Remove(key K)

	// Get returns the graph stored for key.
	Get(key K) (G, bool)

	// Lookup returns for every stored key whose graph embeds into query the
	// witnessing mappings, with identity pairs removed. With exact set, only
	// keys whose graph covers the query completely are returned.
	Lookup(query G, exact bool) (map[K][]*bimap.BiMap[V], error)
}

// Stats counts the work performed by index operations.
type Stats struct {
	// EdgesConsidered counts edges that passed the tag prefilter during descent.
	EdgesConsidered uint64

	// EdgesSkippedByTags counts edges pruned by the tag prefilter.
	EdgesSkippedByTags uint64

	// MatcherCalls counts invocations of the isomorphism matcher.
	MatcherCalls uint64

	// CollisionsSkipped counts candidate edges abandoned because renaming a
	// mapping through the edge produced a collision.
	CollisionsSkipped uint64

	// IncompatibleIsos counts matcher results discarded as incompatible with
	// the mapping established higher up in the hierarchy.
	IncompatibleIsos uint64
}

func (stats Stats) String() string {
	return fmt.Sprintf("{edges:%d,skipped(tags):%d,matches:%d,skipped(collision):%d,skipped(incompatible):%d}",
		stats.EdgesConsidered, stats.EdgesSkippedByTags, stats.MatcherCalls, stats.CollisionsSkipped, stats.IncompatibleIsos)
}
