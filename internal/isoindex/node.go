package isoindex

//spellchecker:words isoindex renameable

import (
	"github.com/FAU-CDI/subsume/internal/tagmap"
	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// edge connects two nodes of the subsumption hierarchy.
//
// Following the edge means renaming the vertices established at the from
// node through transIso; the residual graph is what the target adds on top
// of the source, with residualTags the tags of that addition.
type edge[K comparable, G any, V comparable, T comparable] struct {
	from *node[K, G, V, T]
	to   *node[K, G, V, T]

	transIso *bimap.BiMap[V]

	residualGraph G
	residualTags  []T

	baseIso *bimap.BiMap[V]
}

// node is a single entry of the subsumption hierarchy.
// The root node carries no key; every other node is identified by the
// preferred key of the graphs stored at it.
type node[K comparable, G any, V comparable, T comparable] struct {
	key    K
	hasKey bool

	// two-level edge table: target node, then canonical transIso form.
	// At most one edge exists per (target, transIso) pair.
	children map[*node[K, G, V, T]]map[string]*edge[K, G, V, T]

	// edges indexed by their residual tags, for subset and superset queries
	edgeIndex *tagmap.TagMap[*edge[K, G, V, T], T]

	parents map[*node[K, G, V, T]]struct{}

	// altKeys holds the keys stored at this node: the preferred key plus
	// every key whose graph turned out isomorphic to it, each with the set
	// of witnessing renamings in canonical form.
	altKeys map[K]map[string]*bimap.BiMap[V]
}

// addAltKey records key as stored at this node, reachable via iso.
func (n *node[K, G, V, T]) addAltKey(key K, iso *bimap.BiMap[V]) {
	if n.altKeys == nil {
		n.altKeys = make(map[K]map[string]*bimap.BiMap[V])
	}
	isos := n.altKeys[key]
	if isos == nil {
		isos = make(map[string]*bimap.BiMap[V])
		n.altKeys[key] = isos
	}
	isos[iso.String()] = iso
}

func newNode[K comparable, G any, V comparable, T comparable](compare tagmap.Comparator[T]) *node[K, G, V, T] {
	return &node[K, G, V, T]{
		children:  make(map[*node[K, G, V, T]]map[string]*edge[K, G, V, T]),
		edgeIndex: tagmap.New[*edge[K, G, V, T]](compare),
		parents:   make(map[*node[K, G, V, T]]struct{}),
	}
}

func (n *node[K, G, V, T]) isLeaf() bool {
	return len(n.children) == 0
}

// appendChild draws an edge from n to target, replacing a prior edge with
// the same transIso. A node never links to itself.
func (n *node[K, G, V, T]) appendChild(target *node[K, G, V, T], residualGraph G, residualTags []T, transIso, baseIso *bimap.BiMap[V]) {
	if n == target {
		panic("isoindex: node linked to itself")
	}

	e := &edge[K, G, V, T]{
		from:          n,
		to:            target,
		transIso:      transIso,
		residualGraph: residualGraph,
		residualTags:  residualTags,
		baseIso:       baseIso,
	}

	column := n.children[target]
	if column == nil {
		column = make(map[string]*edge[K, G, V, T])
		n.children[target] = column
	}

	form := transIso.String()
	if prior, ok := column[form]; ok {
		n.edgeIndex.Remove(prior)
	}
	column[form] = e
	n.edgeIndex.Put(e, residualTags)

	target.parents[n] = struct{}{}
}

// removeEdge drops a single edge from both the table and the tag index.
// The edge must currently be present.
func (n *node[K, G, V, T]) removeEdge(e *edge[K, G, V, T]) {
	before := n.edgeIndex.Len()
	n.edgeIndex.Remove(e)
	if n.edgeIndex.Len() != before-1 {
		panic("isoindex: edge removal failed")
	}

	column := n.children[e.to]
	delete(column, e.transIso.String())
	if len(column) == 0 {
		delete(n.children, e.to)
	}
}

// removeChild drops every edge from n to target.
func (n *node[K, G, V, T]) removeChild(target *node[K, G, V, T]) {
	for _, e := range n.children[target] {
		n.edgeIndex.Remove(e)
	}
	delete(n.children, target)
}

// edges calls f for every outgoing edge until f returns false.
func (n *node[K, G, V, T]) edges(f func(*edge[K, G, V, T]) bool) {
	for _, column := range n.children {
		for _, e := range column {
			if !f(e) {
				return
			}
		}
	}
}

func (n *node[K, G, V, T]) edgeCount() int {
	return n.edgeIndex.Len()
}
