package triples

//spellchecker:words renameable

import (
	"strings"

	"github.com/FAU-CDI/subsume/pkg/bimap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Graph is a finite set of triples.
// The zero value is an empty graph ready to use.
type Graph struct {
	triples map[Triple]struct{}
}

// NewGraph returns a graph holding the given triples.
func NewGraph(ts ...Triple) *Graph {
	g := &Graph{triples: make(map[Triple]struct{}, len(ts))}
	for _, t := range ts {
		g.triples[t] = struct{}{}
	}
	return g
}

// Add inserts the triple into this graph.
func (g *Graph) Add(t Triple) {
	if g.triples == nil {
		g.triples = make(map[Triple]struct{})
	}
	g.triples[t] = struct{}{}
}

// Has reports if the triple is contained in this graph.
func (g *Graph) Has(t Triple) bool {
	if g == nil {
		return false
	}
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.triples)
}

// Iterate calls f for every triple until f returns false.
// Iteration order is unspecified.
func (g *Graph) Iterate(f func(Triple) bool) {
	if g == nil {
		return
	}
	for t := range g.triples {
		if !f(t) {
			return
		}
	}
}

// Triples returns the triples of this graph in deterministic order.
func (g *Graph) Triples() []Triple {
	if g == nil {
		return nil
	}
	ts := maps.Keys(g.triples)
	slices.SortFunc(ts, Triple.Compare)
	return ts
}

// Clone returns an independent copy.
func (g *Graph) Clone() *Graph {
	clone := NewGraph()
	g.Iterate(func(t Triple) bool {
		clone.triples[t] = struct{}{}
		return true
	})
	return clone
}

// Equal reports if both graphs hold exactly the same triples.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	equal := true
	g.Iterate(func(t Triple) bool {
		equal = other.Has(t)
		return equal
	})
	return equal
}

// Rename returns a copy of this graph with every renameable term
// replaced through iso. Terms without a mapping stay put.
func (g *Graph) Rename(iso *bimap.BiMap[Term]) *Graph {
	renamed := NewGraph()
	g.Iterate(func(t Triple) bool {
		renamed.Add(t.Rename(iso))
		return true
	})
	return renamed
}

// Tags returns the distinct concrete terms of this graph in deterministic order.
func (g *Graph) Tags() []Term {
	seen := make(map[Term]struct{})
	g.Iterate(func(t Triple) bool {
		t.Terms(func(term Term) {
			if !term.Renameable() {
				seen[term] = struct{}{}
			}
		})
		return true
	})
	tags := maps.Keys(seen)
	slices.SortFunc(tags, Term.Compare)
	return tags
}

// RenameableTerms returns the distinct renameable terms of this graph
// in deterministic order.
func (g *Graph) RenameableTerms() []Term {
	seen := make(map[Term]struct{})
	g.Iterate(func(t Triple) bool {
		t.Terms(func(term Term) {
			if term.Renameable() {
				seen[term] = struct{}{}
			}
		})
		return true
	})
	terms := maps.Keys(seen)
	slices.SortFunc(terms, Term.Compare)
	return terms
}

func (g *Graph) String() string {
	var builder strings.Builder
	builder.WriteString("{")
	for i, t := range g.Triples() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(t.String())
	}
	builder.WriteString("}")
	return builder.String()
}

// Ops implements the set algebra over [Graph] values the index works with.
type Ops struct{}

// New returns a fresh empty graph.
func (Ops) New() *Graph {
	return NewGraph()
}

// Intersect returns a new graph holding the triples contained in both a and b.
func (Ops) Intersect(a, b *Graph) *Graph {
	small, big := a, b
	if small.Len() > big.Len() {
		small, big = big, small
	}
	result := NewGraph()
	small.Iterate(func(t Triple) bool {
		if big.Has(t) {
			result.Add(t)
		}
		return true
	})
	return result
}

// Difference returns a new graph holding the triples of a not contained in b.
func (Ops) Difference(a, b *Graph) *Graph {
	result := NewGraph()
	a.Iterate(func(t Triple) bool {
		if !b.Has(t) {
			result.Add(t)
		}
		return true
	})
	return result
}

// Union returns a new graph holding the triples of both a and b.
func (Ops) Union(a, b *Graph) *Graph {
	result := a.Clone()
	b.Iterate(func(t Triple) bool {
		result.Add(t)
		return true
	})
	return result
}

// Rename applies iso to every renameable term of g.
func (Ops) Rename(g *Graph, iso *bimap.BiMap[Term]) *Graph {
	return g.Rename(iso)
}

// Size returns the number of triples of g.
func (Ops) Size(g *Graph) int {
	return g.Len()
}

// Equal reports if a and b hold exactly the same triples.
func (Ops) Equal(a, b *Graph) bool {
	return a.Equal(b)
}

// Tags returns the concrete terms of g.
func (Ops) Tags(g *Graph) []Term {
	return g.Tags()
}
