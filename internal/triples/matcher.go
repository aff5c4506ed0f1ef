package triples

//spellchecker:words renameable backtracking

import (
	"github.com/FAU-CDI/subsume/pkg/bimap"
	"github.com/tkw1536/pkglib/iterator"
)

// GraphMatcher enumerates sub-graph isomorphisms between graphs by
// backtracking over triples.
//
// An isomorphism maps the renameable terms of the pattern graph onto
// terms of the target graph, injectively, such that the renamed pattern
// is a sub-graph of the target. Concrete pattern terms only ever match
// themselves; renameable pattern terms may bind to any target term,
// renameable or concrete.
//
// GraphMatcher is complete: it enumerates every such isomorphism.
type GraphMatcher struct{}

// Match lazily enumerates the isomorphisms extending base that embed
// pattern into target. Every yielded mapping is an independent clone;
// abandoning the iterator early is safe.
func (GraphMatcher) Match(base *bimap.BiMap[Term], pattern, target *Graph) iterator.Iterator[*bimap.BiMap[Term]] {
	return iterator.New(func(sender iterator.Generator[*bimap.BiMap[Term]]) {
		defer sender.Return()

		state := &matchState{
			sender:  sender,
			pattern: pattern.Triples(),
			targets: target.Triples(),
			iso:     base.Clone(),
		}
		state.matchFrom(0)
	})
}

type matchState struct {
	sender  iterator.Generator[*bimap.BiMap[Term]]
	pattern []Triple
	targets []Triple
	iso     *bimap.BiMap[Term]
}

// matchFrom extends the working mapping to cover pattern[index:].
// It reports if enumeration should stop.
func (state *matchState) matchFrom(index int) (abort bool) {
	if index == len(state.pattern) {
		return state.sender.Yield(state.iso.Clone())
	}

	for _, candidate := range state.targets {
		added, ok := state.unify(state.pattern[index], candidate)
		if !ok {
			state.rollback(added)
			continue
		}
		if state.matchFrom(index + 1) {
			state.rollback(added)
			return true
		}
		state.rollback(added)
	}
	return false
}

// unify extends the working mapping so that p maps onto t.
// It returns the pairs added, which the caller must roll back.
func (state *matchState) unify(p, t Triple) (added []Term, ok bool) {
	if added, ok = state.unifyTerm(p.Subject, t.Subject, added); !ok {
		return added, false
	}
	if added, ok = state.unifyTerm(p.Predicate, t.Predicate, added); !ok {
		return added, false
	}
	return state.unifyTerm(p.Object, t.Object, added)
}

func (state *matchState) unifyTerm(p, t Term, added []Term) ([]Term, bool) {
	if !p.Renameable() {
		return added, p == t
	}
	if mapped, ok := state.iso.Get(p); ok {
		return added, mapped == t
	}
	if state.iso.HasValue(t) {
		return added, false
	}
	if err := state.iso.Set(p, t); err != nil {
		return added, false
	}
	return append(added, p), true
}

func (state *matchState) rollback(added []Term) {
	for _, key := range added {
		state.iso.Delete(key)
	}
}
