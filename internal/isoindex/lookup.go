package isoindex

//spellchecker:words isoindex renameable

import (
	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// position marks a node of the hierarchy the remainder of a graph belongs
// under, together with the mapping state accumulated on the way down.
type position[K comparable, G any, V comparable, T comparable] struct {
	node *node[K, G, V, T]

	residualGraph G
	residualTags  []T

	// iso maps vertices of the graphs along the path onto query vertices
	iso *bimap.BiMap[V]

	// deltaIso is the non-identity part of the final step's mapping
	deltaIso *bimap.BiMap[V]
}

// findPositions descends from n and collects every position where the
// remaining insert graph belongs.
//
// Descent follows edges whose residual tags are a subset of the insert
// graph's tags. For every such edge, the accumulated mapping is renamed
// through the edge and the matcher enumerates embeddings of the edge's
// residual graph into the insert graph; each embedding strips the covered
// part and recurses. baseIso is extended in place during the search and
// restored afterwards.
//
// In retrieval mode every visited node yields a position; otherwise only
// nodes whose graph is not subsumed by a child do. With exactOnly set,
// positions are only recorded once the insert graph is exhausted.
func (index *Index[K, G, V, T]) findPositions(
	out *[]position[K, G, V, T],
	n *node[K, G, V, T],
	insertGraph G, insertTags []T,
	baseIso, latestDelta *bimap.BiMap[V],
	retrievalMode, exactOnly bool,
) error {
	isSubsumed := false

	candidates := n.edgeIndex.SubsetsOf(insertTags, false)
	index.stats.EdgesSkippedByTags += uint64(n.edgeCount() - len(candidates))

	for _, cand := range candidates {
		index.stats.EdgesConsidered++
		viewGraph := cand.residualGraph

		// carry the mapping over to the child's naming
		transBaseIso, err := bimap.MapDomainVia(baseIso, cand.transIso)
		if err != nil {
			index.stats.CollisionsSkipped++
			index.log.LogDebug("skipping edge, mapping collides", "err", err)
			continue
		}

		index.stats.MatcherCalls++
		isos := index.matcher.Match(transBaseIso, viewGraph, insertGraph)
		for isos.Next() {
			iso := isos.Datum()

			if !iso.Compatible(transBaseIso) {
				index.stats.IncompatibleIsos++
				continue
			}
			isSubsumed = true

			deltaIso := iso.RemoveIdentity()

			// extend the mapping in place, restoring it after the recursion
			var affected []V
			conflict := false
			iso.Iterate(func(key, value V) bool {
				if transBaseIso.HasKey(key) {
					return true
				}
				if err := transBaseIso.Set(key, value); err != nil {
					conflict = true
					return false
				}
				affected = append(affected, key)
				return true
			})
			if conflict {
				for _, key := range affected {
					transBaseIso.Delete(key)
				}
				index.stats.CollisionsSkipped++
				index.log.LogDebug("skipping embedding, extension collides")
				continue
			}

			mapped := index.ops.Rename(viewGraph, iso)
			residual := index.ops.Difference(insertGraph, mapped)
			residualTags := index.diffTags(insertTags, cand.residualTags)

			if err := index.findPositions(out, cand.to, residual, residualTags, transBaseIso, deltaIso, retrievalMode, exactOnly); err != nil {
				isos.Close()
				return err
			}

			for _, key := range affected {
				transBaseIso.Delete(key)
			}
		}
		if err := isos.Err(); err != nil {
			return err
		}
	}

	if !isSubsumed || retrievalMode {
		if !exactOnly || index.ops.Size(insertGraph) == 0 {
			*out = append(*out, position[K, G, V, T]{
				node:          n,
				residualGraph: insertGraph,
				residualTags:  insertTags,
				iso:           baseIso.Clone(),
				deltaIso:      latestDelta,
			})
		}
	}
	return nil
}

// Position is a single raw lookup result: a stored preferred key together
// with the mapping embedding its graph into the query, before alternative
// key expansion and identity removal.
type Position[K comparable, G any, V comparable, T comparable] struct {
	// Key is the preferred key of the matched node.
	Key K

	// Iso maps the stored graph's vertices onto query vertices.
	Iso *bimap.BiMap[V]

	// ResidualGraph is the part of the query not covered by the stored graph.
	ResidualGraph G

	// ResidualTags are the query tags not contributed by the stored graph.
	ResidualTags []T
}

// LookupRaw returns lookup results keyed by preferred key only, without
// alternative key expansion. Mappings keep their identity pairs.
// A nil base mapping means an unconstrained lookup.
func (index *Index[K, G, V, T]) LookupRaw(query G, exact bool, base *bimap.BiMap[V]) (map[K][]Position[K, G, V, T], error) {
	positions, err := index.lookupPositions(query, exact, base)
	if err != nil {
		return nil, err
	}

	result := make(map[K][]Position[K, G, V, T])
	for _, pos := range positions {
		if !pos.node.hasKey {
			continue
		}
		result[pos.node.key] = append(result[pos.node.key], Position[K, G, V, T]{
			Key:           pos.node.key,
			Iso:           pos.iso,
			ResidualGraph: pos.residualGraph,
			ResidualTags:  pos.residualTags,
		})
	}
	return result, nil
}

// Lookup returns for every stored key whose graph embeds into the query the
// witnessing mappings, identity pairs removed. With exact set, only keys
// whose graph covers the query completely are returned.
func (index *Index[K, G, V, T]) Lookup(query G, exact bool) (map[K][]*bimap.BiMap[V], error) {
	return index.LookupWith(query, exact, nil)
}

// LookupWith is [Index.Lookup] constrained by a base mapping: every
// returned mapping extends base.
func (index *Index[K, G, V, T]) LookupWith(query G, exact bool, base *bimap.BiMap[V]) (map[K][]*bimap.BiMap[V], error) {
	positions, err := index.lookupPositions(query, exact, base)
	if err != nil {
		return nil, err
	}

	result := make(map[K][]*bimap.BiMap[V])
	seen := make(map[K]map[string]struct{})

	for _, pos := range positions {
		for altKey, isos := range pos.node.altKeys {
			for _, transIso := range isos {
				altIso, err := bimap.MapDomainVia(pos.iso, transIso)
				if err != nil {
					index.stats.CollisionsSkipped++
					index.log.LogDebug("skipping alternative key, mapping collides", "err", err)
					continue
				}
				delta := altIso.RemoveIdentity()

				forms := seen[altKey]
				if forms == nil {
					forms = make(map[string]struct{})
					seen[altKey] = forms
				}
				form := delta.String()
				if _, dup := forms[form]; dup {
					continue
				}
				forms[form] = struct{}{}
				result[altKey] = append(result[altKey], delta)
			}
		}
	}
	return result, nil
}

// LookupFlat returns lookup results keyed by preferred key, skipping
// alternative key expansion. Mappings keep their identity pairs.
func (index *Index[K, G, V, T]) LookupFlat(query G, exact bool) (map[K][]*bimap.BiMap[V], error) {
	positions, err := index.lookupPositions(query, exact, nil)
	if err != nil {
		return nil, err
	}

	result := make(map[K][]*bimap.BiMap[V])
	seen := make(map[K]map[string]struct{})
	for _, pos := range positions {
		if !pos.node.hasKey {
			continue
		}
		key := pos.node.key
		forms := seen[key]
		if forms == nil {
			forms = make(map[string]struct{})
			seen[key] = forms
		}
		form := pos.iso.String()
		if _, dup := forms[form]; dup {
			continue
		}
		forms[form] = struct{}{}
		result[key] = append(result[key], pos.iso)
	}
	return result, nil
}

func (index *Index[K, G, V, T]) lookupPositions(query G, exact bool, base *bimap.BiMap[V]) ([]position[K, G, V, T], error) {
	if base == nil {
		base = bimap.New[V]()
	}
	tags := index.canonTags(index.extractTags(query))

	var positions []position[K, G, V, T]
	if err := index.findPositions(&positions, index.root, query, tags, base.Clone(), bimap.New[V](), true, exact); err != nil {
		return nil, err
	}
	return positions, nil
}
