package isoindex

//spellchecker:words isoindex renameable subsumption rewiring

import (
	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// add inserts (key, insertGraph) at every position found below n.
// The insert graph is never renamed; positions describe how existing nodes
// map into it.
func (index *Index[K, G, V, T]) add(n *node[K, G, V, T], key K, insertGraph G, insertTags []T, baseIso, deltaIso *bimap.BiMap[V]) error {
	var positions []position[K, G, V, T]
	if err := index.findPositions(&positions, n, insertGraph, insertTags, baseIso, deltaIso, false, false); err != nil {
		return err
	}

	for i := range positions {
		if err := index.performAdd(key, &positions[i]); err != nil {
			return err
		}
	}
	return nil
}

// performAdd attaches key at the given position.
//
// An empty residual means the key's graph is isomorphic to the graphs
// already stored at the position's node, so the key only joins that node's
// alternative keys. Otherwise a node for the key is appended as a child,
// followed by two rewiring passes: edges of the parent whose targets turn
// out to subsume the new graph are re-routed through it, and the global tag
// index is consulted for stored graphs the new graph embeds into, drawing
// the missing edges.
func (index *Index[K, G, V, T]) performAdd(key K, pos *position[K, G, V, T]) error {
	nodeA := pos.node

	residualB := pos.residualGraph
	residualBTags := pos.residualTags

	// isomorphic to the existing node: record an alternative key
	if index.ops.Size(residualB) == 0 {
		nodeA.addAltKey(key, pos.iso.RemoveIdentity())
		index.rowOf[key] = nodeA
		return nil
	}

	transIsoAB := pos.deltaIso
	baseIsoAB := pos.iso
	baseIsoBA := baseIsoAB.Inverse()

	nodeB := index.nodes[key]
	if nodeB == nil {
		nodeB = newNode[K, G, V](index.compareTags)
		nodeB.key = key
		nodeB.hasKey = true
		nodeB.addAltKey(key, bimap.New[V]())
		index.nodes[key] = nodeB
		index.rowOf[key] = nodeB
	}

	// edges of nodeA whose targets might subsume the inserted graph
	directCandidates := nodeA.edgeIndex.SupersetsOf(residualBTags, false)

	nodeA.appendChild(nodeB, residualB, residualBTags, transIsoAB, baseIsoAB)

	viewGraph := residualB
	viewTags := residualBTags

	// pass 1: re-route direct edges of nodeA through nodeB where possible
	for _, edgeAC := range directCandidates {
		if edgeAC.to == nodeB {
			// the same key may already be a child under a different renaming
			continue
		}

		insertGraph := edgeAC.residualGraph
		insertTags := edgeAC.residualTags

		baseIsoBC, err := bimap.MapRangeVia(baseIsoBA, edgeAC.transIso)
		if err != nil {
			index.stats.CollisionsSkipped++
			index.log.LogDebug("rewiring skips edge, mapping collides", "err", err)
			continue
		}

		isSubsumed := false

		index.stats.MatcherCalls++
		isos := index.matcher.Match(baseIsoBC, viewGraph, insertGraph)
		for isos.Next() {
			isoBC := isos.Datum()
			if !isoBC.Compatible(baseIsoBC) {
				index.stats.IncompatibleIsos++
				continue
			}
			isSubsumed = true

			deltaIsoBC := isoBC.RemoveIdentity()

			mapped := index.ops.Rename(viewGraph, deltaIsoBC)
			residual := index.ops.Difference(insertGraph, mapped)
			residualTags := index.diffTags(insertTags, viewTags)

			nodeB.appendChild(edgeAC.to, residual, residualTags, deltaIsoBC, nil)
		}
		if err := isos.Err(); err != nil {
			return err
		}

		if isSubsumed {
			nodeA.removeEdge(edgeAC)
		}
	}

	// pass 2: stored graphs that the new graph embeds into wholesale
	graphA := index.keyToGraph[key]
	allViewTags, _ := index.graphTags.Get(key)

	for _, superKey := range index.graphTags.SupersetsOf(allViewTags, false) {
		if superKey == key {
			continue
		}
		target := index.nodes[superKey]
		if target == nil {
			// alternative keys are wired through their preferred node
			continue
		}

		graphB := index.keyToGraph[superKey]
		graphAInB := index.ops.Rename(graphA, baseIsoAB)
		if index.ops.Size(index.ops.Difference(graphAInB, graphB)) != 0 {
			continue
		}
		insertGraph := index.ops.Difference(graphB, graphAInB)

		// recompute the mappings already reachable between the position's
		// node and the remainder
		nodeGraph := index.ops.New()
		if nodeA.hasKey {
			nodeGraph = index.keyToGraph[nodeA.key]
		}

		var knownIsos []*bimap.BiMap[V]
		knownForms := make(map[string]struct{})
		index.stats.MatcherCalls++
		known := index.matcher.Match(bimap.New[V](), nodeGraph, insertGraph)
		for known.Next() {
			iso := known.Datum()
			knownIsos = append(knownIsos, iso)
			knownForms[iso.String()] = struct{}{}
		}
		if err := known.Err(); err != nil {
			return err
		}

		allInsertTags, _ := index.graphTags.Get(superKey)

		for _, knownAC := range knownIsos {
			baseIsoBC, err := bimap.MapRangeVia(baseIsoBA, knownAC)
			if err != nil {
				index.stats.CollisionsSkipped++
				index.log.LogDebug("rewiring skips known mapping, collision", "err", err)
				continue
			}

			index.stats.MatcherCalls++
			isos := index.matcher.Match(baseIsoBC, viewGraph, insertGraph)
			for isos.Next() {
				isoBC := isos.Datum()
				if !isoBC.Compatible(baseIsoBC) {
					index.stats.IncompatibleIsos++
					continue
				}

				deltaIsoBC := isoBC.RemoveIdentity()

				viaAC, err := bimap.MapRangeVia(baseIsoAB, deltaIsoBC)
				if err != nil {
					index.stats.CollisionsSkipped++
					continue
				}
				if _, dup := knownForms[viaAC.RemoveIdentity().String()]; dup {
					continue
				}

				mapped := index.ops.Rename(viewGraph, deltaIsoBC)
				residual := index.ops.Difference(insertGraph, mapped)
				residualTags := index.diffTags(allInsertTags, allViewTags)

				nodeB.appendChild(target, residual, residualTags, deltaIsoBC, nil)
			}
			if err := isos.Err(); err != nil {
				return err
			}
		}
	}

	return nil
}
