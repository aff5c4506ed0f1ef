package isoindex

//spellchecker:words isoindex

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// PrintTree writes a human readable dump of the subsumption hierarchy to w.
// Children are ordered by key and renaming form, so the output is stable.
func (index *Index[K, G, V, T]) PrintTree(w io.Writer) error {
	return index.printNode(w, index.root, bimap.New[V](), 0)
}

func (index *Index[K, G, V, T]) printNode(w io.Writer, n *node[K, G, V, T], transIso *bimap.BiMap[V], depth int) error {
	indent := strings.Repeat("  ", depth)

	label := "(root)"
	if n.hasKey {
		label = fmt.Sprint(n.key)
	}

	alts := make([]string, 0, len(n.altKeys))
	for altKey := range n.altKeys {
		alts = append(alts, fmt.Sprint(altKey))
	}
	sort.Strings(alts)

	if depth == 0 {
		if _, err := fmt.Fprintf(w, "%s%s alts=[%s]\n", indent, label, strings.Join(alts, ", ")); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "%s%s alts=[%s] via %s\n", indent, label, strings.Join(alts, ", "), transIso.String()); err != nil {
			return err
		}
	}

	type childEdge struct {
		sortKey string
		edge    *edge[K, G, V, T]
	}
	var ordered []childEdge
	n.edges(func(e *edge[K, G, V, T]) bool {
		ordered = append(ordered, childEdge{
			sortKey: fmt.Sprint(e.to.key) + "\x00" + e.transIso.String(),
			edge:    e,
		})
		return true
	})
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].sortKey < ordered[j].sortKey
	})

	for _, child := range ordered {
		if err := index.printNode(w, child.edge.to, child.edge.transIso, depth+1); err != nil {
			return err
		}
	}
	return nil
}
