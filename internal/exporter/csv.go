package exporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/FAU-CDI/subsume/pkg/bimap"
)

// CSV implements an exporter writing two CSV streams, one for stored
// graphs and one for lookup matches. The writers stay owned by the caller.
type CSV struct {
	Graphs  io.Writer
	Matches io.Writer

	graphs  *csv.Writer
	matches *csv.Writer
}

func (c *CSV) Begin() error {
	c.graphs = csv.NewWriter(c.Graphs)
	c.matches = csv.NewWriter(c.Matches)

	if err := c.graphs.Write([]string{"key", "triples", "graph"}); err != nil {
		return err
	}
	return c.matches.Write([]string{"key", "mapping"})
}

func (c *CSV) AddGraph(key string, graph *triples.Graph) error {
	return c.graphs.Write([]string{key, strconv.Itoa(graph.Len()), graph.String()})
}

func (c *CSV) AddMatch(key string, iso *bimap.BiMap[triples.Term]) error {
	return c.matches.Write([]string{key, iso.String()})
}

func (c *CSV) End() error {
	c.graphs.Flush()
	if err := c.graphs.Error(); err != nil {
		return err
	}
	c.matches.Flush()
	return c.matches.Error()
}

func (c *CSV) Close() error {
	return nil // the caller owns the writers
}
