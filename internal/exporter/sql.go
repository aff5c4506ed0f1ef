package exporter

//spellchecker:words sqlbuilder

import (
	"database/sql"
	"errors"

	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/FAU-CDI/subsume/pkg/bimap"
	"github.com/huandu/go-sqlbuilder"
)

// SQL implements an exporter storing data inside an sql database.
// The caller opens the database and registers the driver; [SQL.Close]
// closes it.
type SQL struct {
	DB *sql.DB

	BatchSize   int // rows buffered before an insert
	MaxQueryVar int // maximum number of query variables per statement

	graphRows [][]any
	matchRows [][]any
}

const (
	graphTable = "graphs"
	matchTable = "matches"

	labelColumn   = "label"
	triplesColumn = "triples"
	graphColumn   = "graph"
	mappingColumn = "mapping"
)

var errInsufficientQueryVars = errors.New("insufficient query variables")

func (s *SQL) Begin() error {
	for _, table := range []string{graphTable, matchTable} {
		if _, err := s.DB.Exec("DROP TABLE IF EXISTS " + table + ";"); err != nil {
			return err
		}
	}

	graphs := sqlbuilder.CreateTable(graphTable).IfNotExists()
	graphs.Define(labelColumn, "TEXT", "NOT NULL")
	graphs.Define(triplesColumn, "INTEGER", "NOT NULL")
	graphs.Define(graphColumn, "TEXT", "NOT NULL")
	if _, err := s.DB.Exec(graphs.Build()); err != nil {
		return err
	}

	matches := sqlbuilder.CreateTable(matchTable).IfNotExists()
	matches.Define(labelColumn, "TEXT", "NOT NULL")
	matches.Define(mappingColumn, "TEXT", "NOT NULL")
	_, err := s.DB.Exec(matches.Build())
	return err
}

func (s *SQL) AddGraph(key string, graph *triples.Graph) error {
	s.graphRows = append(s.graphRows, []any{key, graph.Len(), graph.String()})
	if len(s.graphRows) < s.BatchSize {
		return nil
	}
	return s.flushGraphs()
}

func (s *SQL) AddMatch(key string, iso *bimap.BiMap[triples.Term]) error {
	s.matchRows = append(s.matchRows, []any{key, iso.String()})
	if len(s.matchRows) < s.BatchSize {
		return nil
	}
	return s.flushMatches()
}

func (s *SQL) End() error {
	if err := s.flushGraphs(); err != nil {
		return err
	}
	return s.flushMatches()
}

func (s *SQL) Close() error {
	return s.DB.Close()
}

func (s *SQL) flushGraphs() error {
	rows := s.graphRows
	s.graphRows = nil
	return s.execInsert(graphTable, []string{labelColumn, triplesColumn, graphColumn}, rows)
}

func (s *SQL) flushMatches() error {
	rows := s.matchRows
	s.matchRows = nil
	return s.execInsert(matchTable, []string{labelColumn, mappingColumn}, rows)
}

// execInsert inserts values into the given table and columns.
// When a single statement would exceed the limit on query variables,
// multiple inserts are executed.
func (s *SQL) execInsert(table string, columns []string, values [][]any) error {
	if len(values) == 0 {
		return nil
	}

	chunkSize := s.MaxQueryVar / len(columns)
	if chunkSize == 0 {
		return errInsufficientQueryVars
	}
	if s.BatchSize > 0 && s.BatchSize < chunkSize {
		chunkSize = s.BatchSize
	}

	for start := 0; start < len(values); start += chunkSize {
		end := start + chunkSize
		if end > len(values) {
			end = len(values)
		}

		insert := sqlbuilder.InsertInto(table)
		insert.Cols(columns...)
		for _, row := range values[start:end] {
			insert.Values(row...)
		}

		query, args := insert.Build()
		if _, err := s.DB.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}
