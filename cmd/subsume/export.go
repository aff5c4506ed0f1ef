package main

//spellchecker:words subsume nquads sqlite mysql

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/FAU-CDI/subsume/internal/exporter"
	"github.com/FAU-CDI/subsume/internal/loader"
	"github.com/FAU-CDI/subsume/internal/status"
	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/FAU-CDI/subsume/internal/viewer"
	"github.com/FAU-CDI/subsume/pkg/bimap"
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
)

// see https://www.sqlite.org/limits.html
const sqliteMaxQueryVar = 32766

var errMultipleExports = errors.New("more than one of -csv, -sqlite and -mysql was given")

// doExport writes stored graphs, and lookup results when -lookup is also
// given, to the selected destination.
func doExport(index *viewer.Index, st *status.Status) {
	selected := 0
	for _, value := range []string{csvPath, sqlite, mysql} {
		if value != "" {
			selected++
		}
	}
	if selected > 1 {
		st.LogFatal("parse arguments", errMultipleExports)
	}

	var results map[string][]*bimap.BiMap[triples.Term]
	if lookupPath != "" {
		err := st.DoStage(status.StageLookup, func() error {
			query, err := loader.ReadFile(lookupPath, st)
			if err != nil {
				return err
			}
			merged := query.Default.Clone()
			for _, name := range query.Keys() {
				query.Named[name].Iterate(func(triple triples.Triple) bool {
					merged.Add(triple)
					return true
				})
			}
			results, err = index.Lookup(merged, exact)
			return err
		})
		if err != nil {
			st.LogFatal("lookup", err)
		}
	}

	switch {
	case csvPath != "":
		doCSV(index, results, st)
	case sqlite != "":
		doSQL(index, results, "sqlite", sqlite, st)
	case mysql != "":
		doSQL(index, results, "mysql", mysql, st)
	}
}

// doCSV exports into graphs.csv and matches.csv below the given directory.
func doCSV(index *viewer.Index, results map[string][]*bimap.BiMap[triples.Term], st *status.Status) {
	err := st.DoStage(status.StageExportCSV, func() (err error) {
		if err := os.MkdirAll(csvPath, os.ModePerm); err != nil {
			return err
		}

		graphs, err := os.Create(filepath.Join(csvPath, "graphs.csv"))
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, graphs.Close())
		}()

		matches, err := os.Create(filepath.Join(csvPath, "matches.csv"))
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, matches.Close())
		}()

		return exporter.Export(index, results, &exporter.CSV{Graphs: graphs, Matches: matches}, st)
	})
	if err != nil {
		st.LogFatal("export csv", err)
	}
}

func doSQL(index *viewer.Index, results map[string][]*bimap.BiMap[triples.Term], proto, dsn string, st *status.Status) {
	db, err := sql.Open(proto, dsn)
	if err != nil {
		st.LogFatal("open sql", err)
	}

	err = st.DoStage(status.StageExportSQL, func() error {
		return exporter.Export(index, results, &exporter.SQL{
			DB:          db,
			BatchSize:   sqlBatchSize,
			MaxQueryVar: sqliteMaxQueryVar,
		}, st)
	})
	if err != nil {
		st.LogFatal("export sql", err)
	}
}
