// Command subsume indexes the named graphs of an N-Quads file and answers
// sub-graph isomorphism queries against them: run a lookup, print the
// subsumption hierarchy, export to CSV or SQL, or serve a debug viewer.
package main

//spellchecker:words subsume nquads isoindex pprof

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/FAU-CDI/subsume"
	"github.com/FAU-CDI/subsume/internal/isoindex"
	"github.com/FAU-CDI/subsume/internal/loader"
	"github.com/FAU-CDI/subsume/internal/status"
	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/FAU-CDI/subsume/internal/viewer"
	"github.com/FAU-CDI/subsume/pkg/bimap"
	"github.com/dustin/go-humanize"
	"github.com/pkg/browser"
	"github.com/pkg/profile"
	"golang.org/x/exp/slices"
)

func main() {
	st := status.NewStatus(os.Stderr)

	if debugProfile != "" {
		defer profile.Start(profile.ProfilePath(debugProfile)).Stop()
	}
	if debugServer != "" {
		go listenDebug(st)
	}

	nq, err := subsume.FindSource(nArgs...)
	if err != nil {
		st.Log("Usage: subsume [-help] [...flags] /path/to/nquads")
		flag.PrintDefaults()
		st.LogFatal("find source", err)
	}

	// read the data
	var dataset *loader.Dataset
	err = st.DoStage(status.StageLoadQuads, func() (err error) {
		dataset, err = loader.ReadFile(nq, st)
		return
	})
	if err != nil {
		st.LogFatal("load quads", err)
	}

	// build the index
	index := isoindex.New[string, *triples.Graph, triples.Term, triples.Term](
		triples.Ops{}, triples.GraphMatcher{},
		func(g *triples.Graph) []triples.Term { return g.Tags() },
		triples.Term.Compare, st)

	err = st.DoStage(status.StageBuildIndex, func() error {
		keys := dataset.Keys()
		for i, key := range keys {
			if err := index.Put(key, dataset.Named[key]); err != nil {
				return err
			}
			st.SetCT(i+1, len(keys))
		}
		return nil
	})
	if err != nil {
		st.LogFatal("build index", err)
	}
	st.Log("finished indexing",
		"graphs", humanize.Comma(int64(index.Len())),
		"quads", humanize.Comma(int64(dataset.Quads)),
		"stats", index.Stats())

	// run the requested action
	switch {
	case csvPath != "" || sqlite != "" || mysql != "":
		doExport(index, st)
	case lookupPath != "":
		doLookup(index, st)
	case printTree:
		if err := index.PrintTree(os.Stdout); err != nil {
			st.LogFatal("print tree", err)
		}
	default:
		serve(index, st)
	}
}

// doLookup reads the query file and prints every match.
func doLookup(index *viewer.Index, st *status.Status) {
	var result map[string][]*bimap.BiMap[triples.Term]
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
		result, err = index.Lookup(merged, exact)
		return err
	})
	if err != nil {
		st.LogFatal("lookup", err)
	}

	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	matches := 0
	for _, key := range keys {
		for _, iso := range result[key] {
			fmt.Printf("%s\t%s\n", key, iso.String())
			matches++
		}
	}
	st.Log("lookup finished",
		"keys", humanize.Comma(int64(len(keys))),
		"matches", humanize.Comma(int64(matches)),
		"stats", index.Stats())
}

// serve starts the debug viewer.
func serve(index *viewer.Index, st *status.Status) {
	handler := &viewer.Viewer{Index: index, Status: st}
	st.DoStage(status.StageHandler, func() error {
		handler.Prepare()
		return nil
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		st.LogFatal("listen", err)
	}
	st.Log("listen", "addr", addr)

	if open {
		url := "http://" + addr
		if err := browser.OpenURL(url); err != nil {
			st.LogError("open browser", err, "url", url)
		}
	}

	server := &http.Server{Handler: handler}
	if err := server.Serve(listener); err != nil {
		st.LogFatal("serve", err)
	}
}

// ===================

var nArgs []string

var addr = ":3000"
var open bool

var lookupPath string
var exact bool
var printTree bool

var csvPath string
var sqlite string
var mysql string

var sqlBatchSize = 1000
var debugProfile string
var debugServer string

func init() {
	var legalFlag bool
	flag.BoolVar(&legalFlag, "legal", legalFlag, "Display legal notices and exit")
	defer func() {
		if legalFlag {
			fmt.Print(subsume.LegalText())
			os.Exit(0)
		}
	}()

	flag.StringVar(&addr, "addr", addr, "Address to start the viewer server at")
	flag.BoolVar(&open, "open", open, "Open the viewer in a browser after startup")

	flag.StringVar(&lookupPath, "lookup", lookupPath, "Run a lookup with the query graph from the given nquads file and exit")
	flag.BoolVar(&exact, "exact", exact, "Only report keys whose graph covers the query completely")
	flag.BoolVar(&printTree, "print-tree", printTree, "Print the subsumption hierarchy and exit")

	flag.StringVar(&csvPath, "csv", csvPath, "Export stored graphs and lookup results as CSV files into the given directory")
	flag.StringVar(&sqlite, "sqlite", sqlite, "Export into the given sqlite database")
	flag.StringVar(&mysql, "mysql", mysql, "Export into the given mysql database")
	flag.IntVar(&sqlBatchSize, "sql-batch", sqlBatchSize, "Number of rows per SQL insert batch")

	flag.StringVar(&debugProfile, "debug-profile", debugProfile, "Write a CPU profile to the given directory")
	flag.StringVar(&debugServer, "debug-listen", debugServer, "Start a profiling server on the given address")

	flag.Parse()
	nArgs = flag.Args()
}
