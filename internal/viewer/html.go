package viewer

//spellchecker:words subsumption

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/net/html"
)

// htmlIndex renders a plain listing of the stored keys with links into the
// JSON API and the tree dump.
func (viewer *Viewer) htmlIndex(w http.ResponseWriter, r *http.Request) {
	keys := viewer.Index.Keys()
	slices.Sort(keys)

	var builder strings.Builder
	builder.WriteString("<!DOCTYPE html><html><head><title>subsume</title></head><body>")
	fmt.Fprintf(&builder, "<h1>subsume</h1><p>%d stored graphs. <a href=\"/tree\">hierarchy</a>, <a href=\"/api/v1/stats\">stats</a></p><ul>", len(keys))
	for _, key := range keys {
		escaped := html.EscapeString(key)
		fmt.Fprintf(&builder, "<li><a href=\"/api/v1/graph/%s\">%s</a></li>", escaped, escaped)
	}
	builder.WriteString("</ul></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(builder.String()))
}

// htmlTree renders the subsumption hierarchy as preformatted text.
func (viewer *Viewer) htmlTree(w http.ResponseWriter, r *http.Request) {
	var dump strings.Builder
	if err := viewer.Index.PrintTree(&dump); err != nil {
		viewer.Status.LogError("tree dump failed", err)
		http.Error(w, "tree dump failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><body><pre>%s</pre></body></html>", html.EscapeString(dump.String()))
}
