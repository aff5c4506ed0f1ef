package triples_test

//spellchecker:words renameable

import (
	"testing"

	"github.com/FAU-CDI/subsume/internal/triples"
	"github.com/FAU-CDI/subsume/pkg/bimap"
	"github.com/tkw1536/pkglib/iterator"
)

// tiny constructors for test graphs
func c(v string) triples.Term { return triples.NewConcrete(v) }
func b(v string) triples.Term { return triples.NewBlank(v) }
func v(v string) triples.Term { return triples.NewAbstract(v) }

func tr(s, p, o triples.Term) triples.Triple { return triples.NewTriple(s, p, o) }

func TestTermRenameable(t *testing.T) {
	if c("x").Renameable() {
		t.Error("concrete term renameable")
	}
	if !b("x").Renameable() || !v("x").Renameable() {
		t.Error("blank or abstract term not renameable")
	}
	if c("x") == b("x") {
		t.Error("concrete and blank term with equal value compare equal")
	}
}

func TestGraphBasics(t *testing.T) {
	g := triples.NewGraph(
		tr(b("a"), c("p"), b("b")),
		tr(b("b"), c("p"), c("o")),
	)

	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}
	if !g.Has(tr(b("a"), c("p"), b("b"))) {
		t.Error("Has missed a stored triple")
	}
	g.Add(tr(b("a"), c("p"), b("b"))) // duplicate
	if g.Len() != 2 {
		t.Errorf("Len = %d after duplicate Add, want 2", g.Len())
	}

	clone := g.Clone()
	clone.Add(tr(b("c"), c("p"), b("a")))
	if g.Len() != 2 {
		t.Error("Add on clone modified original")
	}
	if !g.Equal(g.Clone()) {
		t.Error("graph not Equal to its clone")
	}
	if g.Equal(clone) {
		t.Error("graph Equal to a bigger clone")
	}
}

func TestGraphTags(t *testing.T) {
	g := triples.NewGraph(
		tr(b("a"), c("p"), c("o")),
		tr(b("a"), c("q"), b("b")),
	)

	tags := g.Tags()
	if len(tags) != 3 {
		t.Fatalf("Tags = %v, want 3 concrete terms", tags)
	}
	for _, tag := range tags {
		if tag.Renameable() {
			t.Errorf("Tags contains renameable term %v", tag)
		}
	}

	renameable := g.RenameableTerms()
	if len(renameable) != 2 {
		t.Errorf("RenameableTerms = %v, want 2", renameable)
	}
}

func TestGraphRename(t *testing.T) {
	g := triples.NewGraph(tr(b("a"), c("p"), b("b")))
	iso := bimap.FromPairs([2]triples.Term{b("a"), b("x")})

	renamed := g.Rename(iso)
	want := triples.NewGraph(tr(b("x"), c("p"), b("b")))
	if !renamed.Equal(want) {
		t.Errorf("Rename = %v, want %v", renamed, want)
	}
	if !g.Has(tr(b("a"), c("p"), b("b"))) {
		t.Error("Rename modified receiver")
	}
}

func TestOpsAlgebra(t *testing.T) {
	var ops triples.Ops
	a := triples.NewGraph(tr(b("x"), c("p"), c("1")), tr(b("x"), c("p"), c("2")))
	bg := triples.NewGraph(tr(b("x"), c("p"), c("2")), tr(b("x"), c("p"), c("3")))

	if got := ops.Intersect(a, bg); got.Len() != 1 || !got.Has(tr(b("x"), c("p"), c("2"))) {
		t.Errorf("Intersect = %v", got)
	}
	if got := ops.Difference(a, bg); got.Len() != 1 || !got.Has(tr(b("x"), c("p"), c("1"))) {
		t.Errorf("Difference = %v", got)
	}
	if got := ops.Union(a, bg); got.Len() != 3 {
		t.Errorf("Union = %v", got)
	}
	if ops.Size(a) != 2 {
		t.Errorf("Size = %d, want 2", ops.Size(a))
	}
}

// collect drains the matcher into a slice.
func collect(t *testing.T, it iterator.Iterator[*bimap.BiMap[triples.Term]]) []*bimap.BiMap[triples.Term] {
	t.Helper()
	var isos []*bimap.BiMap[triples.Term]
	for it.Next() {
		isos = append(isos, it.Datum())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("matcher: %v", err)
	}
	return isos
}

func TestMatcherSingleTriple(t *testing.T) {
	var matcher triples.GraphMatcher
	pattern := triples.NewGraph(tr(b("x"), c("p"), c("o")))
	target := triples.NewGraph(
		tr(b("a"), c("p"), c("o")),
		tr(b("b"), c("p"), c("o")),
		tr(b("c"), c("q"), c("o")),
	)

	isos := collect(t, matcher.Match(bimap.New[triples.Term](), pattern, target))
	if len(isos) != 2 {
		t.Fatalf("got %d isos, want 2", len(isos))
	}
	for _, iso := range isos {
		mapped, ok := iso.Get(b("x"))
		if !ok || (mapped != b("a") && mapped != b("b")) {
			t.Errorf("iso maps x to %v", mapped)
		}
	}
}

func TestMatcherInjective(t *testing.T) {
	var matcher triples.GraphMatcher
	// x and y must map to distinct vertices
	pattern := triples.NewGraph(
		tr(b("x"), c("p"), b("y")),
	)
	target := triples.NewGraph(
		tr(b("a"), c("p"), b("a")),
	)

	isos := collect(t, matcher.Match(bimap.New[triples.Term](), pattern, target))
	if len(isos) != 0 {
		t.Errorf("got %d isos, want 0: x and y cannot share a target", len(isos))
	}
}

func TestMatcherMultiTriple(t *testing.T) {
	var matcher triples.GraphMatcher
	pattern := triples.NewGraph(
		tr(b("x"), c("p"), b("y")),
		tr(b("y"), c("p"), b("z")),
	)
	target := triples.NewGraph(
		tr(b("1"), c("p"), b("2")),
		tr(b("2"), c("p"), b("3")),
		tr(b("3"), c("p"), b("4")),
	)

	isos := collect(t, matcher.Match(bimap.New[triples.Term](), pattern, target))
	if len(isos) != 2 {
		t.Fatalf("got %d isos, want 2 chains", len(isos))
	}
	for _, iso := range isos {
		renamed := pattern.Rename(iso)
		contained := true
		renamed.Iterate(func(tp triples.Triple) bool {
			contained = target.Has(tp)
			return contained
		})
		if !contained {
			t.Errorf("iso %v does not embed pattern", iso)
		}
	}
}

func TestMatcherBaseConstraint(t *testing.T) {
	var matcher triples.GraphMatcher
	pattern := triples.NewGraph(tr(b("x"), c("p"), b("y")))
	target := triples.NewGraph(
		tr(b("1"), c("p"), b("2")),
		tr(b("3"), c("p"), b("4")),
	)

	base := bimap.FromPairs([2]triples.Term{b("x"), b("3")})
	isos := collect(t, matcher.Match(base, pattern, target))
	if len(isos) != 1 {
		t.Fatalf("got %d isos, want 1 under base constraint", len(isos))
	}
	if mapped, _ := isos[0].Get(b("y")); mapped != b("4") {
		t.Errorf("y mapped to %v, want _:4", mapped)
	}
}

func TestMatcherVariableBindsConcrete(t *testing.T) {
	var matcher triples.GraphMatcher
	pattern := triples.NewGraph(
		tr(v("z"), c("type"), c("Person")),
		tr(v("z"), c("age"), v("a")),
		tr(v("z"), c("name"), v("n")),
	)
	target := triples.NewGraph(
		tr(v("p"), c("type"), c("Person")),
		tr(v("p"), c("age"), c("30")),
		tr(v("p"), c("name"), c("Ada")),
	)

	isos := collect(t, matcher.Match(bimap.New[triples.Term](), pattern, target))
	if len(isos) != 1 {
		t.Fatalf("got %d isos, want 1", len(isos))
	}
	iso := isos[0]
	if mapped, _ := iso.Get(v("z")); mapped != v("p") {
		t.Errorf("z mapped to %v, want ?p", mapped)
	}
	if mapped, _ := iso.Get(v("a")); mapped != c("30") {
		t.Errorf("a mapped to %v, want 30", mapped)
	}
	if mapped, _ := iso.Get(v("n")); mapped != c("Ada") {
		t.Errorf("n mapped to %v, want Ada", mapped)
	}
	renamed := pattern.Rename(iso)
	contained := true
	renamed.Iterate(func(tp triples.Triple) bool {
		contained = target.Has(tp)
		return contained
	})
	if !contained {
		t.Errorf("iso %v does not embed pattern", iso)
	}
}

func TestMatcherConcreteMismatch(t *testing.T) {
	var matcher triples.GraphMatcher
	pattern := triples.NewGraph(tr(b("x"), c("p"), c("o")))
	target := triples.NewGraph(tr(b("a"), c("q"), c("o")))

	isos := collect(t, matcher.Match(bimap.New[triples.Term](), pattern, target))
	if len(isos) != 0 {
		t.Errorf("got %d isos, want 0 on predicate mismatch", len(isos))
	}
}

func TestMatcherAbandonEarly(t *testing.T) {
	var matcher triples.GraphMatcher
	pattern := triples.NewGraph(tr(b("x"), c("p"), c("o")))
	target := triples.NewGraph(
		tr(b("a"), c("p"), c("o")),
		tr(b("b"), c("p"), c("o")),
	)

	it := matcher.Match(bimap.New[triples.Term](), pattern, target)
	if !it.Next() {
		t.Fatal("matcher yielded nothing")
	}
	it.Close()
}

func TestTripleRDF(t *testing.T) {
	spo, err := tr(b("a"), c("http://example.com/p"), c("http://example.com/o")).Triple(false)
	if err != nil {
		t.Fatalf("Triple: %v", err)
	}
	if spo.Pred.String() != "<http://example.com/p>" {
		t.Errorf("Pred = %q", spo.Pred.String())
	}

	if _, err := tr(b("a"), c("http://example.com/p"), c("some text")).Triple(true); err != nil {
		t.Fatalf("Triple with literal object: %v", err)
	}
}
