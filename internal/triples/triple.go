package triples

//spellchecker:words renameable

import (
	"fmt"

	"github.com/FAU-CDI/subsume/pkg/bimap"
	"github.com/anglo-korean/rdf"
)

// Triple is a single labelled edge of a graph.
// Triples are comparable and can be used as map keys.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple returns the triple (subject, predicate, object).
func NewTriple(subject, predicate, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// Terms calls f for the subject, predicate and object in order.
func (triple Triple) Terms(f func(Term)) {
	f(triple.Subject)
	f(triple.Predicate)
	f(triple.Object)
}

// Rename returns a copy of this triple with every renameable term
// replaced through iso. Terms without a mapping stay put.
func (triple Triple) Rename(iso *bimap.BiMap[Term]) Triple {
	return Triple{
		Subject:   renameTerm(triple.Subject, iso),
		Predicate: renameTerm(triple.Predicate, iso),
		Object:    renameTerm(triple.Object, iso),
	}
}

func renameTerm(term Term, iso *bimap.BiMap[Term]) Term {
	if !term.Renameable() {
		return term
	}
	return iso.GetOrKey(term)
}

func (triple Triple) String() string {
	return fmt.Sprintf("(%s %s %s)", triple.Subject, triple.Predicate, triple.Object)
}

// Compare orders triples by subject, then predicate, then object.
func (triple Triple) Compare(other Triple) int {
	if c := triple.Subject.Compare(other.Subject); c != 0 {
		return c
	}
	if c := triple.Predicate.Compare(other.Predicate); c != 0 {
		return c
	}
	return triple.Object.Compare(other.Object)
}

// Triple returns this triple as an rdf triple.
// Renameable subjects and objects render as blank nodes, concrete objects
// as literals when literal is set and as IRIs otherwise. The predicate
// always renders as the IRI of its value.
func (triple Triple) Triple(literal bool) (spo rdf.Triple, err error) {
	spo.Subj, err = termSubject(triple.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}

	spo.Pred, err = rdf.NewIRI(triple.Predicate.Value)
	if err != nil {
		return rdf.Triple{}, err
	}

	spo.Obj, err = termObject(triple.Object, literal)
	if err != nil {
		return rdf.Triple{}, err
	}
	return
}

func termSubject(term Term) (rdf.Subject, error) {
	if term.Renameable() {
		blank, err := rdf.NewBlank(blankID(term))
		return blank, err
	}
	iri, err := rdf.NewIRI(term.Value)
	return iri, err
}

func termObject(term Term, literal bool) (rdf.Object, error) {
	if term.Renameable() {
		blank, err := rdf.NewBlank(blankID(term))
		return blank, err
	}
	if literal {
		lit, err := rdf.NewLiteral(term.Value)
		return lit, err
	}
	iri, err := rdf.NewIRI(term.Value)
	return iri, err
}

// blankID derives a blank node identifier that keeps blank and
// abstract terms with equal values apart.
func blankID(term Term) string {
	if term.Kind == Abstract {
		return "v_" + term.Value
	}
	return "b_" + term.Value
}
