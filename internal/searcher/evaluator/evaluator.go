// Package evaluator computes the document-id set matching a parsed
// boolean expression against a frozen inverted index.
package evaluator

import (
	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/searcher/parser"
)

// Evaluate walks the expression tree in post-order and returns the set
// of documents satisfying it. The result is always a fresh set: posting
// sets owned by the index are copied before use, never aliased, so
// callers may mutate the result freely. A nil tree yields the empty set.
//
// NOT is evaluated against the index universe (every document id
// indexed under any term), so the complement of an unknown term is the
// whole corpus and any complement within an empty index is empty.
func Evaluate(node *parser.Node, ix *index.Index) index.DocSet {
	if node == nil {
		return make(index.DocSet)
	}
	switch node.Kind {
	case parser.KindTerm:
		return ix.Lookup(node.Term).Clone()
	case parser.KindNot:
		return ix.AllDocIDs().Difference(Evaluate(node.Left, ix))
	case parser.KindAnd:
		return Evaluate(node.Left, ix).Intersect(Evaluate(node.Right, ix))
	case parser.KindOr:
		return Evaluate(node.Left, ix).Union(Evaluate(node.Right, ix))
	default:
		return make(index.DocSet)
	}
}
