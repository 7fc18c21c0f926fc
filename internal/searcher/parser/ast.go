package parser

import (
	"fmt"
	"sort"
)

// Kind tags an expression node. The tag is decided at construction time
// so evaluation never has to inspect node contents to tell a term from
// an operator.
type Kind int

const (
	KindTerm Kind = iota
	KindNot
	KindAnd
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return "unknown"
	}
}

// Node is one node of an immutable boolean expression tree. Term nodes
// carry a non-empty Term and no children; Not nodes have exactly Left;
// And and Or nodes have both Left and Right.
type Node struct {
	Kind  Kind
	Term  string
	Left  *Node
	Right *Node
}

// String renders the expression in the query language's own syntax,
// fully parenthesized.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindTerm:
		return n.Term
	case KindNot:
		return "!" + parenthesize(n.Left)
	case KindAnd:
		return fmt.Sprintf("(%s %s)", n.Left.String(), n.Right.String())
	case KindOr:
		return fmt.Sprintf("(%s|%s)", n.Left.String(), n.Right.String())
	default:
		return "?"
	}
}

// Canonical renders the expression with the operands of commutative
// operators ordered lexicographically, so that queries differing only
// in operand order produce the same string. Used for cache keys.
func (n *Node) Canonical() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindTerm:
		return n.Term
	case KindNot:
		return "!(" + n.Left.Canonical() + ")"
	case KindAnd, KindOr:
		sep := " "
		if n.Kind == KindOr {
			sep = "|"
		}
		left, right := n.Left.Canonical(), n.Right.Canonical()
		if right < left {
			left, right = right, left
		}
		return "(" + left + sep + right + ")"
	default:
		return "?"
	}
}

// Terms returns every distinct term appearing in the expression.
func (n *Node) Terms() []string {
	seen := make(map[string]struct{})
	var walk func(*Node)
	walk = func(node *Node) {
		if node == nil {
			return
		}
		if node.Kind == KindTerm {
			if _, ok := seen[node.Term]; !ok {
				seen[node.Term] = struct{}{}
			}
			return
		}
		walk(node.Left)
		walk(node.Right)
	}
	walk(n)
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func parenthesize(n *Node) string {
	if n == nil {
		return ""
	}
	// Terms and nested negations bind tighter than any operator, so
	// they render bare: !cat, !!cat.
	switch n.Kind {
	case KindTerm:
		return n.Term
	case KindNot:
		return n.String()
	default:
		return "(" + n.String() + ")"
	}
}
