// Package parser turns boolean retrieval queries into expression trees.
//
// The query language has three operators: '!' (NOT, unary prefix), '|'
// (OR, binary infix), and an implicit AND expressed as whitespace
// between two operands. Parentheses override the default precedence of
// NOT > AND > OR. Malformed queries (unbalanced parentheses, operators
// with missing operands) are rejected with an error wrapping
// errors.ErrQuerySyntax rather than parsed best-effort.
package parser

import (
	"fmt"

	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
)

type opKind int

const (
	opLParen opKind = iota // scope marker, never applied
	opOr
	opAnd
	opNot
)

// precedence follows conventional boolean algebra: NOT > AND > OR.
func (op opKind) precedence() int {
	switch op {
	case opNot:
		return 3
	case opAnd:
		return 2
	case opOr:
		return 1
	default:
		return 0
	}
}

func (op opKind) String() string {
	switch op {
	case opNot:
		return "!"
	case opAnd:
		return "AND"
	case opOr:
		return "|"
	case opLParen:
		return "("
	default:
		return "?"
	}
}

// Parse builds the expression tree for a boolean query using the
// classic two-stack shunting-yard construction: operands are pushed as
// Term leaves, operators are applied off the operator stack whenever an
// incoming operator has lower-or-equal precedence, and a closing
// parenthesis drains operators back to its matching scope marker.
func Parse(query string) (*Node, error) {
	tokens := lex(query)
	if len(tokens) == 0 {
		return nil, syntaxErrorf("empty query")
	}

	var (
		operands  []*Node
		operators []opKind
	)

	apply := func() error {
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]

		if op == opNot {
			if len(operands) < 1 {
				return syntaxErrorf("operator %s is missing its operand", op)
			}
			child := operands[len(operands)-1]
			operands[len(operands)-1] = &Node{Kind: KindNot, Left: child}
			return nil
		}
		if len(operands) < 2 {
			return syntaxErrorf("operator %s is missing an operand", op)
		}
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-1]
		kind := KindAnd
		if op == opOr {
			kind = KindOr
		}
		operands[len(operands)-1] = &Node{Kind: kind, Left: left, Right: right}
		return nil
	}

	pushOperator := func(op opKind) error {
		// Binary operators are left-associative and pop anything of
		// equal or higher precedence. NOT is a right-associative
		// prefix operator: a stacked NOT still awaits its operand, so
		// only strictly higher precedence may be applied first.
		minPop := op.precedence()
		if op != opNot {
			minPop--
		}
		for len(operators) > 0 {
			top := operators[len(operators)-1]
			if top == opLParen || top.precedence() <= minPop {
				break
			}
			if err := apply(); err != nil {
				return err
			}
		}
		operators = append(operators, op)
		return nil
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokTerm:
			operands = append(operands, &Node{Kind: KindTerm, Term: tok.text})
		case tokLParen:
			operators = append(operators, opLParen)
		case tokRParen:
			matched := false
			for len(operators) > 0 {
				if operators[len(operators)-1] == opLParen {
					operators = operators[:len(operators)-1]
					matched = true
					break
				}
				if err := apply(); err != nil {
					return nil, err
				}
			}
			if !matched {
				return nil, syntaxErrorf("unmatched ')' at position %d", tok.pos)
			}
		case tokNot:
			if err := pushOperator(opNot); err != nil {
				return nil, err
			}
		case tokAnd:
			if err := pushOperator(opAnd); err != nil {
				return nil, err
			}
		case tokOr:
			if err := pushOperator(opOr); err != nil {
				return nil, err
			}
		}
	}

	for len(operators) > 0 {
		if operators[len(operators)-1] == opLParen {
			return nil, syntaxErrorf("unmatched '('")
		}
		if err := apply(); err != nil {
			return nil, err
		}
	}

	if len(operands) != 1 {
		return nil, syntaxErrorf("expected a single expression, found %d", len(operands))
	}
	return operands[0], nil
}

func syntaxErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrQuerySyntax, fmt.Sprintf(format, args...))
}
