package parser

import "unicode"

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a query into tokens. A term is any maximal run of
// characters outside {'(', ')', '|', '!'} and whitespace. Whitespace
// between two operands collapses into a single implicit AND token;
// whitespace anywhere else (leading, trailing, around an explicit
// operator) separates tokens but emits nothing.
func lex(query string) []token {
	tokens := make([]token, 0, len(query)/4)
	pendingSpace := false

	emit := func(t token) {
		if pendingSpace && startsOperand(t.kind) && len(tokens) > 0 && endsOperand(tokens[len(tokens)-1].kind) {
			tokens = append(tokens, token{kind: tokAnd, pos: t.pos})
		}
		pendingSpace = false
		tokens = append(tokens, t)
	}

	runes := []rune(query)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			i++
		case r == '(':
			emit(token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			emit(token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '|':
			emit(token{kind: tokOr, text: "|", pos: i})
			i++
		case r == '!':
			emit(token{kind: tokNot, text: "!", pos: i})
			i++
		default:
			start := i
			for i < len(runes) && !isOperatorRune(runes[i]) && !unicode.IsSpace(runes[i]) {
				i++
			}
			emit(token{kind: tokTerm, text: string(runes[start:i]), pos: start})
		}
	}
	return tokens
}

func isOperatorRune(r rune) bool {
	return r == '(' || r == ')' || r == '|' || r == '!'
}

// startsOperand reports whether a token can begin an operand, i.e. an
// implicit AND may directly precede it.
func startsOperand(k tokenKind) bool {
	return k == tokTerm || k == tokLParen || k == tokNot
}

// endsOperand reports whether a token can end an operand, i.e. an
// implicit AND may directly follow it.
func endsOperand(k tokenKind) bool {
	return k == tokTerm || k == tokRParen
}
