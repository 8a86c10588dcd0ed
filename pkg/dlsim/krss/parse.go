package krss

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
)

type tokenKind int

const (
	tokOpen tokenKind = iota
	tokClose
	tokAtom
)

type token struct {
	kind  tokenKind
	value string
	pos   int
}

// tokenize splits s into parentheses and atoms. A ';' starts a comment that
// runs to the end of the line.
func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '(':
			toks = append(toks, token{kind: tokOpen, value: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokClose, value: ")", pos: i})
			i++
		case c == ';':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case unicode.IsSpace(rune(c)):
			i++
		default:
			start := i
			for i < len(s) && s[i] != '(' && s[i] != ')' && s[i] != ';' && !unicode.IsSpace(rune(s[i])) {
				i++
			}
			toks = append(toks, token{kind: tokAtom, value: s[start:i], pos: start})
		}
	}
	return toks
}

type parser struct {
	toks []token
	pos  int
}

// Parse parses exactly one expression.
func Parse(s string) (Expr, error) {
	exprs, err := ParseAll(s)
	if err != nil {
		return nil, err
	}
	switch len(exprs) {
	case 0:
		return nil, fmt.Errorf("%w: empty expression", internalerr.ErrSyntax)
	case 1:
		return exprs[0], nil
	default:
		return nil, fmt.Errorf("%w: expected one expression in %q, got %d", internalerr.ErrSyntax, strings.TrimSpace(s), len(exprs))
	}
}

// ParseAll parses a sequence of expressions, e.g. the forms of a knowledge base file.
func ParseAll(s string) ([]Expr, error) {
	p := &parser{toks: tokenize(s)}
	var out []Expr
	for p.pos < len(p.toks) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (p *parser) parseExpr() (Expr, error) {
	tok := p.toks[p.pos]
	switch tok.kind {
	case tokAtom:
		p.pos++
		return Name{Value: tok.value}, nil
	case tokClose:
		return nil, fmt.Errorf("%w: unexpected ')' at offset %d", internalerr.ErrSyntax, tok.pos)
	}

	p.pos++ // consume '('
	var items []Expr
	for {
		if p.pos >= len(p.toks) {
			return nil, fmt.Errorf("%w: unclosed '(' at offset %d", internalerr.ErrSyntax, tok.pos)
		}
		if p.toks[p.pos].kind == tokClose {
			p.pos++
			break
		}
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return build(items, tok.pos)
}

// build turns the items of a parenthesised form into the matching node.
func build(items []Expr, offset int) (Expr, error) {
	if len(items) == 0 {
		return List{}, nil
	}
	head, ok := items[0].(Name)
	if !ok {
		return List{Items: items}, nil
	}

	switch head.Value {
	case OpAnd:
		return And{Args: items[1:]}, nil
	case OpSome:
		if len(items) != 3 {
			return nil, fmt.Errorf("%w: (some role concept) at offset %d takes 2 arguments, got %d",
				internalerr.ErrSyntax, offset, len(items)-1)
		}
		role, ok := items[1].(Name)
		if !ok {
			return nil, fmt.Errorf("%w: role of (some ...) at offset %d must be a name", internalerr.ErrSyntax, offset)
		}
		return Some{Role: role.Value, Filler: items[2]}, nil
	}
	return List{Items: items}, nil
}
