package krss

import "strings"

// Operator and constant names of the KRSS concept syntax.
const (
	OpAnd  = "and"
	OpSome = "some"
	Top    = "TOP"
)

// Expr is a parsed concept expression.
type Expr interface {
	String() string
	isExpr()
}

// Name is a concept (or, in role position, role) name.
type Name struct {
	Value string
}

// And is a conjunction: (and C1 C2 ...).
type And struct {
	Args []Expr
}

// Some is an existential restriction: (some role C).
type Some struct {
	Role   string
	Filler Expr
}

// List is any other parenthesised form. Every item is kept verbatim.
type List struct {
	Items []Expr
}

func (Name) isExpr() {}
func (And) isExpr()  {}
func (Some) isExpr() {}
func (List) isExpr() {}

func (n Name) String() string { return n.Value }

func (a And) String() string {
	return "(" + joinExprs(append([]Expr{Name{Value: OpAnd}}, a.Args...)) + ")"
}

func (s Some) String() string {
	return "(" + OpSome + " " + s.Role + " " + s.Filler.String() + ")"
}

func (l List) String() string {
	return "(" + joinExprs(l.Items) + ")"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Canonical returns s re-serialized in canonical form (single spaces, no
// padding inside parentheses). Unparsable input is returned trimmed.
func Canonical(s string) string {
	e, err := Parse(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return e.String()
}
