package descriptiontree

import (
	"fmt"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/krss"
)

// Build parses an unfolded concept description and converts it to a tree.
func Build(expanded string) (*Tree, error) {
	e, err := krss.Parse(expanded)
	if err != nil {
		return nil, err
	}
	return FromExpr(e)
}

// FromExpr converts a concept expression to a tree. Names become primitives
// of the current node (TOP contributes nothing), nested conjunctions are
// flattened and every (some r C) becomes a child reached via r.
func FromExpr(e krss.Expr) (*Tree, error) {
	t := New(e.String())
	if err := t.fill(0, e); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) fill(node int, e krss.Expr) error {
	switch e := e.(type) {
	case krss.Name:
		if e.Value == krss.Top {
			return nil
		}
		return t.AddPrimitive(node, e.Value)

	case krss.And:
		for _, arg := range e.Args {
			if err := t.fill(node, arg); err != nil {
				return err
			}
		}
		return nil

	case krss.Some:
		child, err := t.AddChild(node, e.Role, e.Filler.String())
		if err != nil {
			return err
		}
		return t.fill(child, e.Filler)
	}
	return fmt.Errorf("%w: unsupported concept constructor %s", internalerr.ErrSyntax, e)
}
