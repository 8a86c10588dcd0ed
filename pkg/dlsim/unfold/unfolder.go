// Package unfold expands concept names into their full definitions.
package unfold

import (
	"fmt"
	"maps"
	"strings"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/krss"
)

// Definitions provides the concept definition tables of a knowledge base.
// Names are looked up trimmed.
type Definitions interface {
	FullDefinition(name string) (string, bool)
	PrimitiveDefinition(name string) (string, bool)
}

// Unfolder rewrites concept names into their definitions, recursively, and
// remembers which definition replaced which name. An Unfolder is not safe
// for concurrent use.
type Unfolder struct {
	defs     Definitions
	unfolded map[string]string // definition → original concept name
}

// New creates an unfolder over defs.
func New(defs Definitions) *Unfolder {
	return &Unfolder{
		defs:     defs,
		unfolded: make(map[string]string),
	}
}

// UnfoldConceptDefinitionString returns the fully unfolded definition of
// conceptName. TOP and names without a definition are returned unchanged.
func (u *Unfolder) UnfoldConceptDefinitionString(conceptName string) (string, error) {
	name := strings.TrimSpace(conceptName)
	if name == "" {
		return "", fmt.Errorf("unfold concept definition: %w: concept name is empty", internalerr.ErrInvalidInput)
	}
	if name == krss.Top {
		return name, nil
	}

	def, ok := u.retrieve(name)
	if !ok {
		return conceptName, nil
	}

	parsed, err := krss.Parse(def)
	if err != nil {
		return "", fmt.Errorf("definition of %s: %w", name, err)
	}

	expanded, err := u.expand(parsed, map[string]bool{name: true})
	if err != nil {
		return "", err
	}
	return expanded.String(), nil
}

// UnfoldExpression unfolds every defined name occurring in expr.
func (u *Unfolder) UnfoldExpression(expr string) (string, error) {
	if strings.TrimSpace(expr) == "" {
		return "", fmt.Errorf("unfold expression: %w: expression is empty", internalerr.ErrInvalidInput)
	}

	parsed, err := krss.Parse(expr)
	if err != nil {
		return "", err
	}
	expanded, err := u.expand(parsed, make(map[string]bool))
	if err != nil {
		return "", err
	}
	return expanded.String(), nil
}

// UnfoldedConceptMap returns a copy of the definition → concept name
// associations recorded so far.
func (u *Unfolder) UnfoldedConceptMap() map[string]string {
	return maps.Clone(u.unfolded)
}

// retrieve prefers the full definition and falls back to the primitive one.
func (u *Unfolder) retrieve(name string) (string, bool) {
	if def, ok := u.defs.FullDefinition(name); ok {
		return strings.TrimSpace(def), true
	}
	if def, ok := u.defs.PrimitiveDefinition(name); ok {
		return strings.TrimSpace(def), true
	}
	return "", false
}

// expand substitutes defined names in concept position. active holds the
// names whose definitions are currently being expanded.
func (u *Unfolder) expand(e krss.Expr, active map[string]bool) (krss.Expr, error) {
	switch e := e.(type) {
	case krss.Name:
		return u.expandName(e, active)

	case krss.And:
		args, err := u.expandAll(e.Args, active)
		if err != nil {
			return nil, err
		}
		return krss.And{Args: args}, nil

	case krss.Some:
		// the role is never looked up as a concept
		filler, err := u.expand(e.Filler, active)
		if err != nil {
			return nil, err
		}
		return krss.Some{Role: e.Role, Filler: filler}, nil

	case krss.List:
		items, err := u.expandAll(e.Items, active)
		if err != nil {
			return nil, err
		}
		return krss.List{Items: items}, nil
	}
	return e, nil
}

func (u *Unfolder) expandAll(exprs []krss.Expr, active map[string]bool) ([]krss.Expr, error) {
	out := make([]krss.Expr, len(exprs))
	for i, e := range exprs {
		x, err := u.expand(e, active)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (u *Unfolder) expandName(n krss.Name, active map[string]bool) (krss.Expr, error) {
	if n.Value == krss.OpAnd || n.Value == krss.OpSome {
		return n, nil
	}

	def, ok := u.retrieve(n.Value)
	if !ok {
		return n, nil
	}
	if active[n.Value] {
		return nil, fmt.Errorf("%w: %s refers to itself", internalerr.ErrCyclicDefinition, n.Value)
	}

	parsed, err := krss.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("definition of %s: %w", n.Value, err)
	}
	u.unfolded[parsed.String()] = n.Value

	active[n.Value] = true
	defer delete(active, n.Value)
	return u.expand(parsed, active)
}
