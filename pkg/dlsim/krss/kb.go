package krss

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
)

// FreshSuffix marks the fresh concept introduced for a primitive definition:
// (define-primitive-concept A C) is stored as A = (and C A').
const FreshSuffix = "'"

// KnowledgeBase holds the concept definition tables and the declared role
// hierarchy of a KRSS ontology.
type KnowledgeBase struct {
	full        map[string]string
	primitive   map[string]string
	roleParents map[string][]string
	known       map[string]struct{}
	concepts    []string
}

// NewKnowledgeBase creates an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		full:        make(map[string]string),
		primitive:   make(map[string]string),
		roleParents: make(map[string][]string),
		known:       make(map[string]struct{}),
	}
}

// SetFullDefinition stores name = definition.
func (kb *KnowledgeBase) SetFullDefinition(name, definition string) {
	name = strings.TrimSpace(name)
	kb.remember(name)
	kb.full[name] = strings.TrimSpace(definition)
}

// SetPrimitiveDefinition stores the definition (already including its fresh
// concept) of a primitive concept.
func (kb *KnowledgeBase) SetPrimitiveDefinition(name, definition string) {
	name = strings.TrimSpace(name)
	kb.remember(name)
	kb.primitive[name] = strings.TrimSpace(definition)
}

// AddRoleParent declares that role entails parent.
func (kb *KnowledgeBase) AddRoleParent(role, parent string) {
	for _, p := range kb.roleParents[role] {
		if p == parent {
			return
		}
	}
	kb.roleParents[role] = append(kb.roleParents[role], parent)
}

func (kb *KnowledgeBase) remember(name string) {
	if _, ok := kb.known[name]; ok {
		return
	}
	kb.known[name] = struct{}{}
	kb.concepts = append(kb.concepts, name)
}

// FullDefinition looks a trimmed name up in the full definition table.
func (kb *KnowledgeBase) FullDefinition(name string) (string, bool) {
	def, ok := kb.full[strings.TrimSpace(name)]
	return def, ok
}

// PrimitiveDefinition looks a trimmed name up in the primitive-with-fresh-concept table.
func (kb *KnowledgeBase) PrimitiveDefinition(name string) (string, bool) {
	def, ok := kb.primitive[strings.TrimSpace(name)]
	return def, ok
}

// ConceptNames returns defined concept names in declaration order.
func (kb *KnowledgeBase) ConceptNames() []string {
	out := make([]string, len(kb.concepts))
	copy(out, kb.concepts)
	return out
}

// RoleParents returns a copy of the declared role → parents edges.
func (kb *KnowledgeBase) RoleParents() map[string][]string {
	out := make(map[string][]string, len(kb.roleParents))
	for role, parents := range kb.roleParents {
		out[role] = append([]string(nil), parents...)
	}
	return out
}

// Roles returns every role mentioned in the hierarchy, sorted.
func (kb *KnowledgeBase) Roles() []string {
	set := make(map[string]struct{})
	for role, parents := range kb.roleParents {
		set[role] = struct{}{}
		for _, p := range parents {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// ParseKnowledgeBase reads KRSS forms:
//
//	(define-concept Name C)
//	(define-primitive-concept Name [C])
//	(define-primitive-role r [:parent s ...])
//	(define-role r [:parent s ...])
//	(implies-role r s)
//	; comments
func ParseKnowledgeBase(r io.Reader) (*KnowledgeBase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	forms, err := ParseAll(string(data))
	if err != nil {
		return nil, err
	}

	kb := NewKnowledgeBase()
	for i, form := range forms {
		if err := kb.apply(form); err != nil {
			return nil, fmt.Errorf("form %d: %w", i+1, err)
		}
	}
	return kb, nil
}

func (kb *KnowledgeBase) apply(form Expr) error {
	list, ok := form.(List)
	if !ok || len(list.Items) < 2 {
		return fmt.Errorf("%w: expected a definition form, got %s", internalerr.ErrSyntax, form)
	}
	head, _ := list.Items[0].(Name)
	subject, ok := list.Items[1].(Name)
	if !ok {
		return fmt.Errorf("%w: %s needs a name, got %s", internalerr.ErrSyntax, head.Value, list.Items[1])
	}
	args := list.Items[2:]

	switch head.Value {
	case "define-concept":
		if len(args) != 1 {
			return fmt.Errorf("%w: define-concept %s takes one definition", internalerr.ErrSyntax, subject.Value)
		}
		kb.SetFullDefinition(subject.Value, args[0].String())
	case "define-primitive-concept":
		switch len(args) {
		case 0:
			kb.remember(subject.Value)
		case 1:
			kb.SetPrimitiveDefinition(subject.Value, withFreshConcept(subject.Value, args[0]).String())
		default:
			return fmt.Errorf("%w: define-primitive-concept %s takes at most one definition", internalerr.ErrSyntax, subject.Value)
		}
	case "define-primitive-role", "define-role":
		for j := 0; j < len(args); j++ {
			kw, ok := args[j].(Name)
			if !ok || kw.Value != ":parent" || j+1 >= len(args) {
				return fmt.Errorf("%w: %s %s: expected :parent role", internalerr.ErrSyntax, head.Value, subject.Value)
			}
			parent, ok := args[j+1].(Name)
			if !ok {
				return fmt.Errorf("%w: %s %s: parent must be a role name", internalerr.ErrSyntax, head.Value, subject.Value)
			}
			kb.AddRoleParent(subject.Value, parent.Value)
			j++
		}
	case "implies-role":
		if len(args) != 1 {
			return fmt.Errorf("%w: implies-role %s takes one parent", internalerr.ErrSyntax, subject.Value)
		}
		parent, ok := args[0].(Name)
		if !ok {
			return fmt.Errorf("%w: implies-role %s: parent must be a role name", internalerr.ErrSyntax, subject.Value)
		}
		kb.AddRoleParent(subject.Value, parent.Value)
	default:
		return fmt.Errorf("%w: unknown form %q", internalerr.ErrSyntax, head.Value)
	}
	return nil
}

func withFreshConcept(name string, def Expr) Expr {
	fresh := Name{Value: name + FreshSuffix}
	if and, ok := def.(And); ok {
		args := append(append([]Expr(nil), and.Args...), fresh)
		return And{Args: args}
	}
	if n, ok := def.(Name); ok && n.Value == Top {
		return fresh
	}
	return And{Args: []Expr{def, fresh}}
}
