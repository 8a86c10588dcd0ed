// Package descriptiontree holds concept description trees: one node per
// conjunction, one edge per existential restriction.
package descriptiontree

import (
	"fmt"
	"slices"
	"sort"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
)

// Node is a node of a concept tree. Nodes are addressed by their index in
// the tree's arena.
type Node struct {
	ID                 int
	Primitives         []string // sorted, unique
	Children           []int
	Parent             int // -1 for the root
	EdgeToParent       string
	ConceptDescription string
}

// IsTop reports whether the node is the universal concept: no primitives
// and no children.
func (n Node) IsTop() bool {
	return len(n.Primitives) == 0 && len(n.Children) == 0
}

// HasPrimitive reports whether name is one of the node's primitives.
func (n Node) HasPrimitive(name string) bool {
	_, found := slices.BinarySearch(n.Primitives, name)
	return found
}

// Tree is an arena of nodes; index 0 is the root.
type Tree struct {
	Nodes []Node
}

// New creates a tree holding only a root node.
func New(rootDescription string) *Tree {
	return &Tree{
		Nodes: []Node{{ID: 0, Parent: -1, ConceptDescription: rootDescription}},
	}
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.Nodes) }

// Root returns the root node.
func (t *Tree) Root() *Node { return &t.Nodes[0] }

// Node returns the node at index i, or nil when out of range.
func (t *Tree) Node(i int) *Node {
	if i < 0 || i >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[i]
}

// AddChild appends a child of parent reached via role and returns its index.
func (t *Tree) AddChild(parent int, role, description string) (int, error) {
	if t.Node(parent) == nil {
		return 0, fmt.Errorf("%w: no node %d", internalerr.ErrInvalidInput, parent)
	}
	if role == "" {
		return 0, fmt.Errorf("%w: child of node %d needs a role", internalerr.ErrInvalidInput, parent)
	}

	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{
		ID:                 id,
		Parent:             parent,
		EdgeToParent:       role,
		ConceptDescription: description,
	})
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	return id, nil
}

// AddPrimitive adds name to the primitives of node i.
func (t *Tree) AddPrimitive(i int, name string) error {
	n := t.Node(i)
	if n == nil {
		return fmt.Errorf("%w: no node %d", internalerr.ErrInvalidInput, i)
	}
	if name == "" {
		return fmt.Errorf("%w: empty primitive name", internalerr.ErrInvalidInput)
	}

	pos, found := slices.BinarySearch(n.Primitives, name)
	if !found {
		n.Primitives = slices.Insert(n.Primitives, pos, name)
	}
	return nil
}

// Validate checks the arena invariants: a single root at index 0, every
// other node reachable from it through consistent parent/child links.
func (t *Tree) Validate() error {
	if t == nil || len(t.Nodes) == 0 {
		return fmt.Errorf("%w: empty tree", internalerr.ErrInvalidInput)
	}

	seen := make([]bool, len(t.Nodes))
	var visit func(i, parent int) error
	visit = func(i, parent int) error {
		if i < 0 || i >= len(t.Nodes) {
			return fmt.Errorf("%w: child index %d out of range", internalerr.ErrInvalidInput, i)
		}
		if seen[i] {
			return fmt.Errorf("%w: node %d reached twice", internalerr.ErrInvalidInput, i)
		}
		seen[i] = true

		n := t.Nodes[i]
		if n.ID != i || n.Parent != parent {
			return fmt.Errorf("%w: node %d has inconsistent links", internalerr.ErrInvalidInput, i)
		}
		if parent >= 0 && n.EdgeToParent == "" {
			return fmt.Errorf("%w: node %d has no edge label", internalerr.ErrInvalidInput, i)
		}
		if !sort.StringsAreSorted(n.Primitives) {
			return fmt.Errorf("%w: primitives of node %d are not sorted", internalerr.ErrInvalidInput, i)
		}
		for _, c := range n.Children {
			if err := visit(c, i); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(0, -1); err != nil {
		return err
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: node %d is unreachable", internalerr.ErrInvalidInput, i)
		}
	}
	return nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var depth func(i int) int
	depth = func(i int) int {
		deepest := 0
		for _, c := range t.Nodes[i].Children {
			if d := depth(c) + 1; d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return depth(0)
}

// SameConcept reports whether node i of a and node j of b describe the same
// concept: same edge, description, primitives and, recursively, children.
func SameConcept(a *Tree, i int, b *Tree, j int) bool {
	n1, n2 := a.Node(i), b.Node(j)
	if n1 == nil || n2 == nil {
		return false
	}
	if n1.EdgeToParent != n2.EdgeToParent || n1.ConceptDescription != n2.ConceptDescription {
		return false
	}
	if !slices.Equal(n1.Primitives, n2.Primitives) || len(n1.Children) != len(n2.Children) {
		return false
	}
	for k := range n1.Children {
		if !SameConcept(a, n1.Children[k], b, n2.Children[k]) {
			return false
		}
	}
	return true
}
