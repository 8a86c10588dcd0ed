package roles

import (
	"fmt"
	"sort"
	"strings"
)

// Hierarchy is a role hierarchy with transitive closure over declared
// super-roles.
type Hierarchy struct {
	parents map[string][]string // role → [direct super-roles]
}

// Step is one edge of a role entailment chain.
type Step struct {
	From  string
	To    string
	Depth int
}

// New creates an empty role hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		parents: make(map[string][]string),
	}
}

// FromParents builds a hierarchy from role → parents edges.
func FromParents(edges map[string][]string) *Hierarchy {
	h := New()
	for role, parents := range edges {
		for _, p := range parents {
			h.AddParent(role, p)
		}
	}
	return h
}

// AddParent declares that role entails parent.
func (h *Hierarchy) AddParent(role, parent string) {
	// Avoid duplicates
	for _, p := range h.parents[role] {
		if p == parent {
			return
		}
	}
	h.parents[role] = append(h.parents[role], parent)
}

// Parents returns the direct super-roles of role.
func (h *Hierarchy) Parents(role string) []string {
	return append([]string(nil), h.parents[role]...)
}

// Subsumes reports whether sub entails super (reflexive, transitive).
func (h *Hierarchy) Subsumes(super, sub string) bool {
	if super == sub {
		return true
	}
	return h.reaches(sub, super, make(map[string]bool))
}

func (h *Hierarchy) reaches(from, to string, visited map[string]bool) bool {
	if visited[from] {
		return false // cycle detection
	}
	visited[from] = true

	for _, p := range h.parents[from] {
		if p == to || h.reaches(p, to, visited) {
			return true
		}
	}
	return false
}

// UnfoldRoleHierarchy returns role together with every role it entails, sorted.
func (h *Hierarchy) UnfoldRoleHierarchy(role string) []string {
	results := map[string]bool{role: true}
	h.collectAll(role, results, make(map[string]bool))

	out := make([]string, 0, len(results))
	for r := range results {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (h *Hierarchy) collectAll(role string, results, visited map[string]bool) {
	if visited[role] {
		return
	}
	visited[role] = true

	for _, p := range h.parents[role] {
		results[p] = true
		h.collectAll(p, results, visited)
	}
}

// FindPath finds an entailment chain from sub up to super.
func (h *Hierarchy) FindPath(sub, super string) []Step {
	return h.findPathDFS(sub, super, nil, make(map[string]bool))
}

func (h *Hierarchy) findPathDFS(from, to string, path []Step, visited map[string]bool) []Step {
	if visited[from] {
		return nil
	}
	visited[from] = true

	for _, p := range h.parents[from] {
		step := Step{From: from, To: p, Depth: len(path)}
		if p == to {
			return append(path, step)
		}
		next := append(append([]Step(nil), path...), step)
		if result := h.findPathDFS(p, to, next, visited); result != nil {
			return result
		}
	}
	return nil
}

// Explain generates a human-readable explanation of why sub entails super.
func (h *Hierarchy) Explain(sub, super string) string {
	if sub == super {
		return fmt.Sprintf("%s entails itself", sub)
	}
	path := h.FindPath(sub, super)
	if len(path) == 0 {
		return fmt.Sprintf("%s does not entail %s", sub, super)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s entails %s:\n", sub, super)
	for i, step := range path {
		fmt.Fprintf(&b, "  %d. %s -> %s\n", i+1, step.From, step.To)
	}
	return b.String()
}

// Identity expands every role to itself only.
type Identity struct{}

// UnfoldRoleHierarchy implements the reasoner's role unfolder.
func (Identity) UnfoldRoleHierarchy(role string) []string {
	return []string{role}
}
