// Package reasoner measures the directed, top-down similarity of two concept
// description trees and keeps a backtrace explaining the result.
//
// Every division is carried out with 5 fractional digits and half-up
// rounding at the point where it happens, and so is every product; sums of
// already rounded terms are exact. Results are reproducible digit by digit.
package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cognicore/dlsim/pkg/dlsim/backtrace"
	"github.com/cognicore/dlsim/pkg/dlsim/descriptiontree"
	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/profile"
)

// Scale is the number of fractional digits kept by every rounding step.
const Scale = 5

var one = decimal.NewFromInt(1)

// RoleUnfolder expands a role name into the set of roles it entails,
// including itself.
type RoleUnfolder interface {
	UnfoldRoleHierarchy(role string) []string
}

// Reasoner computes directed similarity. It keeps the backtrace table and
// timestamps of its most recent run, so a Reasoner must not be used by
// several goroutines at once.
type Reasoner struct {
	profile profile.PreferenceProfile
	roles   RoleUnfolder
	logger  *slog.Logger

	table *backtrace.Table
	marks []time.Time
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithRoleUnfolder sets the role unfolding strategy.
func WithRoleUnfolder(u RoleUnfolder) Option {
	return func(r *Reasoner) { r.roles = u }
}

// WithLogger sets the logger. If nil, uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reasoner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a reasoner using the preferences of p.
func New(p profile.PreferenceProfile, opts ...Option) *Reasoner {
	r := &Reasoner{
		profile: p,
		logger:  slog.Default(),
		table:   backtrace.NewTable(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetRoleUnfoldingStrategy replaces the role unfolder.
func (r *Reasoner) SetRoleUnfoldingStrategy(u RoleUnfolder) {
	r.roles = u
}

// BacktraceTable returns the table built by the most recent measurement.
func (r *Reasoner) BacktraceTable() *backtrace.Table {
	return r.table
}

// ExecutionTimes returns one formatted duration per completed measurement
// since the last reset. Every measurement resets.
func (r *Reasoner) ExecutionTimes() []string {
	var out []string
	for i := 0; i+1 < len(r.marks); i += 2 {
		out = append(out, r.marks[i+1].Sub(r.marks[i]).String())
	}
	return out
}

// MeasureDirectedSimilarity returns how well tree1 is covered by tree2.
// mapper maps unfolded definitions back to concept names and is only used
// to render the backtrace.
func (r *Reasoner) MeasureDirectedSimilarity(ctx context.Context, tree1, tree2 *descriptiontree.Tree, mapper map[string]string) (decimal.Decimal, error) {
	if tree1 == nil || tree2 == nil {
		return decimal.Zero, fmt.Errorf("measure directed similarity: %w: tree1 and tree2 must not be nil", internalerr.ErrInvalidInput)
	}
	if tree1.Len() == 0 || tree2.Len() == 0 {
		return decimal.Zero, fmt.Errorf("measure directed similarity: %w: trees must have a root", internalerr.ErrInvalidInput)
	}
	if err := tree1.Validate(); err != nil {
		return decimal.Zero, fmt.Errorf("measure directed similarity: tree1: %w", err)
	}
	if err := tree2.Validate(); err != nil {
		return decimal.Zero, fmt.Errorf("measure directed similarity: tree2: %w", err)
	}

	r.table = backtrace.NewTable()
	r.marks = r.marks[:0]

	ctx, span := tracer.Start(ctx, "reasoner.MeasureDirectedSimilarity",
		trace.WithAttributes(
			attribute.Int("tree1.nodes", tree1.Len()),
			attribute.Int("tree2.nodes", tree2.Len()),
			attribute.Int("tree1.depth", tree1.Depth()),
			attribute.Int("tree2.depth", tree2.Depth()),
		),
	)
	defer span.End()

	m := &measurement{
		tree1:   tree1,
		tree2:   tree2,
		table:   r.table,
		mapper:  mapper,
		roles:   r.roles,
		nu:      r.profile.DefaultRoleDiscountFactor(),
		nuPrime: one.Sub(r.profile.DefaultRoleDiscountFactor()),
		logger:  r.logger,
	}

	start := time.Now()
	r.marks = append(r.marks, start)
	degree, err := m.sim(0, 0, 0)
	end := time.Now()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordMeasurement(ctx, end.Sub(start), 0, false)
		return decimal.Zero, fmt.Errorf("measure directed similarity: %w", err)
	}
	r.marks = append(r.marks, end)

	span.SetAttributes(
		attribute.String("degree", degree.StringFixed(Scale)),
		attribute.Int("backtrace.records", r.table.Len()),
	)
	span.SetStatus(codes.Ok, "")
	recordMeasurement(ctx, end.Sub(start), r.table.Len(), true)

	r.logger.Debug("directed similarity measured",
		slog.String("degree", degree.StringFixed(Scale)),
		slog.Int("records", r.table.Len()),
		slog.Duration("duration", end.Sub(start)),
	)
	return degree, nil
}

// measurement is the state of one top-level call, threaded through the
// recursion.
type measurement struct {
	tree1, tree2 *descriptiontree.Tree
	table        *backtrace.Table
	mapper       map[string]string
	roles        RoleUnfolder
	nu, nuPrime  decimal.Decimal
	logger       *slog.Logger
}

// sim evaluates node i of tree1 against node j of tree2.
func (m *measurement) sim(level, i, j int) (decimal.Decimal, error) {
	node1, node2 := m.tree1.Node(i), m.tree2.Node(j)
	if node1 == nil || node2 == nil {
		return decimal.Zero, fmt.Errorf("%w: no node pair (%d, %d)", internalerr.ErrInvalidInput, i, j)
	}

	rec := &backtrace.Record{}

	mu := Mu(node1)
	primitives := mu.Mul(m.phd(rec, node1, node2)).Round(Scale)

	eSet, err := m.eSetHd(level, rec, node1, node2)
	if err != nil {
		return decimal.Zero, err
	}
	edges := one.Sub(mu).Mul(eSet).Round(Scale)

	degree := primitives.Add(edges)
	rec.Degree = degree
	m.table.Add(backtrace.Key{Level: level, Node1: i, Node2: j}, *rec)

	return degree, nil
}

// Mu is the weight of the primitives of n against its outgoing edges.
func Mu(n *descriptiontree.Node) decimal.Decimal {
	if n.IsTop() {
		return one
	}
	primitives := decimal.NewFromInt(int64(len(n.Primitives)))
	edges := decimal.NewFromInt(int64(len(n.Children)))
	return primitives.DivRound(primitives.Add(edges), Scale)
}

// phd is the share of node1's primitives that node2 also has.
func (m *measurement) phd(rec *backtrace.Record, node1, node2 *descriptiontree.Node) decimal.Decimal {
	if len(node1.Primitives) == 0 {
		return one
	}

	common := 0
	for _, p := range node1.Primitives {
		if node2.HasPrimitive(p) {
			common++
			rec.AppendPrimitive(p)
		}
	}
	return decimal.NewFromInt(int64(common)).DivRound(decimal.NewFromInt(int64(len(node1.Primitives))), Scale)
}

// eSetHd averages, over node1's children, the best edge homomorphism degree
// found among node2's children. The first maximal candidate wins ties.
func (m *measurement) eSetHd(level int, rec *backtrace.Record, node1, node2 *descriptiontree.Node) (decimal.Decimal, error) {
	if len(node1.Children) == 0 {
		return one, nil
	}
	if len(node2.Children) == 0 {
		return decimal.Zero, nil
	}

	sum := decimal.Zero
	for _, c1 := range node1.Children {
		best := -1
		maxDegree := decimal.Zero

		for _, c2 := range node2.Children {
			v, err := m.eHd(level, rec, c1, c2)
			if err != nil {
				return decimal.Zero, err
			}
			if maxDegree.LessThan(v) {
				maxDegree = v
				best = c2
			}
		}

		if best >= 0 {
			child1 := m.tree1.Node(c1)
			rec.AppendExistential(m.existential(child1))
			if !descriptiontree.SameConcept(m.tree1, c1, m.tree2, best) {
				rec.AppendExistential(m.existential(m.tree2.Node(best)))
			}
		}

		sum = sum.Add(maxDegree)
	}

	return sum.DivRound(decimal.NewFromInt(int64(len(node1.Children))), Scale), nil
}

func (m *measurement) existential(n *descriptiontree.Node) string {
	return backtrace.Existential(n.EdgeToParent, backtrace.MapConcepts(n.ConceptDescription, m.mapper))
}

// eHd is the homomorphism degree along the edges into c1 and c2:
// (nu' * sim(c1, c2) + nu) * gamma.
func (m *measurement) eHd(level int, rec *backtrace.Record, c1, c2 int) (decimal.Decimal, error) {
	node1, node2 := m.tree1.Node(c1), m.tree2.Node(c2)
	if node1 == nil || node2 == nil {
		return decimal.Zero, fmt.Errorf("%w: no child pair (%d, %d)", internalerr.ErrInvalidInput, c1, c2)
	}

	gamma, err := m.gamma(rec, node1.EdgeToParent, node2.EdgeToParent)
	if err != nil {
		return decimal.Zero, err
	}

	sub, err := m.sim(level+1, c1, c2)
	if err != nil {
		return decimal.Zero, err
	}

	v := m.nuPrime.Mul(sub).Round(Scale).
		Add(m.nu).Round(Scale).
		Mul(gamma).Round(Scale)

	m.logger.Debug("e-hd",
		slog.Int("level", level),
		slog.Any("node1", node1.Primitives),
		slog.Any("node2", node2.Primitives),
		slog.String("gamma", gamma.String()),
		slog.String("sub", sub.String()),
		slog.String("value", v.String()),
	)
	return v, nil
}

// gamma is the share of roles entailed by edge1 that edge2 entails too.
func (m *measurement) gamma(rec *backtrace.Record, edge1, edge2 string) (decimal.Decimal, error) {
	if edge1 == "" || edge2 == "" {
		return decimal.Zero, fmt.Errorf("%w: edge1 %q and edge2 %q must not be empty", internalerr.ErrInvalidInput, edge1, edge2)
	}
	if m.roles == nil {
		return decimal.Zero, fmt.Errorf("%w: no role unfolding strategy set", internalerr.ErrInvalidConfig)
	}

	roles1 := uniqueSorted(m.roles.UnfoldRoleHierarchy(edge1))
	if len(roles1) == 0 {
		return decimal.Zero, fmt.Errorf("%w: role unfolder returned nothing for %s", internalerr.ErrInvalidConfig, edge1)
	}
	roles2 := make(map[string]struct{})
	for _, r := range m.roles.UnfoldRoleHierarchy(edge2) {
		roles2[r] = struct{}{}
	}

	common := 0
	for _, r := range roles1 {
		if _, ok := roles2[r]; ok {
			common++
			rec.AppendExistential(r)
		}
	}

	return decimal.NewFromInt(int64(common)).DivRound(decimal.NewFromInt(int64(len(roles1))), Scale), nil
}

func uniqueSorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
