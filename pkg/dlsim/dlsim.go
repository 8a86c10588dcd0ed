// Package dlsim measures how similar two concepts of a description logic
// knowledge base are, and explains the result.
package dlsim

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cognicore/dlsim/pkg/dlsim/descriptiontree"
	"github.com/cognicore/dlsim/pkg/dlsim/explain"
	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/krss"
	"github.com/cognicore/dlsim/pkg/dlsim/profile"
	"github.com/cognicore/dlsim/pkg/dlsim/reasoner"
	"github.com/cognicore/dlsim/pkg/dlsim/roles"
	"github.com/cognicore/dlsim/pkg/dlsim/store"
	"github.com/cognicore/dlsim/pkg/dlsim/unfold"
)

// Dlsim is the main similarity engine facade
type Dlsim struct {
	kb      *krss.KnowledgeBase
	profile profile.PreferenceProfile
	roles   reasoner.RoleUnfolder
	store   store.Store
	logger  *slog.Logger
	reports *explain.Builder
}

// Options configures a Dlsim instance
type Options struct {
	KB *krss.KnowledgeBase

	// Profile defaults to profile.Default().
	Profile *profile.PreferenceProfile

	// Roles defaults to the role hierarchy declared in KB.
	Roles reasoner.RoleUnfolder

	// Store is optional; when set every measurement is persisted.
	Store store.Store

	Logger *slog.Logger
}

// Result is the outcome of one measurement
type Result struct {
	Degree        decimal.Decimal
	Expanded1     string
	Expanded2     string
	ExecutionTime string
	Report        explain.Report
}

// New creates a Dlsim instance with the given dependencies
func New(opts Options) (*Dlsim, error) {
	if opts.KB == nil {
		return nil, fmt.Errorf("new dlsim: %w: knowledge base is required", internalerr.ErrInvalidConfig)
	}

	d := &Dlsim{
		kb:      opts.KB,
		profile: profile.Default(),
		roles:   opts.Roles,
		store:   opts.Store,
		logger:  opts.Logger,
		reports: explain.New(),
	}
	if opts.Profile != nil {
		d.profile = *opts.Profile
	}
	if d.roles == nil {
		d.roles = roles.FromParents(opts.KB.RoleParents())
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Close cleanly shuts down the Dlsim instance
func (d *Dlsim) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}

// Unfold returns the fully unfolded definition of a concept name, or of
// every defined name in a concept expression.
func (d *Dlsim) Unfold(concept string) (string, error) {
	return unfoldConcept(unfold.New(d.kb), concept)
}

func unfoldConcept(u *unfold.Unfolder, concept string) (string, error) {
	concept = strings.TrimSpace(concept)
	if strings.HasPrefix(concept, "(") {
		return u.UnfoldExpression(concept)
	}
	return u.UnfoldConceptDefinitionString(concept)
}

// Measure computes sim(concept1, concept2). Both arguments may be concept
// names or concept expressions. Measure is safe for concurrent use.
func (d *Dlsim) Measure(ctx context.Context, concept1, concept2 string) (Result, error) {
	if strings.TrimSpace(concept1) == "" || strings.TrimSpace(concept2) == "" {
		return Result{}, fmt.Errorf("measure: %w: both concepts are required", internalerr.ErrInvalidInput)
	}

	u := unfold.New(d.kb)
	expanded1, err := unfoldConcept(u, concept1)
	if err != nil {
		return Result{}, fmt.Errorf("unfold %s: %w", concept1, err)
	}
	expanded2, err := unfoldConcept(u, concept2)
	if err != nil {
		return Result{}, fmt.Errorf("unfold %s: %w", concept2, err)
	}

	tree1, err := descriptiontree.Build(expanded1)
	if err != nil {
		return Result{}, fmt.Errorf("build tree for %s: %w", concept1, err)
	}
	tree2, err := descriptiontree.Build(expanded2)
	if err != nil {
		return Result{}, fmt.Errorf("build tree for %s: %w", concept2, err)
	}

	r := reasoner.New(d.profile,
		reasoner.WithRoleUnfolder(d.roles),
		reasoner.WithLogger(d.logger),
	)
	degree, err := r.MeasureDirectedSimilarity(ctx, tree1, tree2, u.UnfoldedConceptMap())
	if err != nil {
		return Result{}, err
	}

	// expressions are labelled canonically so stored runs compare by text
	res := Result{
		Degree:    degree,
		Expanded1: expanded1,
		Expanded2: expanded2,
		Report:    d.reports.Build(krss.Canonical(concept1), krss.Canonical(concept2), degree, r.BacktraceTable()),
	}
	if times := r.ExecutionTimes(); len(times) > 0 {
		res.ExecutionTime = times[len(times)-1]
	}

	if d.store != nil {
		if err := d.store.SaveRun(ctx, toRun(res.Report)); err != nil {
			return Result{}, fmt.Errorf("save run %s: %w", res.Report.ID, err)
		}
	}

	d.logger.Info("similarity measured",
		slog.String("concept1", res.Report.Concept1),
		slog.String("concept2", res.Report.Concept2),
		slog.String("degree", res.Report.Degree),
		slog.String("run", res.Report.ID),
	)
	return res, nil
}

// Run loads a persisted measurement by ID.
func (d *Dlsim) Run(ctx context.Context, id string) (store.Run, error) {
	if d.store == nil {
		return store.Run{}, fmt.Errorf("get run: %w: no store configured", internalerr.ErrStoreUnavailable)
	}
	run, ok, err := d.store.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	if !ok {
		return store.Run{}, fmt.Errorf("get run %s: %w", id, internalerr.ErrNotFound)
	}
	return run, nil
}

// Runs lists persisted measurements, most recent first.
func (d *Dlsim) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if d.store == nil {
		return nil, fmt.Errorf("list runs: %w: no store configured", internalerr.ErrStoreUnavailable)
	}
	return d.store.ListRuns(ctx, limit)
}

func toRun(report explain.Report) store.Run {
	run := store.Run{
		ID:        report.ID,
		Concept1:  report.Concept1,
		Concept2:  report.Concept2,
		Degree:    report.Degree,
		CreatedAt: report.CreatedAt,
		Records:   make([]store.RunRecord, len(report.Entries)),
	}
	for i, e := range report.Entries {
		run.Records[i] = store.RunRecord{
			Level:        e.Level,
			Node1:        e.Node1,
			Node2:        e.Node2,
			Degree:       e.Degree,
			Primitives:   e.Primitives,
			Existentials: e.Existentials,
		}
	}
	return run
}
