// Package explain turns a backtrace table into an ordered, explainable
// report of one similarity run.
package explain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/cognicore/dlsim/pkg/dlsim/backtrace"
)

const scale = 5

// Builder constructs explanation reports. It is safe for concurrent use.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Report is the explanation of sim(Concept1, Concept2)
type Report struct {
	ID        string
	Concept1  string
	Concept2  string
	Degree    string
	CreatedAt time.Time
	Entries   []Entry
}

// Entry is one backtrace record in report form
type Entry struct {
	Level        int      `json:"level"`
	Node1        int      `json:"node1"`
	Node2        int      `json:"node2"`
	Degree       string   `json:"degree"`
	Primitives   []string `json:"primitives"`
	Existentials []string `json:"existentials"`
}

// Build creates a report from a finished run
func (b *Builder) Build(concept1, concept2 string, degree decimal.Decimal, table *backtrace.Table) Report {
	b.mu.Lock()
	now := b.now()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy)
	b.mu.Unlock()

	report := Report{
		ID:        id.String(),
		Concept1:  concept1,
		Concept2:  concept2,
		Degree:    degree.StringFixed(scale),
		CreatedAt: now.UTC(),
	}
	if table == nil {
		return report
	}

	report.Entries = make([]Entry, 0, table.Len())
	for _, k := range table.Keys() {
		rec, _ := table.Get(k)
		report.Entries = append(report.Entries, Entry{
			Level:        k.Level,
			Node1:        k.Node1,
			Node2:        k.Node2,
			Degree:       rec.Degree.StringFixed(scale),
			Primitives:   nonNil(rec.Primitives),
			Existentials: nonNil(rec.Existentials),
		})
	}
	return report
}

// Root returns the entry of the root pair, if present.
func (r Report) Root() (Entry, bool) {
	for _, e := range r.Entries {
		if e.Level == 0 && e.Node1 == 0 && e.Node2 == 0 {
			return e, true
		}
	}
	return Entry{}, false
}

// Lines renders the report for humans, one line per entry, indented by level.
func (r Report) Lines() []string {
	lines := []string{fmt.Sprintf("sim(%s, %s) = %s", r.Concept1, r.Concept2, r.Degree)}
	for _, e := range r.Entries {
		line := fmt.Sprintf("%s[%d] (%d, %d) = %s", strings.Repeat("  ", e.Level+1), e.Level, e.Node1, e.Node2, e.Degree)
		if len(e.Primitives) > 0 {
			line += " primitives: " + strings.Join(e.Primitives, ", ")
		}
		if len(e.Existentials) > 0 {
			line += " existentials: " + strings.Join(e.Existentials, ", ")
		}
		lines = append(lines, line)
	}
	return lines
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
