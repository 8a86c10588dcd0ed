package store

import (
	"context"
	"time"
)

// Store persists similarity runs and their backtrace records
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Run is one measured sim(Concept1, Concept2)
type Run struct {
	ID        string
	Concept1  string
	Concept2  string
	Degree    string
	CreatedAt time.Time
	Records   []RunRecord
}

// RunRecord is one backtrace entry of a run
type RunRecord struct {
	Level        int
	Node1        int
	Node2        int
	Degree       string
	Primitives   []string
	Existentials []string
}

// DefaultListLimit is used when ListRuns is called with a non-positive limit.
const DefaultListLimit = 20
