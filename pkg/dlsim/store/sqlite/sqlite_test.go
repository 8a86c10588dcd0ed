package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/store"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, at time.Time) store.Run {
	return store.Run{
		ID:        id,
		Concept1:  "ProudParent",
		Concept2:  "Parent",
		Degree:    "0.56666",
		CreatedAt: at.UTC(),
		Records: []store.RunRecord{
			{Level: 0, Node1: 0, Node2: 0, Degree: "0.56666", Primitives: []string{"Person"}, Existentials: []string{"hasChild", "hasChild(RichDoctor)"}},
			{Level: 1, Node1: 2, Node2: 1, Degree: "0.00000", Primitives: []string{}, Existentials: []string{}},
			{Level: 1, Node1: 1, Node2: 1, Degree: "0.50000", Primitives: []string{"Doctor"}, Existentials: []string{}},
		},
	}
}

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 tables, got %d", count)
	}
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	run := sampleRun("01HZX", time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC))
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, ok, err := st.GetRun(ctx, "01HZX")
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}

	want := run
	want.Records = []store.RunRecord{run.Records[0], run.Records[2], run.Records[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRunReplacesRecords(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	run := sampleRun("r1", time.Unix(10, 0))
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	run.Degree = "1.00000"
	run.Records = run.Records[:1]
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, _, err := st.GetRun(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Degree != "1.00000" || len(got.Records) != 1 {
		t.Errorf("run was not replaced: %+v", got)
	}
}

func TestGetRunMissing(t *testing.T) {
	_, ok, err := openTemp(t).GetRun(context.Background(), "missing")
	if err != nil || ok {
		t.Errorf("GetRun(missing) = %v, %v", ok, err)
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	err := openTemp(t).SaveRun(context.Background(), store.Run{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := st.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("ListRuns = %+v", runs)
	}
	if len(runs[0].Records) != 3 {
		t.Errorf("listed runs should carry their records, got %d", len(runs[0].Records))
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveRun(ctx, sampleRun("keep", time.Unix(42, 0))); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, ok, err := st.GetRun(ctx, "keep"); err != nil || !ok {
		t.Errorf("run lost after reopen: ok=%v err=%v", ok, err)
	}
}
