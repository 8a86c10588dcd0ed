package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/store"
)

func sampleRun(id string, at time.Time) store.Run {
	return store.Run{
		ID:        id,
		Concept1:  "ProudParent",
		Concept2:  "Parent",
		Degree:    "0.56666",
		CreatedAt: at,
		Records: []store.RunRecord{
			{Level: 0, Degree: "0.56666", Primitives: []string{"Person"}, Existentials: []string{"hasChild"}},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := New()

	run := sampleRun("01A", time.Unix(100, 0))
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, ok, err := s.GetRun(ctx, "01A")
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}
	if got.Degree != "0.56666" || len(got.Records) != 1 {
		t.Errorf("unexpected run: %+v", got)
	}

	// stored copies are isolated from the caller
	run.Records[0].Primitives[0] = "Changed"
	got.Records[0].Existentials[0] = "changed"
	again, _, _ := s.GetRun(ctx, "01A")
	if again.Records[0].Primitives[0] != "Person" || again.Records[0].Existentials[0] != "hasChild" {
		t.Errorf("store leaked a reference: %+v", again.Records[0])
	}
}

func TestGetRunMissing(t *testing.T) {
	_, ok, err := New().GetRun(context.Background(), "nope")
	if err != nil || ok {
		t.Errorf("GetRun(missing) = %v, %v", ok, err)
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	err := New().SaveRun(context.Background(), store.Run{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Unix(1000, 0)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("ListRuns = %+v", runs)
	}

	all, _ := s.ListRuns(ctx, 0)
	if len(all) != 3 {
		t.Errorf("default limit should return all 3 runs, got %d", len(all))
	}
}
