package backtrace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestTableAddGet(t *testing.T) {
	table := NewTable()
	rec := Record{Degree: decimal.RequireFromString("0.5")}
	rec.AppendPrimitive("A")
	rec.AppendExistential("hasChild")

	table.Add(Key{Level: 0, Node1: 0, Node2: 0}, rec)

	// mutating the caller's record must not leak into the table
	rec.AppendPrimitive("B")

	got, ok := table.Get(Key{0, 0, 0})
	if !ok {
		t.Fatal("record not found")
	}
	if diff := cmp.Diff([]string{"A"}, got.Primitives); diff != "" {
		t.Errorf("primitives mismatch (-want +got):\n%s", diff)
	}
	if !got.Degree.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("degree = %s", got.Degree)
	}

	if _, ok := table.Get(Key{1, 0, 0}); ok {
		t.Error("unexpected record at level 1")
	}
}

func TestTableKeys(t *testing.T) {
	table := NewTable()
	for _, k := range []Key{{1, 2, 1}, {0, 0, 0}, {1, 1, 2}, {1, 1, 1}, {2, 3, 3}} {
		table.Add(k, Record{})
	}

	want := []Key{{0, 0, 0}, {1, 1, 1}, {1, 1, 2}, {1, 2, 1}, {2, 3, 3}}
	if diff := cmp.Diff(want, table.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 5 {
		t.Errorf("Len = %d", table.Len())
	}
}

func TestMapConcepts(t *testing.T) {
	mapper := map[string]string{
		"(and Person HasMedicalDegree)":                              "Doctor",
		"(and Human (some hasChild (and Person HasMedicalDegree)))": "ProudParent",
	}

	tests := []struct {
		in   string
		want string
	}{
		{"(and Person HasMedicalDegree)", "Doctor"},
		{"(and Human (some hasChild (and Person HasMedicalDegree)))", "ProudParent"},
		{"(and Rich (some likes (and Person HasMedicalDegree)))", "(and Rich (some likes Doctor))"},
		{"Person", "Person"},
	}
	for _, tt := range tests {
		if got := MapConcepts(tt.in, mapper); got != tt.want {
			t.Errorf("MapConcepts(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := MapConcepts("(and A B)", nil); got != "(and A B)" {
		t.Errorf("nil mapper should be a no-op, got %q", got)
	}
}

func TestMapConceptsMatchesWholeNames(t *testing.T) {
	mapper := map[string]string{
		"Dog":       "Pet",
		"(and A B)": "AB",
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Dog", "Pet"},
		{"Dogwalker", "Dogwalker"},
		{"HotDog", "HotDog"},
		{"(and Dog Dogwalker)", "(and Pet Dogwalker)"},
		{"(some Dog Dog)", "(some Dog Pet)"},
		{"(and A B C)", "(and A B C)"},
		{"(and X (some r (and A B)))", "(and X (some r AB))"},
		{"(and Dog", "(and Dog"},
	}
	for _, tt := range tests {
		if got := MapConcepts(tt.in, mapper); got != tt.want {
			t.Errorf("MapConcepts(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExistential(t *testing.T) {
	if got := Existential("hasChild", "Doctor"); got != "hasChild(Doctor)" {
		t.Errorf("Existential = %q", got)
	}
}
