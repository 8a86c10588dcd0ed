// Package backtrace records why a directed similarity came out the way it
// did: one record per evaluated node pair.
package backtrace

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Key addresses a record: recursion level plus the arena indices of the
// node of the first and the second tree.
type Key struct {
	Level int
	Node1 int
	Node2 int
}

// Less orders keys by level, then node1, then node2.
func (k Key) Less(o Key) bool {
	if k.Level != o.Level {
		return k.Level < o.Level
	}
	if k.Node1 != o.Node1 {
		return k.Node1 < o.Node1
	}
	return k.Node2 < o.Node2
}

// Record explains one node pair.
type Record struct {
	Degree       decimal.Decimal
	Primitives   []string
	Existentials []string
}

// AppendPrimitive records a matched primitive.
func (r *Record) AppendPrimitive(name string) {
	r.Primitives = append(r.Primitives, name)
}

// AppendExistential records a role or rendered existential contribution.
func (r *Record) AppendExistential(s string) {
	r.Existentials = append(r.Existentials, s)
}

func (r Record) clone() Record {
	return Record{
		Degree:       r.Degree,
		Primitives:   append([]string(nil), r.Primitives...),
		Existentials: append([]string(nil), r.Existentials...),
	}
}

// Table indexes records of one similarity run.
type Table struct {
	records map[Key]Record
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{records: make(map[Key]Record)}
}

// Add stores a copy of rec under k.
func (t *Table) Add(k Key, rec Record) {
	t.records[k] = rec.clone()
}

// Get returns a copy of the record stored under k.
func (t *Table) Get(k Key) (Record, bool) {
	rec, ok := t.records[k]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Keys returns every key in (level, node1, node2) order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.records))
	for k := range t.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
