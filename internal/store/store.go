// Package store implements the table-id -> Table map and Transaction
// application: Store.Apply iterates Changes in order, locating or
// allocating tables and recording touched (table,col) pairs into a
// ChangedSet for the runtime to consult.
package store

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/weftdb/weft/internal/change"
	"github.com/weftdb/weft/internal/errorsx"
	"github.com/weftdb/weft/internal/table"
	"github.com/weftdb/weft/internal/tableid"
)

// CellRef names one (table, column) pair touched by a Transaction.
type CellRef struct {
	Table tableid.ID
	Col   int
}

// ChangedSet is the set of (table,col) pairs modified by the most recent
// wave of Changes.
type ChangedSet map[CellRef]struct{}

func newChangedSet() ChangedSet {
	return make(ChangedSet)
}

func (cs ChangedSet) add(table tableid.ID, col int) {
	cs[CellRef{Table: table, Col: col}] = struct{}{}
}

// Has reports whether (table,col) was touched.
func (cs ChangedSet) Has(tbl tableid.ID, col int) bool {
	_, ok := cs[CellRef{Table: tbl, Col: col}]
	return ok
}

// Empty reports whether the set has no entries.
func (cs ChangedSet) Empty() bool {
	return len(cs) == 0
}

// Refs returns the touched pairs in a deterministic order (by table id,
// then column), for reproducible block scheduling and logging.
func (cs ChangedSet) Refs() []CellRef {
	refs := make([]CellRef, 0, len(cs))
	for r := range cs {
		refs = append(refs, r)
	}
	slices.SortFunc(refs, func(a, b CellRef) int {
		if a.Table != b.Table {
			if a.Table < b.Table {
				return -1
			}
			return 1
		}
		return a.Col - b.Col
	})
	return refs
}

// Store owns every Table belonging to one Runtime instance.
type Store struct {
	mu     sync.RWMutex
	tables map[tableid.ID]*table.Table
	order  []tableid.ID
}

// New returns an empty Store.
func New() *Store {
	return &Store{tables: make(map[tableid.ID]*table.Table)}
}

// Table returns the table registered under id, if any.
func (s *Store) Table(id tableid.ID) (*table.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}

// Tables returns every registered table id in registration order.
func (s *Store) Tables() []tableid.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tableid.ID, len(s.order))
	copy(out, s.order)
	return out
}

// Apply iterates a Transaction's Changes in order and applies each to the
// Store, accumulating touched (table,col) pairs into a ChangedSet.
// MissingTable on Add/Set/Remove aborts only that Change; every other
// Change in the Transaction still applies, matching the propagation
// policy for non-Divergence errors.
func (s *Store) Apply(txn change.Transaction) (ChangedSet, *errorsx.List) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := newChangedSet()
	errs := &errorsx.List{}

	for _, c := range txn.Changes {
		switch c.Kind {
		case change.KindNewTable:
			s.applyNewTable(c)
		case change.KindAdd, change.KindSet:
			s.applyWrite(c, changed, errs)
		case change.KindRemove:
			s.applyRemove(c, changed, errs)
		}
	}
	return changed, errs
}

func (s *Store) applyNewTable(c change.Change) {
	existing, ok := s.tables[c.Table]
	if !ok {
		t := table.New(c.Table, c.Rows, c.Cols)
		s.tables[c.Table] = t
		s.order = append(s.order, c.Table)
		return
	}
	existing.GrowToFit(c.Rows, c.Cols)
}

// applyWrite handles both Add and Set. Add is documented as
// create-if-absent, but the Insert plan constraint emits Add Changes on
// every wave of a reactive recompute (a counter block re-inserts an
// incremented value each wave) — a literal absent-only Add would make
// that recompute invisible after the first wave. Both kinds write
// unconditionally; Add's distinct name documents caller intent, not a
// different store-level effect.
func (s *Store) applyWrite(c change.Change, changed ChangedSet, errs *errorsx.List) {
	t, ok := s.tables[c.Table]
	if !ok {
		errs.Add(errorsx.New(errorsx.MissingTable, "no table registered for id %d", uint64(c.Table)).
			WithLocation(errorsx.Location{Table: uint64(c.Table), Row: uint32(c.Row), Col: uint32(c.Col)}))
		return
	}
	if err := t.Set(c.Row, c.Col, c.Value); err != nil {
		errs.Add(asStructured(err))
		return
	}
	changed.add(c.Table, c.Col)
}

func (s *Store) applyRemove(c change.Change, changed ChangedSet, errs *errorsx.List) {
	t, ok := s.tables[c.Table]
	if !ok {
		errs.Add(errorsx.New(errorsx.MissingTable, "no table registered for id %d", uint64(c.Table)).
			WithLocation(errorsx.Location{Table: uint64(c.Table), Row: uint32(c.Row), Col: uint32(c.Col)}))
		return
	}
	if err := t.Clear(c.Row, c.Col); err != nil {
		errs.Add(asStructured(err))
		return
	}
	changed.add(c.Table, c.Col)
}

// Dump renders every registered table's Dump() in registration order,
// joined with blank lines, for CLI/test diagnostics.
func (s *Store) Dump() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := ""
	for _, id := range s.order {
		out += s.tables[id].Dump() + "\n\n"
	}
	return out
}

func asStructured(err error) *errorsx.Error {
	if se, ok := err.(*errorsx.Error); ok {
		return se
	}
	return errorsx.New(errorsx.IndexOutOfRange, "%s", err.Error())
}
