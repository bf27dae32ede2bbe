// Package change defines the Change and Transaction types: the atomic
// batch of cell-level mutations a caller submits against the Store.
// Grounded on the Change variants implied by original_source's
// Database/Transaction usage in src/bin/main.rs
// ("Transaction::from_changeset(vec![Change::Add{...}, Change::NewTable(t1)])").
package change

import (
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/value"
)

// Kind discriminates the Change variant.
type Kind uint8

const (
	KindNewTable Kind = iota
	KindAdd
	KindSet
	KindRemove
)

// Change is one atomic mutation: NewTable allocates a table; Add and Set
// both write the cell (the Store applies them identically); Remove clears
// to Empty. Row/Col are 1-based.
type Change struct {
	Kind  Kind
	Table tableid.ID
	Rows  int // NewTable only
	Cols  int // NewTable only
	Row   int
	Col   int
	Value value.Value
}

// NewTable builds a Change that allocates a table with the given initial
// capacity.
func NewTable(id tableid.ID, rows, cols int) Change {
	return Change{Kind: KindNewTable, Table: id, Rows: rows, Cols: cols}
}

// Add builds a Change that writes the cell. The Store overwrites an existing
// value just as it does for Set; the separate kind only records that the
// caller meant a first write.
func Add(table tableid.ID, row, col int, v value.Value) Change {
	return Change{Kind: KindAdd, Table: table, Row: row, Col: col, Value: v}
}

// Set builds a Change that overwrites the cell unconditionally.
func Set(table tableid.ID, row, col int, v value.Value) Change {
	return Change{Kind: KindSet, Table: table, Row: row, Col: col, Value: v}
}

// Remove builds a Change that clears the cell to Empty.
func Remove(table tableid.ID, row, col int) Change {
	return Change{Kind: KindRemove, Table: table, Row: row, Col: col}
}

// Transaction is an ordered, atomic batch of Changes: from the runtime's
// observable perspective all Changes land before any block fires.
type Transaction struct {
	Changes []Change
}

// FromChangeset builds a Transaction from an ordered slice of Changes.
func FromChangeset(changes []Change) Transaction {
	return Transaction{Changes: changes}
}
