// Package weft implements the execution core of a reactive, table-oriented
// in-memory database: Transactions of cell-level Changes drive a Runtime of
// declarative Blocks that recompute derived values and write them back to a
// Store of Tables.
//
// DB is the concrete embedder-facing type wrapping both a Store and a
// Runtime, the way original_source/src/bin/main.rs's mech::database::
// Database wraps both.
package weft

import (
	"github.com/weftdb/weft/internal/block"
	"github.com/weftdb/weft/internal/change"
	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/runtime"
	"github.com/weftdb/weft/internal/store"
	"github.com/weftdb/weft/internal/table"
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/value"
)

// Re-exported types so an embedder only needs to import this one package
// for the common path; internal/* remains where the implementations and
// their own tests live.
type (
	TableID     = tableid.ID
	Value       = value.Value
	Quantity    = quantity.Quantity
	Change      = change.Change
	Transaction = change.Transaction
	Options     = runtime.Options
	WaveReport  = runtime.WaveReport
	Table       = table.Table
	Block       = block.Block
)

// NewBlock returns an empty Block ready for AddConstraint calls.
func NewBlock(id int, text string) *Block { return block.New(id, text) }

// NameID hashes name to a stable TableID; see internal/tableid for the
// pinned algorithm and seed.
func NameID(name string) TableID { return tableid.Hash(name) }

// DB owns one Store and one Runtime. Multiple independent DBs may coexist
// in one process; the Runtime is a value owned by its embedder, not a
// process-wide singleton.
type DB struct {
	store *store.Store
	rt    *runtime.Runtime
}

// New returns an empty DB configured with opts.
func New(opts Options) *DB {
	st := store.New()
	return &DB{store: st, rt: runtime.New(st, opts)}
}

// RegisterBlock validates and registers b against the DB's current Store
// contents. Blocks are immutable once registered.
func (db *DB) RegisterBlock(b *Block) error {
	return db.rt.RegisterBlock(b)
}

// Watch marks t's column changes as worth surfacing in future WaveReports.
func (db *DB) Watch(t TableID) { db.rt.Watch(t) }

// Submit applies txn and runs the reactive fixpoint loop to quiescence (or
// until the iteration guard raises Divergence).
func (db *DB) Submit(txn Transaction) (*WaveReport, error) {
	return db.rt.Submit(txn)
}

// Table returns the table registered under id, if any.
func (db *DB) Table(id TableID) (*Table, bool) {
	return db.store.Table(id)
}

// Tables returns every registered table id in registration order.
func (db *DB) Tables() []TableID {
	return db.store.Tables()
}

// Dump renders every registered table for diagnostics.
func (db *DB) Dump() string {
	return db.store.Dump()
}

// NewTableChange builds a Change that allocates a table with the given
// initial capacity.
func NewTableChange(id TableID, rows, cols int) Change {
	return change.NewTable(id, rows, cols)
}

// AddChange builds a Change that writes a cell, per the Store's
// create-or-overwrite semantics for Add (see internal/store).
func AddChange(t TableID, row, col int, v Value) Change {
	return change.Add(t, row, col, v)
}

// SetChange builds a Change that overwrites a cell unconditionally.
func SetChange(t TableID, row, col int, v Value) Change {
	return change.Set(t, row, col, v)
}

// RemoveChange builds a Change that clears a cell to Empty.
func RemoveChange(t TableID, row, col int) Change {
	return change.Remove(t, row, col)
}

// FromChangeset builds a Transaction from an ordered slice of Changes.
func FromChangeset(cs []Change) Transaction { return change.FromChangeset(cs) }

// Value constructors.
func BoxNumber(q Quantity) Value     { return value.BoxNumber(q) }
func BoxBool(b bool) Value           { return value.BoxBool(b) }
func BoxString(s string) Value       { return value.BoxString(s) }
func BoxReference(t TableID) Value   { return value.BoxReference(t) }

// Quantity constructors.
func FromI64(v int64) Quantity     { return quantity.FromI64(v) }
func FromU64(v uint64) Quantity    { return quantity.FromU64(v) }
func FromI32(v int32) Quantity     { return quantity.FromI32(v) }
func FromU32(v uint32) Quantity    { return quantity.FromU32(v) }
func FromFloat64(v float64) Quantity { return quantity.FromFloat64(v) }
