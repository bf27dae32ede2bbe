// Package register implements the per-block register file: scratch
// Tables indexed by small integers, allocated lazily on first write.
// A block gets a fresh File on every invocation rather than a reused
// one, since Runtime can execute multiple blocks' waves concurrently
// and a shared File would race.
package register

import (
	"github.com/weftdb/weft/internal/table"
	"github.com/weftdb/weft/internal/tableid"
)

// File is one block invocation's scratch register set.
type File struct {
	tables map[int]*table.Table
}

// New returns an empty register file.
func New() *File {
	return &File{tables: make(map[int]*table.Table)}
}

// Get returns the scratch table at r, if it has been written.
func (f *File) Get(r int) (*table.Table, bool) {
	t, ok := f.tables[r]
	return t, ok
}

// Bind assigns a register to reference an existing table directly (used
// by Identity, which copies a register "by reference, not clone").
func (f *File) Bind(r int, t *table.Table) {
	f.tables[r] = t
}

// GetOrCreate returns the scratch table at r, allocating a (rows, cols)
// table lazily if r has not been written yet.
func (f *File) GetOrCreate(r, rows, cols int) *table.Table {
	t, ok := f.tables[r]
	if !ok {
		t = table.New(tableid.ID(r), rows, cols)
		f.tables[r] = t
	}
	return t
}
