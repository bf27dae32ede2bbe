// Package table implements the 2-D, column-major cell store: a Table
// holds logical rows x columns of value.Value, addressed data[col][row],
// with capacity that may exceed the logical size and explicit 1-based
// (external) to 0-based (internal) index conversion. Grounded on the
// Table/Index/grow_to_fit usage visible in
// original_source/benches/table.rs and the broadcast/indexing code in
// original_source/src/operations.rs.
package table

import (
	"github.com/kr/pretty"

	"github.com/weftdb/weft/internal/errorsx"
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/value"
)

// IndexKind discriminates how an Index resolves to a column or row.
type IndexKind uint8

const (
	IndexPosition IndexKind = iota
	IndexAlias
)

// Index is either a 1-based positional index or a column-name alias hash.
type Index struct {
	kind  IndexKind
	pos   int
	alias tableid.ID
}

// PositionIndex builds a 1-based positional Index.
func PositionIndex(n int) Index {
	return Index{kind: IndexPosition, pos: n}
}

// AliasIndex builds an Index resolved via a column-name hash.
func AliasIndex(id tableid.ID) Index {
	return Index{kind: IndexAlias, alias: id}
}

// Table is a column-major 2-D cell grid: data[col][row], both 0-based
// internally. External callers always use 1-based row/col numbers.
type Table struct {
	ID   tableid.ID
	Rows int
	Cols int

	capRows int
	capCols int
	data    [][]value.Value

	columnAlias map[tableid.ID]int
	pendingCols map[int]bool
}

// New allocates a Table with the given id and initial logical size, equal
// to its initial capacity.
func New(id tableid.ID, rows, cols int) *Table {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	data := make([][]value.Value, cols)
	for i := range data {
		data[i] = make([]value.Value, rows)
	}
	return &Table{
		ID:          id,
		Rows:        rows,
		Cols:        cols,
		capRows:     rows,
		capCols:     cols,
		data:        data,
		columnAlias: make(map[tableid.ID]int),
		pendingCols: make(map[int]bool),
	}
}

func nextCap(cur, need int) int {
	if cur < 1 {
		cur = 1
	}
	for cur < need {
		cur *= 2
	}
	return cur
}

// GrowToFit ensures logical size is at least (rows, cols), doubling
// capacity where necessary and preserving all existing cells. Newly
// reachable cells are Empty.
func (t *Table) GrowToFit(rows, cols int) {
	if cols > t.capCols {
		newCap := nextCap(t.capCols, cols)
		newData := make([][]value.Value, newCap)
		copy(newData, t.data)
		for i := t.capCols; i < newCap; i++ {
			newData[i] = make([]value.Value, t.capRows)
		}
		t.data = newData
		t.capCols = newCap
	}
	if rows > t.capRows {
		newCapRows := nextCap(t.capRows, rows)
		for i := 0; i < t.capCols; i++ {
			col := make([]value.Value, newCapRows)
			copy(col, t.data[i])
			t.data[i] = col
		}
		t.capRows = newCapRows
	}
	if rows > t.Rows {
		t.Rows = rows
	}
	if cols > t.Cols {
		t.Cols = cols
	}
}

// SetColumnAlias registers a column-name hash as resolving to a 1-based
// column position.
func (t *Table) SetColumnAlias(alias tableid.ID, col int) {
	t.columnAlias[alias] = col
}

// Resolve converts an Index into a concrete 1-based column or row number.
func (t *Table) Resolve(idx Index) (int, error) {
	switch idx.kind {
	case IndexPosition:
		if idx.pos < 1 {
			return 0, errorsx.New(errorsx.IndexOutOfRange, "positional index %d is not 1-based positive", idx.pos)
		}
		return idx.pos, nil
	case IndexAlias:
		col, ok := t.columnAlias[idx.alias]
		if !ok {
			return 0, errorsx.New(errorsx.IndexOutOfRange, "alias %d has no registered column", uint64(idx.alias))
		}
		return col, nil
	default:
		return 0, errorsx.New(errorsx.IndexOutOfRange, "unknown index kind")
	}
}

// Set grows the table to fit (row,col) if needed, assigns the value, and
// records the column as pending for the change log.
func (t *Table) Set(row, col int, v value.Value) error {
	if row < 1 || col < 1 {
		return errorsx.New(errorsx.IndexOutOfRange, "row/col must be 1-based positive, got (%d,%d)", row, col).
			WithLocation(errorsx.Location{Table: uint64(t.ID), Row: uint32(row), Col: uint32(col)})
	}
	t.GrowToFit(row, col)
	t.data[col-1][row-1] = v
	t.pendingCols[col] = true
	return nil
}

// Get returns the current value at (row,col), or an error if it falls
// outside [1..Rows]x[1..Cols].
func (t *Table) Get(row, col int) (value.Value, error) {
	if row < 1 || col < 1 || row > t.Rows || col > t.Cols {
		return value.Empty, errorsx.New(errorsx.IndexOutOfRange, "(%d,%d) outside [1..%d]x[1..%d]", row, col, t.Rows, t.Cols).
			WithLocation(errorsx.Location{Table: uint64(t.ID), Row: uint32(row), Col: uint32(col)})
	}
	return t.data[col-1][row-1], nil
}

// Clear writes Empty at (row,col).
func (t *Table) Clear(row, col int) error {
	if row < 1 || col < 1 || row > t.Rows || col > t.Cols {
		return errorsx.New(errorsx.IndexOutOfRange, "(%d,%d) outside [1..%d]x[1..%d]", row, col, t.Rows, t.Cols).
			WithLocation(errorsx.Location{Table: uint64(t.ID), Row: uint32(row), Col: uint32(col)})
	}
	t.data[col-1][row-1] = value.Empty
	t.pendingCols[col] = true
	return nil
}

// Column returns a read-only view of column c (1-based), covering only
// the logical [1..Rows] extent.
func (t *Table) Column(c int) []value.Value {
	if c < 1 || c > t.Cols {
		return nil
	}
	return t.data[c-1][:t.Rows]
}

// PendingColumns returns the 1-based columns touched by Set/Clear since
// the last ClearPending, in ascending order.
func (t *Table) PendingColumns() []int {
	cols := make([]int, 0, len(t.pendingCols))
	for c := range t.pendingCols {
		cols = append(cols, c)
	}
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1] > cols[j]; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
	return cols
}

// ClearPending empties the pending-column log.
func (t *Table) ClearPending() {
	t.pendingCols = make(map[int]bool)
}

// snapshot is the exported-field view of a Table used for debug dumps, so
// pretty.Sprint renders cell contents instead of the internal grow/alias
// bookkeeping.
type snapshot struct {
	ID    uint64
	Rows  int
	Cols  int
	Cells [][]string
}

// Dump renders the table's logical contents via kr/pretty, in place of a
// hand-rolled %+v, matching the pack's debug-output idiom.
func (t *Table) Dump() string {
	cells := make([][]string, t.Rows)
	for r := 0; r < t.Rows; r++ {
		row := make([]string, t.Cols)
		for c := 0; c < t.Cols; c++ {
			v, _ := t.Get(r+1, c+1)
			row[c] = v.String()
		}
		cells[r] = row
	}
	return pretty.Sprint(snapshot{ID: uint64(t.ID), Rows: t.Rows, Cols: t.Cols, Cells: cells})
}
