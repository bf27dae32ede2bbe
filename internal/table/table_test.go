package table

import (
	"testing"

	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/value"
)

func tableIDFor(name string) tableid.ID { return tableid.Hash(name) }

func TestSetGet(t *testing.T) {
	tbl := New(0, 2, 2)
	v := value.BoxNumber(quantity.FromI64(100))
	if err := tbl.Set(1, 1, v); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := tbl.Get(1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(v) {
		t.Errorf("Get(1,1) = %v, want %v", got, v)
	}
}

func TestGetDefaultsEmpty(t *testing.T) {
	tbl := New(0, 2, 2)
	got, err := tbl.Get(2, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("Get(2,2) = %v, want Empty", got)
	}
}

func TestSetGrowsLogicalSize(t *testing.T) {
	tbl := New(0, 1, 1)
	if err := tbl.Set(5, 3, value.BoxBool(true)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if tbl.Rows != 5 || tbl.Cols != 3 {
		t.Errorf("Rows,Cols = %d,%d want 5,3", tbl.Rows, tbl.Cols)
	}
	got, err := tbl.Get(5, 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b, ok := got.AsBool(); !ok || !b {
		t.Errorf("Get(5,3) = %v, want true", got)
	}
	// Cells brought into the logical range by growth default to Empty.
	if v, err := tbl.Get(1, 1); err != nil || !v.IsEmpty() {
		t.Errorf("Get(1,1) = %v, %v, want Empty, nil", v, err)
	}
}

func TestGetOutOfRange(t *testing.T) {
	tbl := New(0, 2, 2)
	if _, err := tbl.Get(3, 1); err == nil {
		t.Error("Get(3,1) on a 2x2 table should error")
	}
	if _, err := tbl.Get(0, 1); err == nil {
		t.Error("Get(0,1) should error: 0 is not 1-based positive")
	}
}

func TestClear(t *testing.T) {
	tbl := New(0, 1, 1)
	_ = tbl.Set(1, 1, value.BoxString("x"))
	if err := tbl.Clear(1, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, _ := tbl.Get(1, 1)
	if !got.IsEmpty() {
		t.Errorf("Get(1,1) after Clear = %v, want Empty", got)
	}
}

func TestGrowPreservesExistingCells(t *testing.T) {
	tbl := New(0, 1, 1)
	_ = tbl.Set(1, 1, value.BoxString("keep"))
	tbl.GrowToFit(4, 4)
	got, err := tbl.Get(1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s, ok := got.AsString(); !ok || s != "keep" {
		t.Errorf("Get(1,1) after grow = %v, want \"keep\"", got)
	}
}

func TestColumnAlias(t *testing.T) {
	tbl := New(0, 1, 2)
	alias := tableIDFor("col-b")
	tbl.SetColumnAlias(alias, 2)
	col, err := tbl.Resolve(AliasIndex(alias))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if col != 2 {
		t.Errorf("Resolve(alias) = %d, want 2", col)
	}
	if _, err := tbl.Resolve(AliasIndex(tableIDFor("unregistered"))); err == nil {
		t.Error("Resolve on an unregistered alias should error")
	}
}

func TestPendingColumns(t *testing.T) {
	tbl := New(0, 2, 3)
	_ = tbl.Set(1, 3, value.BoxBool(true))
	_ = tbl.Set(1, 1, value.BoxBool(true))
	got := tbl.PendingColumns()
	want := []int{1, 3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("PendingColumns() = %v, want %v", got, want)
	}
	tbl.ClearPending()
	if got := tbl.PendingColumns(); len(got) != 0 {
		t.Errorf("PendingColumns() after ClearPending = %v, want empty", got)
	}
}

func TestColumn(t *testing.T) {
	tbl := New(0, 2, 1)
	_ = tbl.Set(1, 1, value.BoxBool(true))
	_ = tbl.Set(2, 1, value.BoxBool(false))
	col := tbl.Column(1)
	if len(col) != 2 {
		t.Fatalf("Column(1) len = %d, want 2", len(col))
	}
	if b, _ := col[0].AsBool(); !b {
		t.Error("Column(1)[0] should be true")
	}
}
