package block

import (
	"testing"

	"github.com/weftdb/weft/internal/change"
	"github.com/weftdb/weft/internal/ops"
	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/store"
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/value"
)

func fromI64(v int64) quantity.Quantity { return quantity.FromI64(v) }

func newStoreWithTables(t *testing.T, st *store.Store, txns ...change.Change) store.ChangedSet {
	t.Helper()
	changed, errs := st.Apply(change.FromChangeset(txns))
	if !errs.Empty() {
		t.Fatalf("Apply errors: %v", errs.Errs())
	}
	return changed
}

func TestDeriveIO(t *testing.T) {
	a := tableid.Hash("a")
	b := tableid.Hash("b")
	c := tableid.Hash("c")

	blk := New(1, "c = a + b")
	blk.AddConstraint(Scan(a, 1, 1))
	blk.AddConstraint(Scan(b, 1, 2))
	blk.AddConstraint(Function(ops.FnAdd, []int{1, 2}, 3))
	blk.AddConstraint(Insert(3, c, 1))
	blk.DeriveIO()

	if !blk.Inputs()[store.CellRef{Table: a, Col: 1}] {
		t.Error("inputs should include (a,1)")
	}
	if !blk.Inputs()[store.CellRef{Table: b, Col: 1}] {
		t.Error("inputs should include (b,1)")
	}
	if !blk.Outputs()[store.CellRef{Table: c, Col: 1}] {
		t.Error("outputs should include (c,1)")
	}
}

func TestValidateCatchesUnwrittenRegister(t *testing.T) {
	st := store.New()
	a := tableid.Hash("a")
	_ = newStoreWithTables(t, st, change.NewTable(a, 1, 1))

	blk := New(1, "bad")
	blk.AddConstraint(Function(ops.FnAdd, []int{99, 98}, 1))
	if err := blk.Validate(st); err == nil {
		t.Fatal("expected a validation error for reading unwritten registers")
	}
}

func TestValidateCatchesUnregisteredTable(t *testing.T) {
	st := store.New()
	blk := New(1, "bad")
	blk.AddConstraint(Scan(tableid.Hash("ghost"), 1, 1))
	if err := blk.Validate(st); err == nil {
		t.Fatal("expected a validation error for an unregistered table")
	}
}

func TestExecuteAddBlock(t *testing.T) {
	st := store.New()
	a := tableid.Hash("a")
	b := tableid.Hash("b")
	c := tableid.Hash("c")

	changed := newStoreWithTables(t, st,
		change.NewTable(a, 2, 1),
		change.NewTable(b, 2, 1),
		change.NewTable(c, 2, 1),
		change.Add(a, 1, 1, value.BoxNumber(fromI64(1))),
		change.Add(a, 2, 1, value.BoxNumber(fromI64(2))),
		change.Add(b, 1, 1, value.BoxNumber(fromI64(10))),
		change.Add(b, 2, 1, value.BoxNumber(fromI64(20))),
	)

	blk := New(1, "c = a + b")
	blk.AddConstraint(Scan(a, 1, 1))
	blk.AddConstraint(Scan(b, 1, 2))
	blk.AddConstraint(Function(ops.FnAdd, []int{1, 2}, 3))
	blk.AddConstraint(Insert(3, c, 1))
	blk.DeriveIO()

	if err := blk.Validate(st); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	emitted, errs := blk.Execute(st, changed)
	if !errs.Empty() {
		t.Fatalf("Execute errors: %v", errs.Errs())
	}
	if len(emitted) != 2 {
		t.Fatalf("len(emitted) = %d, want 2", len(emitted))
	}
	for _, ch := range emitted {
		if ch.Kind != change.KindAdd || ch.Table != c {
			t.Errorf("unexpected emitted change: %+v", ch)
		}
	}
}

func TestExecuteChangeScanSkipsWhenUntouched(t *testing.T) {
	st := store.New()
	a := tableid.Hash("a")
	b := tableid.Hash("b")
	c := tableid.Hash("c")

	_ = newStoreWithTables(t, st, change.NewTable(a, 1, 1), change.NewTable(b, 1, 1), change.NewTable(c, 1, 1))
	// A later wave touches only b; the block ChangeScans a instead, so it
	// should not fire.
	changed := newStoreWithTables(t, st, change.Add(b, 1, 1, value.BoxBool(true)))

	blk := New(1, "reacts to a only")
	blk.AddConstraint(ChangeScan(a, 1, 1))
	blk.AddConstraint(Insert(1, c, 1))

	emitted, errs := blk.Execute(st, changed)
	if !errs.Empty() {
		t.Fatalf("Execute errors: %v", errs.Errs())
	}
	if emitted != nil {
		t.Errorf("expected no emitted changes, got %v", emitted)
	}
}

func TestExecuteFilterAndIndexMask(t *testing.T) {
	st := store.New()
	a := tableid.Hash("a")
	out := tableid.Hash("out")
	changed := newStoreWithTables(t, st,
		change.NewTable(a, 3, 1),
		change.NewTable(out, 3, 1),
		change.Add(a, 1, 1, value.BoxNumber(fromI64(1))),
		change.Add(a, 2, 1, value.BoxNumber(fromI64(5))),
		change.Add(a, 3, 1, value.BoxNumber(fromI64(9))),
	)

	blk := New(1, "keep a > 3")
	blk.AddConstraint(Scan(a, 1, 1))
	blk.AddConstraint(Constant(value.BoxNumber(fromI64(3)), 2))
	blk.AddConstraint(Filter(ops.CmpGreaterThan, 1, 2, 3))
	blk.AddConstraint(IndexMask(1, 3, 4))
	blk.AddConstraint(Insert(4, out, 1))

	emitted, errs := blk.Execute(st, changed)
	if !errs.Empty() {
		t.Fatalf("Execute errors: %v", errs.Errs())
	}
	if len(emitted) != 2 {
		t.Fatalf("len(emitted) = %d, want 2 (5 and 9 pass the filter)", len(emitted))
	}
}
