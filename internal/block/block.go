// Package block implements the declarative Block: a set of Constraints
// (the declaration), an ordered Plan (the execution schedule), and the
// derived input/output (table,col) sets the Runtime indexes blocks by.
// Grounded on original_source/src/bin/main.rs's Block construction
// (`Block::new()` + `add_constraint(Constraint::Scan{...})` +
// `Constraint::Function{operation: Function::Add, ...}` +
// `Constraint::Insert{...}`).
package block

import (
	"fmt"

	"github.com/weftdb/weft/internal/change"
	"github.com/weftdb/weft/internal/errorsx"
	"github.com/weftdb/weft/internal/ops"
	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/register"
	"github.com/weftdb/weft/internal/store"
	"github.com/weftdb/weft/internal/table"
	"github.com/weftdb/weft/internal/tableid"
	"github.com/weftdb/weft/internal/value"
)

// ConstraintKind discriminates the Constraint variant.
type ConstraintKind uint8

const (
	KindScan ConstraintKind = iota
	KindChangeScan
	KindIdentity
	KindConstant
	KindFunction
	KindFilter
	KindIndexMask
	KindInsert
	KindSet
)

// Constraint is one step of a Block's declaration/plan. Only the fields
// relevant to Kind are populated; see the Scan/ChangeScan/.../Set
// constructors.
type Constraint struct {
	Kind ConstraintKind

	Table    tableid.ID // Scan, ChangeScan, Insert, Set
	Column   int        // Scan, ChangeScan, Insert, Set (1-based)
	Register int        // Scan, ChangeScan, Constant: dest register. Insert, Set: source register.

	Source int // Identity, IndexMask: source register
	Sink   int // Identity: dest register

	Value value.Value // Constant

	Op     ops.Fn // Function
	Params []int  // Function: 1 or 2 operand registers
	Output int    // Function, IndexMask: dest register

	Cmp  ops.Cmp // Filter
	LHS  int     // Filter
	RHS  int     // Filter
	Mask int     // Filter: dest mask register. IndexMask: truth register.
}

// Scan builds a Constraint that sets register r to a (rows,1) view of
// (table,col), re-read from the store on every execution.
func Scan(t tableid.ID, col, r int) Constraint {
	return Constraint{Kind: KindScan, Table: t, Column: col, Register: r}
}

// ChangeScan builds a Constraint that sets register r to the current
// column if (table,col) was touched this wave, skipping the whole block
// otherwise.
func ChangeScan(t tableid.ID, col, r int) Constraint {
	return Constraint{Kind: KindChangeScan, Table: t, Column: col, Register: r}
}

// Identity copies register source into register sink, by reference.
func Identity(source, sink int) Constraint {
	return Constraint{Kind: KindIdentity, Source: source, Sink: sink}
}

// Constant sets register r to a 1x1 table containing v.
func Constant(v value.Value, r int) Constraint {
	return Constraint{Kind: KindConstant, Value: v, Register: r}
}

// Function applies op to the 1 or 2 operand registers in params, writing
// the broadcast result into register output.
func Function(op ops.Fn, params []int, output int) Constraint {
	return Constraint{Kind: KindFunction, Op: op, Params: params, Output: output}
}

// Filter compares registers lhs and rhs with cmp, writing a boolean mask
// of the broadcast shape into register mask.
func Filter(cmp ops.Cmp, lhs, rhs, mask int) Constraint {
	return Constraint{Kind: KindFilter, Cmp: cmp, LHS: lhs, RHS: rhs, Mask: mask}
}

// IndexMask writes the rows of register source where register mask (truth)
// is true, in source order, into register output.
func IndexMask(source, mask, output int) Constraint {
	return Constraint{Kind: KindIndexMask, Source: source, Mask: mask, Output: output}
}

// Insert emits one Add Change per row of register r into (t, col).
func Insert(r int, t tableid.ID, col int) Constraint {
	return Constraint{Kind: KindInsert, Register: r, Table: t, Column: col}
}

// Set emits one Set Change per row of register r into (t, col).
func Set(r int, t tableid.ID, col int) Constraint {
	return Constraint{Kind: KindSet, Register: r, Table: t, Column: col}
}

// Block is a compiled, declarative unit of computation: created by an
// external compiler, registered with the Runtime (immutable afterward),
// executed zero or more times per Transaction.
type Block struct {
	ID          int
	Text        string
	Constraints []Constraint
	Plan        []Constraint

	inputs  map[store.CellRef]bool
	outputs map[store.CellRef]bool
}

// New returns an empty Block ready for AddConstraint calls.
func New(id int, text string) *Block {
	return &Block{ID: id, Text: text}
}

// AddConstraint appends c to both the declaration and the execution plan;
// weft doesn't reorder plans independently of declaration order.
func (b *Block) AddConstraint(c Constraint) {
	b.Constraints = append(b.Constraints, c)
	b.Plan = append(b.Plan, c)
}

// DeriveIO computes the block's input and output (table,col) sets from
// its constraints. Called once by Runtime at registration time.
func (b *Block) DeriveIO() {
	b.inputs = make(map[store.CellRef]bool)
	b.outputs = make(map[store.CellRef]bool)
	for _, c := range b.Constraints {
		switch c.Kind {
		case KindScan, KindChangeScan:
			b.inputs[store.CellRef{Table: c.Table, Col: c.Column}] = true
		case KindInsert, KindSet:
			b.outputs[store.CellRef{Table: c.Table, Col: c.Column}] = true
		}
	}
}

// Inputs returns the (table,col) pairs this block scan-reads.
func (b *Block) Inputs() map[store.CellRef]bool { return b.inputs }

// Outputs returns the (table,col) pairs this block may write.
func (b *Block) Outputs() map[store.CellRef]bool { return b.outputs }

// Validate checks that every register used as a source in the plan was
// written earlier, and that every table referenced by a Scan/ChangeScan/
// Insert/Set is registered in st.
func (b *Block) Validate(st *store.Store) error {
	written := make(map[int]bool)
	for _, c := range b.Plan {
		switch c.Kind {
		case KindScan, KindChangeScan:
			if _, ok := st.Table(c.Table); !ok {
				return fmt.Errorf("block %d: scan references unregistered table %d", b.ID, uint64(c.Table))
			}
			written[c.Register] = true
		case KindIdentity:
			if !written[c.Source] {
				return fmt.Errorf("block %d: identity reads unwritten register %d", b.ID, c.Source)
			}
			written[c.Sink] = true
		case KindConstant:
			written[c.Register] = true
		case KindFunction:
			for _, p := range c.Params {
				if !written[p] {
					return fmt.Errorf("block %d: function reads unwritten register %d", b.ID, p)
				}
			}
			written[c.Output] = true
		case KindFilter:
			if !written[c.LHS] || !written[c.RHS] {
				return fmt.Errorf("block %d: filter reads an unwritten register", b.ID)
			}
			written[c.Mask] = true
		case KindIndexMask:
			if !written[c.Source] || !written[c.Mask] {
				return fmt.Errorf("block %d: indexmask reads an unwritten register", b.ID)
			}
			written[c.Output] = true
		case KindInsert, KindSet:
			if !written[c.Register] {
				return fmt.Errorf("block %d: insert/set reads unwritten register %d", b.ID, c.Register)
			}
			if _, ok := st.Table(c.Table); !ok {
				return fmt.Errorf("block %d: insert/set references unregistered table %d", b.ID, uint64(c.Table))
			}
		}
	}
	return nil
}

// Execute runs the block's plan once against st, using changed to resolve
// ChangeScan constraints. It returns the Changes to stage and any
// structured errors accumulated along the way (per-cell TypeMismatch/
// ShapeMismatch/Overflow do not abort the block; only a missing
// ChangeScan column does, by skipping entirely).
func (b *Block) Execute(st *store.Store, changed store.ChangedSet) ([]change.Change, *errorsx.List) {
	reg := register.New()
	errs := &errorsx.List{}
	var emitted []change.Change

	for _, c := range b.Plan {
		switch c.Kind {
		case KindScan:
			if err := b.execScan(st, reg, c); err != nil {
				errs.Add(err)
			}
		case KindChangeScan:
			if !changed.Has(c.Table, c.Column) {
				return nil, errs
			}
			if err := b.execScan(st, reg, c); err != nil {
				errs.Add(err)
			}
		case KindIdentity:
			if src, ok := reg.Get(c.Source); ok {
				reg.Bind(c.Sink, src)
			}
		case KindConstant:
			scratch := table.New(tableid.ID(c.Register), 1, 1)
			_ = scratch.Set(1, 1, c.Value)
			reg.Bind(c.Register, scratch)
		case KindFunction:
			b.execFunction(reg, c, errs)
		case KindFilter:
			lhs, lok := reg.Get(c.LHS)
			rhs, rok := reg.Get(c.RHS)
			if !lok || !rok {
				continue
			}
			out := reg.GetOrCreate(c.Mask, 0, 0)
			errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.Compare(c.Cmp)))
		case KindIndexMask:
			b.execIndexMask(reg, c)
		case KindInsert:
			emitted = append(emitted, b.execEmit(reg, c, false)...)
		case KindSet:
			emitted = append(emitted, b.execEmit(reg, c, true)...)
		}
	}
	return emitted, errs
}

func (b *Block) execScan(st *store.Store, reg *register.File, c Constraint) *errorsx.Error {
	t, ok := st.Table(c.Table)
	if !ok {
		return errorsx.New(errorsx.MissingTable, "block %d: no table %d", b.ID, uint64(c.Table))
	}
	scratch := table.New(tableid.ID(c.Register), t.Rows, 1)
	for r := 1; r <= t.Rows; r++ {
		v, _ := t.Get(r, c.Column)
		_ = scratch.Set(r, 1, v)
	}
	reg.Bind(c.Register, scratch)
	return nil
}

func (b *Block) execFunction(reg *register.File, c Constraint, errs *errorsx.List) {
	if len(c.Params) == 0 {
		return
	}
	lhs, ok := reg.Get(c.Params[0])
	if !ok {
		return
	}
	out := reg.GetOrCreate(c.Output, 0, 0)

	switch c.Op {
	case ops.FnRound:
		errs.Merge(ops.UnaryOp(lhs, nil, nil, out, quantity.Quantity.Round))
		return
	case ops.FnFloor:
		errs.Merge(ops.UnaryOp(lhs, nil, nil, out, quantity.Quantity.Floor))
		return
	case ops.FnSin:
		errs.Merge(ops.UnaryOp(lhs, nil, nil, out, quantity.Quantity.Sin))
		return
	case ops.FnCos:
		errs.Merge(ops.UnaryOp(lhs, nil, nil, out, quantity.Quantity.Cos))
		return
	case ops.FnSum:
		errs.Merge(ops.Sum(lhs, nil, nil, out))
		return
	}

	if len(c.Params) < 2 {
		return
	}
	rhs, ok := reg.Get(c.Params[1])
	if !ok {
		return
	}
	switch c.Op {
	case ops.FnAdd:
		errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.MathAdd))
	case ops.FnSubtract:
		errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.MathSubtract))
	case ops.FnMultiply:
		errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.MathMultiply))
	case ops.FnDivide:
		errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.MathDivide))
	case ops.FnPower:
		errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.MathPower))
	case ops.FnHConcat:
		errs.Merge(ops.HConcat(lhs, rhs, out))
	case ops.FnVConcat:
		errs.Merge(ops.VConcat(lhs, rhs, out))
	case ops.FnSetAny:
		errs.Merge(ops.Broadcast(lhs, nil, nil, rhs, nil, nil, out, ops.SetAny))
	}
}

func (b *Block) execIndexMask(reg *register.File, c Constraint) {
	src, sok := reg.Get(c.Source)
	mask, mok := reg.Get(c.Mask)
	if !sok || !mok {
		return
	}
	var rows []int
	for r := 1; r <= mask.Rows; r++ {
		v, err := mask.Get(r, 1)
		if err != nil {
			continue
		}
		if truth, ok := v.AsBool(); ok && truth {
			rows = append(rows, r)
		}
	}
	out := table.New(tableid.ID(c.Output), len(rows), src.Cols)
	for newR, oldR := range rows {
		for col := 1; col <= src.Cols; col++ {
			v, _ := src.Get(oldR, col)
			_ = out.Set(newR+1, col, v)
		}
	}
	reg.Bind(c.Output, out)
}

func (b *Block) execEmit(reg *register.File, c Constraint, overwrite bool) []change.Change {
	src, ok := reg.Get(c.Register)
	if !ok {
		return nil
	}
	out := make([]change.Change, 0, src.Rows)
	for r := 1; r <= src.Rows; r++ {
		v, err := src.Get(r, 1)
		if err != nil {
			continue
		}
		if overwrite {
			out = append(out, change.Set(c.Table, r, c.Column, v))
		} else {
			out = append(out, change.Add(c.Table, r, c.Column, v))
		}
	}
	return out
}
