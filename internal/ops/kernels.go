package ops

import (
	"github.com/weftdb/weft/internal/errorsx"
	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/table"
	"github.com/weftdb/weft/internal/value"
)

// Fn identifies a Function constraint's operator, mirroring
// original_source's Function enum (Add/Subtract/Multiply/Divide/Power/
// HorizontalConcatenate/VerticalConcatenate/MathRound/MathFloor/MathSin/
// MathCos/StatSum/SetAny).
type Fn uint8

const (
	FnAdd Fn = iota
	FnSubtract
	FnMultiply
	FnDivide
	FnPower
	FnHConcat
	FnVConcat
	FnRound
	FnFloor
	FnSin
	FnCos
	FnSum
	FnSetAny
	FnUndefined
)

// Cmp identifies a Filter constraint's comparator.
type Cmp uint8

const (
	CmpLessThan Cmp = iota
	CmpGreaterThan
	CmpLessThanEqual
	CmpGreaterThanEqual
	CmpEqual
	CmpNotEqual
)

// Logic identifies a boolean-combinator Function.
type Logic uint8

const (
	LogicAnd Logic = iota
	LogicOr
)

func numericOp(f func(a, b quantity.Quantity) (quantity.Quantity, error)) CellOp {
	return func(l, r value.Value) (value.Value, bool, *errorsx.Error) {
		lq, lok := l.AsNumber()
		rq, rok := r.AsNumber()
		if !lok || !rok {
			return value.Empty, false, nil
		}
		result, err := f(lq, rq)
		if err != nil {
			if se, ok := err.(*errorsx.Error); ok {
				return value.Empty, false, se
			}
			return value.Empty, false, errorsx.New(errorsx.Overflow, "%s", err.Error())
		}
		return value.BoxNumber(result), true, nil
	}
}

// MathAdd, MathSubtract, MathMultiply, MathDivide, and MathPower are the
// CellOps for the corresponding Function constraints; any non-Number pair
// is silently skipped rather than erroring.
var (
	MathAdd      = numericOp(func(a, b quantity.Quantity) (quantity.Quantity, error) { return a.Add(b) })
	MathSubtract = numericOp(func(a, b quantity.Quantity) (quantity.Quantity, error) { return a.Sub(b) })
	MathMultiply = numericOp(func(a, b quantity.Quantity) (quantity.Quantity, error) { return a.Multiply(b) })
	MathDivide   = numericOp(func(a, b quantity.Quantity) (quantity.Quantity, error) { return a.Divide(b) })
	MathPower    = numericOp(func(a, b quantity.Quantity) (quantity.Quantity, error) { return a.Power(b) })
)

func compareOp(cmp Cmp) CellOp {
	return func(l, r value.Value) (value.Value, bool, *errorsx.Error) {
		if lq, lok := l.AsNumber(); lok {
			if rq, rok := r.AsNumber(); rok {
				return value.BoxBool(applyCmp(cmp, lq.Compare(rq))), true, nil
			}
			return value.Empty, false, nil
		}
		if ls, lok := l.AsString(); lok {
			if rs, rok := r.AsString(); rok {
				switch cmp {
				case CmpEqual:
					return value.BoxBool(ls == rs), true, nil
				case CmpNotEqual:
					return value.BoxBool(ls != rs), true, nil
				default:
					return value.Empty, false, nil
				}
			}
		}
		return value.Empty, false, nil
	}
}

func applyCmp(cmp Cmp, c int) bool {
	switch cmp {
	case CmpLessThan:
		return c < 0
	case CmpGreaterThan:
		return c > 0
	case CmpLessThanEqual:
		return c <= 0
	case CmpGreaterThanEqual:
		return c >= 0
	case CmpEqual:
		return c == 0
	case CmpNotEqual:
		return c != 0
	default:
		return false
	}
}

// Compare builds the CellOp for a Filter constraint's comparator.
func Compare(cmp Cmp) CellOp {
	return compareOp(cmp)
}

// LogicOp builds the CellOp for a boolean And/Or Function; non-Bool pairs
// are silently skipped.
func LogicOp(l Logic) CellOp {
	return func(lv, rv value.Value) (value.Value, bool, *errorsx.Error) {
		lb, lok := lv.AsBool()
		rb, rok := rv.AsBool()
		if !lok || !rok {
			return value.Empty, false, nil
		}
		switch l {
		case LogicAnd:
			return value.BoxBool(lb && rb), true, nil
		case LogicOr:
			return value.BoxBool(lb || rb), true, nil
		default:
			return value.Empty, false, nil
		}
	}
}

// SetAny resolves each output cell to whichever of lhs/rhs is non-Empty,
// preferring lhs; it's the CellOp behind the SetAny Function, used to
// coalesce an optional overlay register onto a base register.
var SetAny CellOp = func(l, r value.Value) (value.Value, bool, *errorsx.Error) {
	if !l.IsEmpty() {
		return l, true, nil
	}
	if !r.IsEmpty() {
		return r, true, nil
	}
	return value.Empty, false, nil
}

// UnaryOp applies f to every Number cell in the selected (rows, cols)
// region of in, writing into out at the same relative positions; any
// non-Number cell is skipped.
func UnaryOp(in *table.Table, rows, cols []int, out *table.Table, f func(quantity.Quantity) quantity.Quantity) *errorsx.List {
	errs := &errorsx.List{}
	width := dimWidth(in, cols)
	height := dimHeight(in, rows)
	out.GrowToFit(height, width)
	for i := 0; i < width; i++ {
		c := resolvePos(cols, i, i)
		for j := 0; j < height; j++ {
			r := resolvePos(rows, j, j)
			v, err := in.Get(r, c)
			if err != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", err.Error()))
				continue
			}
			q, ok := v.AsNumber()
			if !ok {
				continue
			}
			if werr := out.Set(j+1, i+1, value.BoxNumber(f(q))); werr != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", werr.Error()))
			}
		}
	}
	return errs
}

// Sum reduces every Number cell in the selected region of in to a single
// 1x1 output, the CellOp-less StatSum Function.
func Sum(in *table.Table, rows, cols []int, out *table.Table) *errorsx.List {
	errs := &errorsx.List{}
	width := dimWidth(in, cols)
	height := dimHeight(in, rows)
	total := quantity.FromI64(0)
	for i := 0; i < width; i++ {
		c := resolvePos(cols, i, i)
		for j := 0; j < height; j++ {
			r := resolvePos(rows, j, j)
			v, err := in.Get(r, c)
			if err != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", err.Error()))
				continue
			}
			q, ok := v.AsNumber()
			if !ok {
				continue
			}
			sum, err2 := total.Add(q)
			if err2 != nil {
				errs.Add(errorsx.New(errorsx.Overflow, "%s", err2.Error()))
				continue
			}
			total = sum
		}
	}
	out.GrowToFit(1, 1)
	if err := out.Set(1, 1, value.BoxNumber(total)); err != nil {
		errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", err.Error()))
	}
	return errs
}

// HConcat writes lhs then rhs side by side (lhs's columns followed by
// rhs's columns) into out; row counts must match or the taller operand's
// extra rows stay Empty on the shorter side.
func HConcat(lhs, rhs *table.Table, out *table.Table) *errorsx.List {
	errs := &errorsx.List{}
	height := lhs.Rows
	if rhs.Rows > height {
		height = rhs.Rows
	}
	out.GrowToFit(height, lhs.Cols+rhs.Cols)
	copyBlock(lhs, out, 0, errs)
	copyBlockOffset(rhs, out, 0, lhs.Cols, errs)
	return errs
}

// VConcat stacks lhs above rhs (lhs's rows followed by rhs's rows) into
// out.
func VConcat(lhs, rhs *table.Table, out *table.Table) *errorsx.List {
	errs := &errorsx.List{}
	width := lhs.Cols
	if rhs.Cols > width {
		width = rhs.Cols
	}
	out.GrowToFit(lhs.Rows+rhs.Rows, width)
	copyBlockRowOffset(lhs, out, 0, errs)
	copyBlockRowOffset(rhs, out, lhs.Rows, errs)
	return errs
}

func copyBlock(src, dst *table.Table, colOffset int, errs *errorsx.List) {
	copyBlockOffset(src, dst, 0, colOffset, errs)
}

func copyBlockOffset(src, dst *table.Table, rowOffset, colOffset int, errs *errorsx.List) {
	for c := 1; c <= src.Cols; c++ {
		for r := 1; r <= src.Rows; r++ {
			v, err := src.Get(r, c)
			if err != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", err.Error()))
				continue
			}
			if v.IsEmpty() {
				continue
			}
			if werr := dst.Set(r+rowOffset, c+colOffset, v); werr != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", werr.Error()))
			}
		}
	}
}

func copyBlockRowOffset(src, dst *table.Table, rowOffset int, errs *errorsx.List) {
	copyBlockOffset(src, dst, rowOffset, 0, errs)
}
