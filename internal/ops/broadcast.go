// Package ops implements the broadcasting binary kernels used by the
// Function/Filter constraints: one generic Broadcast routine parameterized
// by a per-cell operation, replacing the textually macro-generated
// binary_math!/comparator!/logic! triplicate of
// original_source/src/operations.rs with a single generic binary-kernel
// routine parameterized by the per-cell operation and result type.
package ops

import (
	"github.com/weftdb/weft/internal/errorsx"
	"github.com/weftdb/weft/internal/table"
	"github.com/weftdb/weft/internal/value"
)

// CellOp computes one output cell from a pair of input cells. It returns
// (result, wrote, err): wrote=false means the pair's types don't support
// this operation and the cell is silently skipped (no output written);
// err is a structured failure (e.g. Overflow) recorded against the wave
// without aborting the rest of the broadcast.
type CellOp func(l, r value.Value) (value.Value, bool, *errorsx.Error)

func dimWidth(t *table.Table, cols []int) int {
	if len(cols) == 0 {
		return t.Cols
	}
	return len(cols)
}

func dimHeight(t *table.Table, rows []int) int {
	if len(rows) == 0 {
		return t.Rows
	}
	return len(rows)
}

// resolvePos maps an output-axis position to a concrete 1-based table
// position: selectors[selIdx] when a selector list is given (already
// 1-based), otherwise the natural identity position.
func resolvePos(selectors []int, selIdx, natural0based int) int {
	if len(selectors) == 0 {
		return natural0based + 1
	}
	return selectors[selIdx]
}

// Broadcast applies cell across lhs and rhs following the broadcast
// rules: equal shapes go elementwise; a 1x1 operand broadcasts against
// the other's shape; anything else is a ShapeMismatch and produces no
// output. Row/column selector lists (lhsRows, lhsCols, ...) remap source
// positions; empty means identity over the operand's natural axis.
func Broadcast(lhs *table.Table, lhsRows, lhsCols []int, rhs *table.Table, rhsRows, rhsCols []int, out *table.Table, cell CellOp) *errorsx.List {
	errs := &errorsx.List{}

	lhsWidth := dimWidth(lhs, lhsCols)
	rhsWidth := dimWidth(rhs, rhsCols)
	lhsHeight := dimHeight(lhs, lhsRows)
	rhsHeight := dimHeight(rhs, rhsRows)
	lhsScalar := lhsWidth == 1 && lhsHeight == 1
	rhsScalar := rhsWidth == 1 && rhsHeight == 1

	var outWidth, outHeight int
	var lhsColAt, rhsColAt func(i int) int
	var lhsRowAt, rhsRowAt func(j int) int

	switch {
	case lhsWidth == rhsWidth && lhsHeight == rhsHeight:
		outWidth, outHeight = lhsWidth, lhsHeight
		lhsColAt = func(i int) int { return resolvePos(lhsCols, i, i) }
		rhsColAt = func(i int) int { return resolvePos(rhsCols, i, i) }
		lhsRowAt = func(j int) int { return resolvePos(lhsRows, j, j) }
		rhsRowAt = func(j int) int { return resolvePos(rhsRows, j, j) }
	case lhsScalar:
		outWidth, outHeight = rhsWidth, rhsHeight
		lhsColAt = func(int) int { return resolvePos(lhsCols, 0, 0) }
		rhsColAt = func(i int) int { return resolvePos(rhsCols, i, i) }
		lhsRowAt = func(int) int { return resolvePos(lhsRows, 0, 0) }
		rhsRowAt = func(j int) int { return resolvePos(rhsRows, j, j) }
	case rhsScalar:
		outWidth, outHeight = lhsWidth, lhsHeight
		lhsColAt = func(i int) int { return resolvePos(lhsCols, i, i) }
		rhsColAt = func(int) int { return resolvePos(rhsCols, 0, 0) }
		lhsRowAt = func(j int) int { return resolvePos(lhsRows, j, j) }
		rhsRowAt = func(int) int { return resolvePos(rhsRows, 0, 0) }
	default:
		errs.Add(errorsx.New(errorsx.ShapeMismatch, "incompatible shapes: lhs=%dx%d rhs=%dx%d", lhsHeight, lhsWidth, rhsHeight, rhsWidth))
		return errs
	}

	out.GrowToFit(outHeight, outWidth)
	for i := 0; i < outWidth; i++ {
		lc := lhsColAt(i)
		rc := rhsColAt(i)
		for j := 0; j < outHeight; j++ {
			lr := lhsRowAt(j)
			rr := rhsRowAt(j)
			lv, lerr := lhs.Get(lr, lc)
			if lerr != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "lhs: %s", lerr.Error()))
				continue
			}
			rv, rerr := rhs.Get(rr, rc)
			if rerr != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "rhs: %s", rerr.Error()))
				continue
			}
			result, wrote, cellErr := cell(lv, rv)
			if cellErr != nil {
				errs.Add(cellErr)
				continue
			}
			if !wrote {
				continue
			}
			if err := out.Set(j+1, i+1, result); err != nil {
				errs.Add(errorsx.New(errorsx.IndexOutOfRange, "%s", err.Error()))
			}
		}
	}
	return errs
}
