// Package value implements the tagged union stored in every table cell:
// Number(Quantity) | Bool | String | Reference(TableId) | Empty. Table
// cells need an unbounded String variant, so this is a small tagged
// struct rather than a NaN-boxed uint64, using the same Box/As/Is
// accessor-function naming as the VM's own operand value type.
package value

import (
	"fmt"

	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/tableid"
)

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindBool
	KindString
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Value is the tagged cell value. The zero Value is Empty.
type Value struct {
	kind Kind
	num  quantity.Quantity
	b    bool
	s    string
	ref  tableid.ID
}

// Empty is the default of an allocated but unset cell.
var Empty = Value{kind: KindEmpty}

// BoxNumber wraps a Quantity.
func BoxNumber(q quantity.Quantity) Value {
	return Value{kind: KindNumber, num: q}
}

// BoxBool wraps a bool.
func BoxBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// BoxString wraps a string.
func BoxString(s string) Value {
	return Value{kind: KindString, s: s}
}

// BoxReference wraps a TableId reference.
func BoxReference(id tableid.ID) Value {
	return Value{kind: KindReference, ref: id}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsEmpty() bool     { return v.kind == KindEmpty }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsBool() bool      { return v.kind == KindBool }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsReference() bool { return v.kind == KindReference }

// AsNumber returns the Quantity and true if v holds a Number.
func (v Value) AsNumber() (quantity.Quantity, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the bool and true if v holds a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsString returns the string and true if v holds a String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsReference returns the TableId and true if v holds a Reference.
func (v Value) AsReference() (tableid.ID, bool) {
	if v.kind != KindReference {
		return 0, false
	}
	return v.ref, true
}

// Equal reports structural equality: same Kind and same payload, with
// Numbers compared by their packed bits rather than by numeric value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindNumber:
		return uint64(v.num) == uint64(other.num)
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindReference:
		return v.ref == other.ref
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return v.num.String()
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.s
	case KindReference:
		return fmt.Sprintf("ref(%d)", uint64(v.ref))
	default:
		return "?"
	}
}
