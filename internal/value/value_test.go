package value

import (
	"testing"

	"github.com/weftdb/weft/internal/quantity"
	"github.com/weftdb/weft/internal/tableid"
)

func TestBoxAndAs(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"empty", Empty, KindEmpty},
		{"number", BoxNumber(quantity.FromI64(42)), KindNumber},
		{"bool", BoxBool(true), KindBool},
		{"string", BoxString("hi"), KindString},
		{"reference", BoxReference(tableid.Hash("t")), KindReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestAsAccessorsRejectWrongKind(t *testing.T) {
	v := BoxBool(true)
	if _, ok := v.AsNumber(); ok {
		t.Error("AsNumber() on a Bool should fail")
	}
	if _, ok := v.AsString(); ok {
		t.Error("AsString() on a Bool should fail")
	}
	if b, ok := v.AsBool(); !ok || !b {
		t.Errorf("AsBool() = (%v, %v), want (true, true)", b, ok)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		wantSame bool
	}{
		{"empty equal", Empty, Empty, true},
		{"same number", BoxNumber(quantity.FromI64(1)), BoxNumber(quantity.FromI64(1)), true},
		{"different number", BoxNumber(quantity.FromI64(1)), BoxNumber(quantity.FromI64(2)), false},
		{"same string", BoxString("a"), BoxString("a"), true},
		{"different kind", BoxString("1"), BoxNumber(quantity.FromI64(1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.wantSame {
				t.Errorf("Equal() = %v, want %v", got, tt.wantSame)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := BoxBool(true).String(); got != "true" {
		t.Errorf("String() = %q, want %q", got, "true")
	}
	if got := BoxString("hello").String(); got != "hello" {
		t.Errorf("String() = %q, want %q", got, "hello")
	}
	if got := Empty.String(); got != "Empty" {
		t.Errorf("String() = %q, want %q", got, "Empty")
	}
}
