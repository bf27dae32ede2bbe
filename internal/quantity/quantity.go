// Package quantity implements the packed 64-bit tagged decimal number:
//
//	|T|DDDDDDD|RRRRRRR|SMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMMM|
//	T: type-extension flag (always 1 for numbers)
//	D: domain [0, 127]
//	R: range [-64, 63]
//	S: mantissa sign
//	M: mantissa, 49 bits total including S, two's complement
//
// value represented = mantissa * 10^range. Ported from the bit layout and
// arithmetic of original_source/src/quantities.rs (mech_core), credited
// there to Josh Cole (Eve v0.4) via Corey Montella's extension.
package quantity

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/weftdb/weft/internal/errorsx"
)

// Quantity is a tagged, packed 64-bit decimal number.
type Quantity uint64

const (
	extensionMask          uint64 = 1 << 63
	mantissaMask           uint64 = (uint64(1) << 49) - 1
	metaMask               uint64 = ((uint64(1) << 15) - 1) << 49
	overflowMask           uint64 = ((uint64(1) << 16) - 1) << 48
	rangeMask              uint64 = ((uint64(1) << 7) - 1) << 49
	shiftedRangeDomainMask uint64 = (uint64(1) << 7) - 1
	shiftedFill            uint64 = ((uint64(1) << 57) - 1) << 7
	signMask               uint64 = 1 << 48
)

var pow10Table = [20]uint64{
	1, 10, 100, 1000, 10000,
	100000, 1000000, 10000000, 100000000, 1000000000,
	10000000000, 100000000000, 1000000000000, 10000000000000, 100000000000000,
	1000000000000000, 10000000000000000, 100000000000000000, 1000000000000000000,
	10000000000000000000,
}

func pow10(n uint64) uint64 {
	if n >= uint64(len(pow10Table)) {
		n = uint64(len(pow10Table) - 1)
	}
	return pow10Table[n]
}

func shiftedRange(r uint64) uint64 {
	return r << 49
}

// overflowHandler finds the smallest power of 10 that brings me back
// within the 48-bit mantissa range, returning the scaled value and the
// number of decimal places it was shifted by.
func overflowHandler(me uint64) (uint64, uint64) {
	hi := 64 - uint64(bits.LeadingZeros64(me)) - 48
	r := uint64(math.Ceil(math.Log10(math.Pow(2, float64(hi)))))
	result := me / pow10(r)
	return result, r
}

// decreaseRange multiplies mantissa by 10^rangeDelta, capped at however
// many powers of 10 fit before the value would overflow 64 bits.
//
// This reports rangeDelta as achieved even when it clamps the shift, so
// the caller always takes the "fully reconciled" branch; that mirrors
// the original's behavior exactly, truncation toward zero and all.
func decreaseRange(mantissa int64, rangeDelta uint64) (int64, uint64) {
	magnitude := mantissa
	if magnitude < 0 {
		magnitude = -magnitude
	}
	remainingSpace := uint64(bits.LeadingZeros64(uint64(magnitude)))
	// mirrors the wrapping shift of the ported routine: a 64-wide shift
	// count (an all-zero mantissa) wraps to 0 rather than zeroing the value.
	thing := uint64(1) << (remainingSpace & 63)
	remaining10 := uint64(math.Floor(math.Log10(float64(thing))))
	if rangeDelta <= remaining10 {
		return mantissa * int64(pow10(rangeDelta)), rangeDelta
	}
	return mantissa * int64(pow10(remaining10)), rangeDelta
}

func increaseRange(mantissa int64, rangeDelta uint64) (int64, bool) {
	r := int64(pow10(rangeDelta))
	return mantissa / r, mantissa%r != 0
}

// FromU32 boxes an unsigned 32-bit integer as a Quantity with range 0.
func FromU32(v uint32) Quantity {
	return Quantity(uint64(v) | extensionMask)
}

// FromI32 boxes a signed 32-bit integer as a Quantity with range 0.
func FromI32(v int32) Quantity {
	if v < 0 {
		return Quantity(uint64(int64(v))&mantissaMask | extensionMask)
	}
	return Quantity(uint64(v) | extensionMask)
}

// FromU64 boxes an unsigned 64-bit integer, renormalizing into range if it
// doesn't fit the 49-bit mantissa field.
func FromU64(v uint64) Quantity {
	if v&metaMask != 0 {
		mantissa, r := overflowHandler(v)
		return Quantity(mantissa&mantissaMask | shiftedRange(r) | extensionMask)
	}
	return Quantity(v&mantissaMask | extensionMask)
}

// FromI64 boxes a signed 64-bit integer, renormalizing into range if it
// doesn't fit the 49-bit mantissa field.
func FromI64(v int64) Quantity {
	me := uint64(v)
	if v < 0 {
		if me&metaMask != metaMask {
			mantissa, r := overflowHandler(uint64(-v))
			return Quantity((^(mantissa-1))&mantissaMask | shiftedRange(r) | extensionMask)
		}
		return Quantity(me&mantissaMask | extensionMask)
	}
	if me&overflowMask != 0 {
		mantissa, r := overflowHandler(me)
		return Quantity(mantissa&mantissaMask | shiftedRange(r) | extensionMask)
	}
	return Quantity(me&mantissaMask | extensionMask)
}

// decodeFloat64 splits v into (mantissa, exponent, sign) such that
// v == sign * mantissa * 2^exponent, matching Rust num::Float::integer_decode.
func decodeFloat64(v float64) (mantissa uint64, exponent int64, sign int64) {
	b := math.Float64bits(v)
	sign = 1
	if b>>63 != 0 {
		sign = -1
	}
	exp := int64((b >> 52) & 0x7ff)
	if exp == 0 {
		mantissa = (b & 0xfffffffffffff) << 1
	} else {
		mantissa = (b & 0xfffffffffffff) | 0x10000000000000
	}
	exponent = exp - 1075
	return mantissa, exponent, sign
}

// FromFloat64 boxes a float64 as a base-10 Quantity: decode the IEEE
// mantissa/exponent/sign, convert the binary exponent to a decimal range,
// and fold the fractional decimal digits back into the mantissa. Result
// has domain 0.
func FromFloat64(v float64) Quantity {
	mantissa, exponent, sign := decodeFloat64(v)
	expLog := math.Log10(math.Pow(2, float64(exponent)))
	realExponent := int64(math.Floor(expLog)) + 1
	frac := expLog - math.Trunc(expLog)
	realMantissa := int64(float64(sign) * (float64(mantissa) * math.Pow(10, frac)))
	result := FromI64(realMantissa)
	result.setRange(result.Range() + realExponent)
	return result
}

// Make builds a Quantity from a signed mantissa, a range offset applied on
// top of any renormalization FromI64 performs, and a domain tag.
func Make(mantissa int64, rangeDelta int64, domain uint8) Quantity {
	value := FromI64(mantissa)
	curRange := value.Range() + rangeDelta
	raw := uint64(value)&^rangeMask | ((uint64(curRange) << 49) & rangeMask) | (uint64(domain) << 56)
	return Quantity(raw)
}

// IsNumber reports whether the type-extension flag is set.
func (q Quantity) IsNumber() bool {
	return uint64(q)&extensionMask == extensionMask
}

// Domain returns the 7-bit unsigned domain tag.
func (q Quantity) Domain() uint8 {
	return uint8((uint64(q) >> 56) & shiftedRangeDomainMask)
}

// Range returns the signed base-10 exponent.
func (q Quantity) Range() int64 {
	r := (uint64(q) >> 49) & shiftedRangeDomainMask
	if r&(1<<6) == 0 {
		return int64(r)
	}
	return int64(r | shiftedFill)
}

func (q *Quantity) setRange(r int64) {
	fill := (uint64(r) << 49) & rangeMask
	*q = Quantity(uint64(*q)&^rangeMask | fill)
}

// SetRange overwrites the range field in place.
func (q *Quantity) SetRange(r int64) {
	q.setRange(r)
}

// Mantissa returns the signed 49-bit (including sign bit) mantissa.
func (q Quantity) Mantissa() int64 {
	if uint64(q)&signMask == signMask {
		a := uint64(q) & mantissaMask
		return int64(a | metaMask)
	}
	return int64(uint64(q) & mantissaMask)
}

// IsNegative reports the mantissa's sign bit.
func (q Quantity) IsNegative() bool {
	return uint64(q)&signMask == signMask
}

// Negate two's-complement negates the mantissa, preserving range and domain.
func (q Quantity) Negate() Quantity {
	value := uint64(-q.Mantissa()) & mantissaMask
	return Quantity(uint64(q)&metaMask | value)
}

// String renders "<mantissa>r<range>", the original's to_string format.
func (q Quantity) String() string {
	return fmt.Sprintf("%dr%d", q.Mantissa(), q.Range())
}

// ToFloat64 computes mantissa * 10^range, for display only.
func (q Quantity) ToFloat64() float64 {
	return float64(q.Mantissa()) * math.Pow(10, float64(q.Range()))
}

// Add sums two quantities, renormalizing the result to fit the mantissa
// field. When ranges differ it reconciles by scaling the higher-range
// operand down and the lower-range operand up; never fails, because
// decreaseRange always reports its requested delta as achieved. The result
// carries q's domain; other's domain is not compared.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	myRange := q.Range()
	otherRange := other.Range()
	if myRange == otherRange {
		added := q.Mantissa() + other.Mantissa()
		result := FromI64(added)
		result.setRange(result.Range() + myRange)
		return withDomain(result, q.Domain()), nil
	}

	myMant := q.Mantissa()
	otherMant := other.Mantissa()
	var aRange, bRange, aMant, bMant int64
	if myRange > otherRange {
		aRange, bRange, aMant, bMant = myRange, otherRange, myMant, otherMant
	} else {
		aRange, bRange, aMant, bMant = otherRange, myRange, otherMant, myMant
	}
	rangeDelta := uint64(aRange - bRange)
	neue, actualDelta := decreaseRange(aMant, rangeDelta)
	if actualDelta == rangeDelta {
		added := neue + bMant
		result := FromI64(added)
		result.setRange(result.Range() + bRange)
		return withDomain(result, q.Domain()), nil
	}
	bNeue, _ := increaseRange(bMant, actualDelta)
	result := FromI64(neue + bNeue)
	result.setRange(aRange - int64(actualDelta))
	return withDomain(result, q.Domain()), nil
}

// withDomain returns q with its domain field replaced by d.
func withDomain(q Quantity, d uint8) Quantity {
	return Quantity(uint64(q)&^(shiftedRangeDomainMask<<56) | (uint64(d) << 56))
}

// Sub is Add(negate(other)).
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	return q.Add(other.Negate())
}

// Multiply does a checked multiply of the mantissas, reporting Overflow
// rather than panicking, and sums ranges and domains.
func (q Quantity) Multiply(other Quantity) (Quantity, error) {
	product, ok := checkedMulInt64(q.Mantissa(), other.Mantissa())
	if !ok {
		return 0, errorsx.New(errorsx.Overflow, "mantissa multiplication overflow: %d * %d", q.Mantissa(), other.Mantissa())
	}
	result := FromI64(product)
	result.setRange(result.Range() + q.Range() + other.Range())
	domain := (uint16(q.Domain()) + uint16(other.Domain())) & uint16(shiftedRangeDomainMask)
	raw := uint64(result)&^(shiftedRangeDomainMask<<56) | (uint64(domain) << 56)
	return Quantity(raw), nil
}

// Divide converts both operands to float64, divides, and converts back;
// lossy by construction, matching original_source's float-based Divide.
func (q Quantity) Divide(other Quantity) (Quantity, error) {
	result := FromFloat64(q.ToFloat64() / other.ToFloat64())
	domain := (uint16(q.Domain()) + uint16(other.Domain())) & uint16(shiftedRangeDomainMask)
	raw := uint64(result)&^(shiftedRangeDomainMask<<56) | (uint64(domain) << 56)
	return Quantity(raw), nil
}

func checkedMulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	result := a * b
	if result/b != a {
		return 0, false
	}
	return result, true
}

// normalizeToCommonRange rebases a and b onto the same range using the
// same reconciliation Add uses, returning their mantissas for comparison.
func normalizeToCommonRange(a, b Quantity) (am, bm int64) {
	ra, rb := a.Range(), b.Range()
	if ra == rb {
		return a.Mantissa(), b.Mantissa()
	}
	aMant, bMant := a.Mantissa(), b.Mantissa()
	hiIsA := ra > rb
	var aRange, bRange, aM, bM int64
	if hiIsA {
		aRange, bRange, aM, bM = ra, rb, aMant, bMant
	} else {
		aRange, bRange, aM, bM = rb, ra, bMant, aMant
	}
	delta := uint64(aRange - bRange)
	neue, actual := decreaseRange(aM, delta)
	if actual == delta {
		if hiIsA {
			return neue, bM
		}
		return bM, neue
	}
	bNeue, _ := increaseRange(bM, actual)
	if hiIsA {
		return neue, bNeue
	}
	return bNeue, neue
}

// Compare returns -1, 0, or 1 as q is less than, equal to, or greater than
// other, after normalizing both to a common range.
func (q Quantity) Compare(other Quantity) int {
	am, bm := normalizeToCommonRange(q, other)
	switch {
	case am < bm:
		return -1
	case am > bm:
		return 1
	default:
		return 0
	}
}

// Power computes q^other via a float round-trip. original_source's
// math_power kernel aliased Power to Add (marked "FIXME this isn't
// actually right at all" in operations.rs); this implements the operation
// the Function enum actually names instead of replicating that bug.
func (q Quantity) Power(other Quantity) (Quantity, error) {
	return FromFloat64(math.Pow(q.ToFloat64(), other.ToFloat64())), nil
}

// Round, Floor, Sin, and Cos round-trip through float64, same as Power;
// they are display/analytics conveniences, not exact decimal operations.
func (q Quantity) Round() Quantity { return FromFloat64(math.Round(q.ToFloat64())) }
func (q Quantity) Floor() Quantity { return FromFloat64(math.Floor(q.ToFloat64())) }
func (q Quantity) Sin() Quantity   { return FromFloat64(math.Sin(q.ToFloat64())) }
func (q Quantity) Cos() Quantity   { return FromFloat64(math.Cos(q.ToFloat64())) }

func (q Quantity) Less(other Quantity) bool           { return q.Compare(other) < 0 }
func (q Quantity) Greater(other Quantity) bool        { return q.Compare(other) > 0 }
func (q Quantity) LessEqual(other Quantity) bool      { return q.Compare(other) <= 0 }
func (q Quantity) GreaterEqual(other Quantity) bool   { return q.Compare(other) >= 0 }
func (q Quantity) Equal(other Quantity) bool          { return q.Compare(other) == 0 }
func (q Quantity) NotEqual(other Quantity) bool       { return q.Compare(other) != 0 }
