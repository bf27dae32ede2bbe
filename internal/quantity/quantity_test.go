package quantity

import "testing"

// These fixtures are ported directly from original_source/tests/quantities.rs
// (mech_core's Quantity test suite), the ground truth this package's bit
// layout and arithmetic were verified against.

func TestMakeAccessors(t *testing.T) {
	tests := []struct {
		name           string
		mantissa       int64
		rangeDelta     int64
		domain         uint8
		wantMantissa   int64
		wantRange      int64
	}{
		{"positive small", 1, 3, 1, 1, 3},
		{"negative range", 1, -3, 1, 1, -3},
		{"zero", 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Make(tt.mantissa, tt.rangeDelta, tt.domain)
			if got := q.Mantissa(); got != tt.wantMantissa {
				t.Errorf("Mantissa() = %d, want %d", got, tt.wantMantissa)
			}
			if got := q.Range(); got != tt.wantRange {
				t.Errorf("Range() = %d, want %d", got, tt.wantRange)
			}
		})
	}
}

func TestAddBase(t *testing.T) {
	x := Make(1, 3, 1)
	y := Make(1, -3, 1)

	added, err := x.Add(y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.Mantissa() != 1000001 || added.Range() != -3 {
		t.Errorf("x+y = %s, want mantissa=1000001 range=-3", added)
	}

	reverse, err := y.Add(x)
	if err != nil {
		t.Fatalf("Add (reverse): %v", err)
	}
	if reverse.Mantissa() != 1000001 || reverse.Range() != -3 {
		t.Errorf("y+x = %s, want mantissa=1000001 range=-3", reverse)
	}
}

func TestSubBase(t *testing.T) {
	x := Make(1, 3, 1)
	y := Make(1, -3, 1)
	got, err := x.Sub(y)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if got.Mantissa() != 999999 || got.Range() != -3 {
		t.Errorf("x-y = %s, want mantissa=999999 range=-3", got)
	}
}

func TestMultiplyBase(t *testing.T) {
	x := Make(1, 3, 1)
	y := Make(1, -3, 1)
	got, err := x.Multiply(y)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}
	if got.Mantissa() != 1 || got.Range() != 0 {
		t.Errorf("x*y = %s, want mantissa=1 range=0", got)
	}
}

func sameQuantity(t *testing.T, got, want Quantity) {
	t.Helper()
	if got.Mantissa() != want.Mantissa() || got.Range() != want.Range() {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestAddDecimals(t *testing.T) {
	x := Make(1, -1, 0)
	y := Make(2, -1, 0)
	z := Make(3, -1, 0)

	got, err := x.Add(y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sameQuantity(t, got, Make(3, -1, 0))

	yz, err := y.Add(z)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	xyz, err := x.Add(yz)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sameQuantity(t, xyz, Make(6, -1, 0))

	xy, err := x.Add(y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	zxy, err := z.Add(xy)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sameQuantity(t, zxy, Make(6, -1, 0))
}

func TestAddSubtractRoundTrip(t *testing.T) {
	x := Make(1, -1, 0)
	y := Make(2, -1, 0)
	z := Make(3, -1, 0)

	xy, _ := x.Add(y)
	zxy, _ := z.Add(xy)
	minusZ, _ := zxy.Sub(z)
	got, err := minusZ.Sub(y)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	sameQuantity(t, got, Make(1, -1, 0))
}

func TestAddBigLittle(t *testing.T) {
	x := Make(275251200000000, -12, 0)
	y := Make(7864320000000, -12, 0)
	got, err := x.Add(y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sameQuantity(t, got, Make(28311552000000, -11, 0))
}

func TestMultiplySmall(t *testing.T) {
	w := Make(0, 0, 0)
	x := Make(14336512000000, -12, 0)
	y := Make(8, -1, 0)

	q, err := w.Sub(x)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	got, err := q.Multiply(y)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}
	sameQuantity(t, got, Make(-114692096000000, -13, 0))
}

func TestFloatRoundTrip(t *testing.T) {
	for _, v := range []float64{1.2, 1.1, 0.5} {
		got := FromFloat64(v).ToFloat64()
		if got != v {
			t.Errorf("FromFloat64(%v).ToFloat64() = %v, want %v", v, got, v)
		}
	}
}

func TestSubLargeNegSmall(t *testing.T) {
	x := Make(30292178951320, -11, 0)
	y := Make(30, 0, 0)
	got, err := x.Sub(y)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	sameQuantity(t, got, Make(27292178951320, -11, 0))
}

func TestAddingZero(t *testing.T) {
	zero := Make(0, 0, 0)
	offset := Make(49825176195110, -11, 0)

	got, err := offset.Add(zero)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sameQuantity(t, got, offset)

	got, err = zero.Add(offset)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	sameQuantity(t, got, offset)
}

func TestDivideDifferentRanges(t *testing.T) {
	x := Make(282743338860, -9, 0)
	y := Make(180, 0, 0)
	got, err := x.Divide(y)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	sameQuantity(t, got, Make(15707963270000, -13, 0))
}

func TestMultiplyOverflow(t *testing.T) {
	big := Make(1<<48-1, 0, 0)
	_, err := big.Multiply(big)
	if err == nil {
		t.Fatal("expected Overflow error, got nil")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Quantity
		want int
	}{
		{"equal same range", Make(5, 0, 0), Make(5, 0, 0), 0},
		{"less", Make(4, 0, 0), Make(5, 0, 0), -1},
		{"greater", Make(6, 0, 0), Make(5, 0, 0), 1},
		{"cross range equal", Make(5, 1, 0), Make(50, 0, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFromIntegerRoundTrip(t *testing.T) {
	if got := FromI32(-7).Mantissa(); got != -7 {
		t.Errorf("FromI32(-7).Mantissa() = %d, want -7", got)
	}
	if got := FromU32(7).Mantissa(); got != 7 {
		t.Errorf("FromU32(7).Mantissa() = %d, want 7", got)
	}
	if got := FromI64(-12345).Mantissa(); got != -12345 {
		t.Errorf("FromI64(-12345).Mantissa() = %d, want -12345", got)
	}
	if got := FromU64(12345).Mantissa(); got != 12345 {
		t.Errorf("FromU64(12345).Mantissa() = %d, want 12345", got)
	}
}

func TestPowerIsNotAdd(t *testing.T) {
	two := FromI64(2)
	three := FromI64(3)
	got, err := two.Power(three)
	if err != nil {
		t.Fatalf("Power: %v", err)
	}
	if got.ToFloat64() != 8 {
		t.Errorf("2^3 = %v, want 8", got.ToFloat64())
	}
}
