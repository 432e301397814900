package coltype

import "testing"

func TestValueFormat(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"int32", NewInt32(-7), "-7"},
		{"int16", NewInt16(42), "42"},
		{"string", NewString("hello"), "hello"},
		{"float64_fixed_digits", NewFloat64(1.5), "1.5000000000"},
		{"float64_zero", NewFloat64(0), "0.0000000000"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Format(); got != c.want {
				t.Errorf("Format() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestComparePointerUsesHandle(t *testing.T) {
	p := &struct{ x int }{}
	handle := PointerHandleOf(p)

	a := NewPointer(p)
	b := NewInt32(int32(handle)) // as typeCheckLiteral constructs WHERE literals for pointer columns

	if got := Compare(a, b, 0); got != 0 {
		t.Errorf("Compare(a, b) = %d, want 0 for matching handle", got)
	}

	other := NewInt32(int32(handle) + 1)
	if got := Compare(a, other, 0); got == 0 {
		t.Errorf("Compare(a, other) = 0, want nonzero for mismatched handle")
	}
}

func TestCompareFloatNativeType(t *testing.T) {
	// Subtract-and-truncate-to-int would treat 0.4 and 0.1 as equal;
	// native comparison must not.
	a := NewFloat64(0.4)
	b := NewFloat64(0.1)
	if got := Compare(a, b, 0); got <= 0 {
		t.Errorf("Compare(0.4, 0.1) = %d, want > 0", got)
	}
}

func TestCompareStringCapacity(t *testing.T) {
	a := NewString("abcXX")
	b := NewString("abcYY")
	if got := Compare(a, b, 3); got != 0 {
		t.Errorf("Compare with capacity 3 = %d, want 0 (only prefix compared)", got)
	}
	if got := Compare(a, b, 0); got == 0 {
		t.Errorf("Compare with capacity 0 (unbounded) = 0, want nonzero")
	}
}

func TestKindIsIndirect(t *testing.T) {
	for _, k := range []Kind{KindPString, KindPInt32, KindPInt64, KindPFloat64} {
		if !k.IsIndirect() {
			t.Errorf("%v.IsIndirect() = false, want true", k)
		}
	}
	for _, k := range []Kind{KindString, KindInt32, KindInt64, KindFloat64, KindPointer} {
		if k.IsIndirect() {
			t.Errorf("%v.IsIndirect() = true, want false", k)
		}
	}
}

func TestValidFlags(t *testing.T) {
	if !ValidFlags(DiskSave | ReadOnly) {
		t.Error("DiskSave|ReadOnly should be valid")
	}
	if ValidFlags(Flag(1 << 5)) {
		t.Error("an undefined bit should not be valid")
	}
}
