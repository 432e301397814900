// Package coltype defines the scalar kinds, flags, and column/value
// representations shared by the table registry, row accessor, parser, and
// wire framer.
package coltype

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind enumerates the scalar column types the engine recognizes.
type Kind int

const (
	KindString Kind = iota // inline byte-string, declared capacity
	KindPointer
	KindInt32
	KindInt64
	KindPString // indirect: row slot holds a pointer to a heap string
	KindPInt32
	KindPInt64
	KindInt16
	KindUint8
	KindFloat32
	KindFloat64
	KindPFloat64
)

// MaxKind is the highest valid Kind value; used by registry validation.
const MaxKind = KindPFloat64

// IsIndirect reports whether the column's row slot holds a pointer to the
// value rather than the value itself.
func (k Kind) IsIndirect() bool {
	switch k {
	case KindPString, KindPInt32, KindPInt64, KindPFloat64:
		return true
	}
	return false
}

// IsString reports whether the kind stores textual data.
func (k Kind) IsString() bool {
	return k == KindString || k == KindPString
}

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPString:
		return "pstring"
	case KindInt32:
		return "int32"
	case KindInt16:
		return "int16"
	case KindUint8:
		return "uint8"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindPointer:
		return "pointer"
	case KindPInt32:
		return "pint32"
	case KindPInt64:
		return "pint64"
	case KindPFloat64:
		return "pfloat64"
	default:
		return "unknown"
	}
}

// Flag is a bitmask of column attributes.
type Flag int

const (
	// DiskSave marks a column for inclusion in the table's savefile.
	DiskSave Flag = 1 << 0
	// ReadOnly rejects UPDATE attempts to write the column.
	ReadOnly Flag = 1 << 1
)

// validFlags is the union of all defined flag bits; used by registry
// validation to reject garbage flag values.
const validFlags = DiskSave | ReadOnly

// ValidFlags reports whether f is within the defined flag enumeration.
func ValidFlags(f Flag) bool {
	return f&^validFlags == 0
}

// Value is a tagged union holding one column cell's worth of data,
// exactly as read from or about to be written to a row.
type Value struct {
	Kind Kind

	i   int64
	f   float64
	s   string
	ptr any // opaque pointer identity for KindPointer
}

// NewString constructs a string-kind value.
func NewString(s string) Value { return Value{Kind: KindString, s: s} }

// NewInt32 constructs an int32-kind value.
func NewInt32(v int32) Value { return Value{Kind: KindInt32, i: int64(v)} }

// NewInt16 constructs an int16-kind value.
func NewInt16(v int16) Value { return Value{Kind: KindInt16, i: int64(v)} }

// NewUint8 constructs a uint8-kind value.
func NewUint8(v uint8) Value { return Value{Kind: KindUint8, i: int64(v)} }

// NewInt64 constructs an int64-kind value.
func NewInt64(v int64) Value { return Value{Kind: KindInt64, i: v} }

// NewFloat32 constructs a float32-kind value.
func NewFloat32(v float32) Value { return Value{Kind: KindFloat32, f: float64(v)} }

// NewFloat64 constructs a float64-kind value.
func NewFloat64(v float64) Value { return Value{Kind: KindFloat64, f: v} }

// NewPointer constructs a pointer-kind value from an opaque handle.
func NewPointer(p any) Value { return Value{Kind: KindPointer, ptr: p} }

// Int returns the value widened to int64. Valid for integer kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the value as a float64. Valid for float kinds.
func (v Value) Float() float64 { return v.f }

// Str returns the value as a string. Valid for string kinds.
func (v Value) Str() string { return v.s }

// Pointer returns the opaque pointer identity. Valid for KindPointer.
func (v Value) Pointer() any { return v.ptr }

// Format renders the value using the engine's canonical textual
// conventions: integers as decimal, floats/doubles with exactly ten
// fractional digits, and pointers as the decimal form of their 32-bit
// handle.
func (v Value) Format() string {
	switch v.Kind {
	case KindString, KindPString:
		return v.s
	case KindInt32, KindInt16, KindUint8, KindInt64, KindPInt32, KindPInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat32, KindFloat64, KindPFloat64:
		return decimal.NewFromFloat(v.f).StringFixed(10)
	case KindPointer:
		return strconv.FormatInt(int64(int32(PointerHandleOf(v.ptr))), 10)
	default:
		return fmt.Sprintf("%v", v.ptr)
	}
}

// Compare compares two values of the same kind and returns a negative,
// zero, or positive int. Strings use a bounded prefix compare, integers
// a widened subtraction. Floats and doubles compare in their native type;
// truncating the difference to an integer would make any two values less
// than 1.0 apart compare equal.
func Compare(a, b Value, capacity int) int {
	switch a.Kind {
	case KindString, KindPString:
		return compareStrings(a.s, b.s, capacity)
	case KindFloat32, KindFloat64, KindPFloat64:
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		default:
			return 0
		}
	case KindPointer:
		// b is the WHERE literal's parsed form, carried as a plain
		// integer handle rather than an opaque pointer identity.
		ha := int32(PointerHandleOf(a.ptr))
		hb := int32(b.i)
		return int(ha) - int(hb)
	default:
		d := a.i - b.i
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		default:
			return 0
		}
	}
}

// compareStrings implements the bounded prefix compare specified for
// fixed-capacity string columns: at most `capacity` bytes are compared.
func compareStrings(a, b string, capacity int) int {
	if capacity > 0 {
		if len(a) > capacity {
			a = a[:capacity]
		}
		if len(b) > capacity {
			b = b[:capacity]
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
