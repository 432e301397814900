package rowaccess

import (
	"testing"

	"rtasql/coltype"
)

type thing struct {
	Label string
	Count int32
	Note  *string
}

func TestFieldAccessorStringRoundTrip(t *testing.T) {
	get, set := FieldAccessor("Label", coltype.KindString)
	row := &thing{}
	set(row, coltype.NewString("bolt"))
	if got := get(row).Str(); got != "bolt" {
		t.Errorf("got %q, want %q", got, "bolt")
	}
}

func TestFieldAccessorInt32RoundTrip(t *testing.T) {
	get, set := FieldAccessor("Count", coltype.KindInt32)
	row := &thing{}
	set(row, coltype.NewInt32(42))
	if got := get(row).Int(); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestFieldAccessorPStringAllocatesOnFirstWrite(t *testing.T) {
	get, set := FieldAccessor("Note", coltype.KindPString)
	row := &thing{}
	if got := get(row).Str(); got != "" {
		t.Errorf("initial get = %q, want empty", got)
	}
	set(row, coltype.NewString("hi"))
	if row.Note == nil {
		t.Fatal("Note pointer should be allocated after Set")
	}
	if got := get(row).Str(); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestFieldAccessorPanicsOnNonPointerRow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a non-pointer row handle")
		}
	}()
	get, _ := FieldAccessor("Label", coltype.KindString)
	get(thing{})
}

func TestScanArrayBacked(t *testing.T) {
	rows := []int{10, 20, 30}
	at := func(i int) (any, bool) {
		if i < 0 || i >= len(rows) {
			return nil, false
		}
		return rows[i], true
	}
	var seen []int
	Scan(nil, nil, len(rows), at, func(row any, rowID int) bool {
		seen = append(seen, row.(int))
		return true
	})
	if len(seen) != 3 || seen[1] != 20 {
		t.Errorf("seen = %v", seen)
	}
}

func TestScanIteratorBackedIgnoresRowCount(t *testing.T) {
	linked := []int{1, 2, 3, 4}
	iter := func(prev any, cookie any, index int) (any, bool) {
		if index >= len(linked) {
			return nil, false
		}
		return linked[index], true
	}
	var seen []int
	// rowCount passed as 1 must be ignored entirely since iter is non-nil.
	Scan(iter, nil, 1, nil, func(row any, rowID int) bool {
		seen = append(seen, row.(int))
		return true
	})
	if len(seen) != 4 {
		t.Errorf("seen = %v, want 4 rows (rowCount must be ignored when iter is set)", seen)
	}
}

func TestSliceSourceAdapts(t *testing.T) {
	vals := []string{"x", "y"}
	iter := SliceSource(func(i int) (any, bool) {
		if i >= len(vals) {
			return nil, false
		}
		return vals[i], true
	})
	row, ok := iter(nil, nil, 1)
	if !ok || row.(string) != "y" {
		t.Errorf("iter(_, _, 1) = (%v, %v), want (y, true)", row, ok)
	}
}

func TestGetInvokesReadCallback(t *testing.T) {
	called := false
	col := &coltype.ColumnDef{
		Table: "t", Name: "n", Kind: coltype.KindString,
		Get: func(row any) coltype.Value { return coltype.NewString("v") },
		ReadCB: func(table, column, sql string, row any, rowID int, old any) error {
			called = true
			return nil
		},
	}
	v, err := Get(col, "SELECT * FROM t", "row", 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !called {
		t.Error("ReadCB was not invoked")
	}
	if v.Str() != "v" {
		t.Errorf("got %q, want %q", v.Str(), "v")
	}
}

func TestGetPropagatesReadCallbackError(t *testing.T) {
	col := &coltype.ColumnDef{
		Table: "t", Name: "n", Kind: coltype.KindString,
		Get: func(row any) coltype.Value { return coltype.NewString("v") },
		ReadCB: func(table, column, sql string, row any, rowID int, old any) error {
			return errBoom
		},
	}
	if _, err := Get(col, "", "row", 0); err != errBoom {
		t.Errorf("err = %v, want errBoom", err)
	}
}

var errBoom = errBoomType{}

type errBoomType struct{}

func (errBoomType) Error() string { return "boom" }
