package registry

import (
	"rtasql/coltype"
	"rtasql/rowaccess"
)

// InsertFunc is invoked once per INSERT, after the engine has allocated a
// zero-valued row and copied in the supplied literals. A negative return
// means the host refused the row; a non-negative return is the row's OID.
type InsertFunc func(table, sql string, row any) (oid int64, err error)

// DeleteFunc is invoked once per row removed by DELETE. It is responsible
// for both unlinking the row from whatever structure owns it and
// releasing it; the engine never touches row storage after calling this.
type DeleteFunc func(table, sql string, row any) error

// TableDef is the immutable descriptor for one registered table. The
// registry keeps the pointer it is given, not a copy, so the host may
// mutate RowCount/At's backing slice freely between statements.
type TableDef struct {
	Name string

	// RowSize is informational only (exposed via the `rta_tables` meta-table)
	// since Go row handles are not addressed by byte offset.
	RowSize int

	// At returns the row handle at index i for an array-backed table, or
	// ok=false past the end. Nil for pure iterator-backed tables.
	At func(i int) (row any, ok bool)
	// RowCount reports the current number of rows for an array-backed
	// table. Nil for pure iterator-backed tables, where row count is
	// whatever the iterator decides to stop at.
	RowCount func() int

	// Iterator walks a linked or otherwise non-array row structure. Nil
	// for array-backed tables.
	Iterator rowaccess.Iterator
	Cookie   any

	// NewRow allocates a new zero-valued row handle for INSERT. Required
	// if InsertCB is set.
	NewRow func() any

	InsertCB InsertFunc
	DeleteCB DeleteFunc

	Columns []*coltype.ColumnDef

	// SaveFile is the path (absolute, or relative to the registry's
	// config dir) of this table's persistence log. Empty means no
	// persistence. Cleared during replay so write callbacks triggered by
	// the replay itself don't cause a recursive save.
	SaveFile string

	Help string
}

// HasDiskSave reports whether any column of the table carries DiskSave.
func (t *TableDef) HasDiskSave() bool {
	for _, c := range t.Columns {
		if c.Flags&coltype.DiskSave != 0 {
			return true
		}
	}
	return false
}

// ColumnIndex returns c's zero-based position within the table's column
// list, or -1 if c does not belong to the table.
func (t *TableDef) ColumnIndex(c *coltype.ColumnDef) int {
	for i, col := range t.Columns {
		if col == c {
			return i
		}
	}
	return -1
}

// Column looks up a column of the table by name, or returns nil.
func (t *TableDef) Column(name string) *coltype.ColumnDef {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Scan walks every row of the table in order, calling visit(row, rowID)
// until it returns false or rows are exhausted.
func (t *TableDef) Scan(visit func(row any, rowID int) bool) {
	rowCount := 0
	if t.RowCount != nil {
		rowCount = t.RowCount()
	}
	rowaccess.Scan(t.Iterator, t.Cookie, rowCount, t.At, visit)
}
