// Package rowaccess provides uniform, type-safe read/write access to a
// single row's columns, and the iterator abstraction used to walk a
// table's rows whether they live in a slice or a host-owned linked
// structure.
package rowaccess

import (
	"fmt"

	"rtasql/coltype"
)

// Get reads one cell of row using col's getter closure, invoking the
// column's read callback first when present. rowID is the zero-indexed
// position of row within the current scan; sqlText is the verbatim
// statement being executed, passed through to the callback.
func Get(col *coltype.ColumnDef, sqlText string, row any, rowID int) (coltype.Value, error) {
	if col.Get == nil {
		return coltype.Value{}, fmt.Errorf("column %q has no accessor", col.Name)
	}
	if col.ReadCB != nil {
		if err := col.ReadCB(col.Table, col.Name, sqlText, row, rowID, nil); err != nil {
			return coltype.Value{}, err
		}
	}
	return col.Get(row), nil
}

// Set writes v into one cell of row using col's setter closure. It does
// not invoke the column's write callback — callers that need the
// snapshot/rollback discipline described in the executor drive write
// callbacks themselves after all columns of a row have been assigned.
func Set(col *coltype.ColumnDef, row any, v coltype.Value) {
	col.Set(row, v)
}
