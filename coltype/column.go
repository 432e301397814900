package coltype

// Callback is a column write or read hook. row is the host's row handle
// (opaque to the engine), rowID is the zero-indexed position of the row in
// the current scan, and old is the pre-UPDATE snapshot (nil outside
// UPDATE). A non-nil error aborts the statement; see engine.Exec for the
// exact rollback discipline.
type Callback func(table, column, sql string, row any, rowID int, old any) error

// Getter reads the current value of a column cell out of a row handle.
type Getter func(row any) Value

// Setter writes a new value into a column cell of a row handle.
type Setter func(row any, v Value)

// ColumnDef is the immutable descriptor for one column of a table. It is
// built by the host and handed to registry.AddTable by pointer; the
// registry keeps the pointer, not a copy.
type ColumnDef struct {
	Table    string // owning table's name; must equal the TableDef.Name
	Name     string
	Kind     Kind
	Capacity int // bytes; only meaningful for string kinds (includes NUL)
	Flags    Flag
	Help     string

	Get Getter
	Set Setter

	ReadCB  Callback
	WriteCB Callback
}

// ZeroValue returns the zero value appropriate for the column's kind. The
// executor uses it to force indirect-pointer columns to allocate their
// backing storage right after a row is created for INSERT, so a fresh
// row never exposes a nil pointer through an indirect slot.
func (c *ColumnDef) ZeroValue() Value {
	switch c.Kind {
	case KindString, KindPString:
		return NewString("")
	case KindInt16:
		return NewInt16(0)
	case KindUint8:
		return NewUint8(0)
	case KindInt32, KindPInt32:
		return NewInt32(0)
	case KindInt64, KindPInt64:
		return NewInt64(0)
	case KindFloat32:
		return NewFloat32(0)
	case KindFloat64, KindPFloat64:
		return NewFloat64(0)
	case KindPointer:
		return NewPointer(nil)
	default:
		return Value{Kind: c.Kind}
	}
}

// MaxNameLen bounds table and column names. Both share the one ceiling.
const MaxNameLen = 100

// MaxHelpLen bounds a column or table's help text.
const MaxHelpLen = 1000

// ReservedWords lists the keywords registry validation rejects as table
// and column names. Matching is case-insensitive. The parser also refuses
// AND as an identifier, which this list does not include.
var ReservedWords = map[string]bool{
	"SELECT": true, "UPDATE": true, "DELETE": true, "INSERT": true,
	"VALUES": true, "FROM": true, "INTO": true, "WHERE": true,
	"LIMIT": true, "OFFSET": true, "SET": true,
}
