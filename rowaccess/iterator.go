package rowaccess

// Iterator produces successive row handles for a table whose rows are not
// (or need not be treated as) a linear array. Calling it with a nil prev
// and index 0 obtains the first row; thereafter callers pass the
// previously returned handle and the next index. ok is false at
// end-of-sequence.
type Iterator func(prev any, cookie any, index int) (row any, ok bool)

// SliceSource adapts a Go slice, accessed by index, into an Iterator. It
// is the common case for array-backed tables: the host supplies only a
// function from row index to row handle (typically "&slice[i]"), whose
// ok=false marks the end, and never has to write pointer arithmetic.
func SliceSource(at func(i int) (any, bool)) Iterator {
	return func(_ any, _ any, index int) (any, bool) {
		return at(index)
	}
}

// Scan calls visit once per row of a table, in order, stopping early if
// visit returns false. If iter is non-nil it drives the walk; otherwise
// rowCount rows are produced by calling at(i) for i in [0, rowCount).
// Row count for iterator-backed tables is whatever the iterator itself
// decides to stop at — it is never cached across calls, so growing or
// shrinking linked structures between statements is always reflected.
func Scan(iter Iterator, cookie any, rowCount int, at func(i int) (any, bool), visit func(row any, rowID int) bool) {
	if iter != nil {
		var prev any
		for i := 0; ; i++ {
			row, ok := iter(prev, cookie, i)
			if !ok {
				return
			}
			if !visit(row, i) {
				return
			}
			prev = row
		}
	}
	for i := 0; i < rowCount; i++ {
		row, ok := at(i)
		if !ok {
			return
		}
		if !visit(row, i) {
			return
		}
	}
}
