// Package demotable supplies the rtasql command's sample table: an
// in-memory, array-backed row store the demo server registers so a
// freshly built binary has something to query against without any
// external host application. Adapted from the mock in-memory store
// pattern: a mutex-guarded slice standing in for a host's own record
// array, now bound to registry.TableDef instead of a bespoke map API.
package demotable

import (
	"sync"

	"rtasql/coltype"
	"rtasql/registry"
	"rtasql/rowaccess"
)

// Widget is one row of the demo "widgets" table.
type Widget struct {
	ID    int32
	Name  string
	Price float64
	Notes string
}

// Store is a mutex-guarded, array-backed collection of widgets, standing
// in for a host application's own record array.
type Store struct {
	mu      sync.Mutex
	rows    []*Widget
	nextOID int64
}

// NewStore creates an empty Store.
func NewStore() *Store { return &Store{nextOID: 1} }

// Seed populates the store with n zeroed widgets.
func (s *Store) Seed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.rows = append(s.rows, &Widget{ID: int32(i)})
	}
}

func (s *Store) at(i int) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.rows) {
		return nil, false
	}
	return s.rows[i], true
}

func (s *Store) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Store) newRow() any { return &Widget{} }

func (s *Store) insert(_, _ string, row any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid := s.nextOID
	s.nextOID++
	row.(*Widget).ID = int32(oid)
	s.rows = append(s.rows, row.(*Widget))
	return oid, nil
}

func (s *Store) delete(_, _ string, row any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := row.(*Widget)
	for i, r := range s.rows {
		if r == target {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// TableDef builds the registry.TableDef for this store's "widgets"
// table, with field-bound accessors for every column.
func (s *Store) TableDef() *registry.TableDef {
	idGet, idSet := rowaccess.FieldAccessor("ID", coltype.KindInt32)
	nameGet, nameSet := rowaccess.FieldAccessor("Name", coltype.KindString)
	priceGet, priceSet := rowaccess.FieldAccessor("Price", coltype.KindFloat64)
	notesGet, notesSet := rowaccess.FieldAccessor("Notes", coltype.KindString)

	return &registry.TableDef{
		Name:     "widgets",
		RowSize:  32,
		At:       s.at,
		RowCount: s.rowCount,
		NewRow:   s.newRow,
		InsertCB: s.insert,
		DeleteCB: s.delete,
		Help:     "sample in-memory table bundled with the rtasql demo server",
		Columns: []*coltype.ColumnDef{
			{Table: "widgets", Name: "id", Kind: coltype.KindInt32, Get: idGet, Set: idSet, Flags: coltype.ReadOnly},
			{Table: "widgets", Name: "name", Kind: coltype.KindString, Capacity: 64, Get: nameGet, Set: nameSet},
			{Table: "widgets", Name: "price", Kind: coltype.KindFloat64, Get: priceGet, Set: priceSet},
			{Table: "widgets", Name: "notes", Kind: coltype.KindString, Capacity: 128, Get: notesGet, Set: notesSet, Flags: coltype.DiskSave},
		},
	}
}
