package registry

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"rtasql/coltype"
)

// MaxTables and MaxColumns are the registry's hard ceilings.
const (
	MaxTables  = 500
	MaxColumns = 2500
)

// Loader is implemented by the savefile engine; the registry depends on
// it only through this interface so registry has no import cycle with
// savefile.
type Loader interface {
	Load(t *TableDef, configDir string) error
}

// Registry is the process-wide collection of registered tables and their
// flattened column list. The host creates one, registers tables into it,
// and passes it to the engine; it is never mutated concurrently with SQL
// execution. Hosts that register tables at runtime must make sure no
// statement is in flight while they do.
type Registry struct {
	mu sync.RWMutex

	tables    []*TableDef
	columns   []*coltype.ColumnDef
	configDir string

	loader Loader
	log    *zap.Logger

	initialized bool
}

// New creates an empty Registry. Neither New nor Init installs the four
// self-describing meta-tables; metatables.Install registers them.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log}
}

// SetLoader wires the savefile engine in. Exists to avoid an import cycle
// between registry and savefile; engine.New calls this during setup.
func (r *Registry) SetLoader(l Loader) { r.loader = l }

// Init is idempotent: the first call marks the registry initialized and
// later calls are no-ops. It clears no registered tables or columns and
// installs no tables.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return
	}
	r.initialized = true
}

// SetConfigDir verifies path names an existing directory and stores a
// normalized copy (trailing slash stripped, except for the root) to
// prepend to relative savefile paths.
func (r *Registry) SetConfigDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return newErr(ErrBadConfigDir, "config dir %q: %v", path, err)
	}
	if !fi.IsDir() {
		return newErr(ErrBadConfigDir, "config dir %q is not a directory", path)
	}
	norm := strings.TrimRight(path, "/")
	if norm == "" {
		norm = "/"
	}
	r.mu.Lock()
	r.configDir = norm
	r.mu.Unlock()
	return nil
}

// ConfigDir returns the normalized config directory, or "" if unset.
func (r *Registry) ConfigDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configDir
}

// Tables returns the live slice of registered tables, most-recently-added
// last. Callers must not retain it past the next AddTable call.
func (r *Registry) Tables() []*TableDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables
}

// Columns returns the flattened column list across all tables, in
// registration order.
func (r *Registry) Columns() []*coltype.ColumnDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.columns
}

// TableIndex returns t's zero-based registration position, or -1 if t is
// not registered. Stable for the process lifetime since tables are never
// removed; feeds the synthesized OIDs in row descriptions.
func (r *Registry) TableIndex(t *TableDef) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, reg := range r.tables {
		if reg == t {
			return i
		}
	}
	return -1
}

// TableByName looks up a registered table by exact name, or returns nil.
func (r *Registry) TableByName(name string) *TableDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// AddTable validates ptbl against the invariants of the data model and,
// on success, registers it. Checks run in the documented order and return
// on the first violation. A load failure for a non-empty savefile does
// not undo the add; it is logged only.
func (r *Registry) AddTable(ptbl *TableDef) error {
	r.mu.Lock()

	if len(r.tables) >= MaxTables {
		r.mu.Unlock()
		return newErr(ErrTooManyTables, "registry already holds %d tables", MaxTables)
	}
	for _, t := range r.tables {
		if t.Name == ptbl.Name {
			r.mu.Unlock()
			return newErr(ErrDuplicateTable, "table %q already registered", ptbl.Name)
		}
	}
	if len(ptbl.Name) > coltype.MaxNameLen {
		r.mu.Unlock()
		return newErr(ErrOversizeName, "table name %q exceeds %d characters", ptbl.Name, coltype.MaxNameLen)
	}
	if coltype.ReservedWords[strings.ToUpper(ptbl.Name)] {
		r.mu.Unlock()
		return newErr(ErrReservedWord, "table name %q is a reserved word", ptbl.Name)
	}
	if len(ptbl.Columns) > MaxColumns {
		r.mu.Unlock()
		return newErr(ErrColumnLimitExceeded, "table %q declares %d columns, more than the %d ceiling", ptbl.Name, len(ptbl.Columns), MaxColumns)
	}

	seen := make(map[string]bool, len(ptbl.Columns))
	for _, c := range ptbl.Columns {
		if seen[c.Name] {
			r.mu.Unlock()
			return newErr(ErrDuplicateColumn, "duplicate column %q in table %q", c.Name, ptbl.Name)
		}
		seen[c.Name] = true

		if len(c.Name) > coltype.MaxNameLen {
			r.mu.Unlock()
			return newErr(ErrOversizeName, "column name %q exceeds %d characters", c.Name, coltype.MaxNameLen)
		}
		if coltype.ReservedWords[strings.ToUpper(c.Name)] {
			r.mu.Unlock()
			return newErr(ErrReservedWord, "column name %q is a reserved word", c.Name)
		}
		if len(c.Help) > coltype.MaxHelpLen {
			r.mu.Unlock()
			return newErr(ErrOversizeHelp, "help text for column %q exceeds %d characters", c.Name, coltype.MaxHelpLen)
		}
		if c.Kind > coltype.MaxKind || c.Kind < 0 {
			r.mu.Unlock()
			return newErr(ErrBadKind, "column %q has invalid kind %d", c.Name, c.Kind)
		}
		if !coltype.ValidFlags(c.Flags) {
			r.mu.Unlock()
			return newErr(ErrBadFlag, "column %q has invalid flags %d", c.Name, c.Flags)
		}
		if c.Table != ptbl.Name {
			r.mu.Unlock()
			return newErr(ErrWrongOwningTable, "column %q declares owning table %q, expected %q", c.Name, c.Table, ptbl.Name)
		}
	}

	if len(r.columns)+len(ptbl.Columns) > MaxColumns {
		r.mu.Unlock()
		return newErr(ErrColumnLimitExceeded, "adding table %q would bring the registry past the %d column ceiling", ptbl.Name, MaxColumns)
	}

	r.tables = append(r.tables, ptbl)
	r.columns = append(r.columns, ptbl.Columns...)

	savefile := ptbl.SaveFile
	loader := r.loader
	r.mu.Unlock()

	if savefile != "" && loader != nil {
		if err := loader.Load(ptbl, r.ConfigDir()); err != nil {
			r.log.Warn("savefile load failed during table registration",
				zap.String("table", ptbl.Name),
				zap.String("savefile", savefile),
				zap.Error(err))
		}
	}
	return nil
}

// MustAddTable registers ptbl and panics on failure. Intended for startup
// code that registers a fixed, known-good schema.
func (r *Registry) MustAddTable(ptbl *TableDef) {
	if err := r.AddTable(ptbl); err != nil {
		panic(err)
	}
}
