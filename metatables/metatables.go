// Package metatables exposes the engine's own bookkeeping — registered
// tables, registered columns, logging configuration, and request
// counters — as ordinary queryable tables, installed into the same
// registry user tables live in.
package metatables

import (
	"rtasql/coltype"
	"rtasql/registry"
)

// tableOIDBase and columnOIDBase give the rta_tables/rta_columns meta
// rows stable, deterministic OIDs derived from registration order.
const (
	tableOIDBase  = 10000
	columnOIDBase = 20000
)

// StatSnapshot is a point-in-time read of the engine's monotonic
// counters, used to populate the `rta_stat` meta-table without metatables
// importing package engine.
type StatSnapshot struct {
	SysErrors   int64
	IntErrors   int64
	SQLErrors   int64
	Connections int64
	Selects     int64
	Updates     int64
	Inserts     int64
	Deletes     int64
}

// StatsSource is implemented by engine.Stats.
type StatsSource interface {
	Snapshot() StatSnapshot
}

// Install registers the four self-describing tables (rta_tables,
// rta_columns, rta_dbg, rta_stat) into reg. Call it once at startup, after the host has
// finished registering its own tables — the tables/columns views read
// reg live on every scan, so later-registered user tables still appear.
func Install(reg *registry.Registry, stats StatsSource, sink *LogSink) error {
	if err := reg.AddTable(tablesTable(reg)); err != nil {
		return err
	}
	if err := reg.AddTable(columnsTable(reg)); err != nil {
		return err
	}
	if err := reg.AddTable(dbgTable(sink)); err != nil {
		return err
	}
	if err := reg.AddTable(statTable(stats)); err != nil {
		return err
	}
	return nil
}

// tablesTable builds the `rta_tables` meta-table: one row per registered
// table (including the meta-tables themselves, once installed),
// mirroring the descriptor fields a host would otherwise only see by
// reading registry.TableDef directly.
func tablesTable(reg *registry.Registry) *registry.TableDef {
	at := func(i int) (any, bool) {
		ts := reg.Tables()
		if i < 0 || i >= len(ts) {
			return nil, false
		}
		return ts[i], true
	}
	rowCount := func() int { return len(reg.Tables()) }

	col := func(name string, kind coltype.Kind, get coltype.Getter) *coltype.ColumnDef {
		return &coltype.ColumnDef{Table: "rta_tables", Name: name, Kind: kind, Get: get, Set: noopSet, Flags: coltype.ReadOnly}
	}

	return &registry.TableDef{
		Name:     "rta_tables",
		At:       at,
		RowCount: rowCount,
		Help:     "one row per registered table",
		Columns: []*coltype.ColumnDef{
			col("oid", coltype.KindInt32, func(row any) coltype.Value {
				return coltype.NewInt32(int32(tableOIDBase + indexOfTable(reg, row)))
			}),
			col("name", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*registry.TableDef).Name)
			}),
			col("row_size", coltype.KindInt32, func(row any) coltype.Value {
				return coltype.NewInt32(int32(row.(*registry.TableDef).RowSize))
			}),
			col("row_count", coltype.KindInt32, func(row any) coltype.Value {
				t := row.(*registry.TableDef)
				n := 0
				if t.RowCount != nil {
					n = t.RowCount()
				}
				return coltype.NewInt32(int32(n))
			}),
			col("column_count", coltype.KindInt32, func(row any) coltype.Value {
				return coltype.NewInt32(int32(len(row.(*registry.TableDef).Columns)))
			}),
			col("has_insert", coltype.KindUint8, func(row any) coltype.Value {
				return coltype.NewUint8(boolToUint8(row.(*registry.TableDef).InsertCB != nil))
			}),
			col("has_delete", coltype.KindUint8, func(row any) coltype.Value {
				return coltype.NewUint8(boolToUint8(row.(*registry.TableDef).DeleteCB != nil))
			}),
			col("savefile", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*registry.TableDef).SaveFile)
			}),
			col("help", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*registry.TableDef).Help)
			}),
		},
	}
}

func indexOfTable(reg *registry.Registry, row any) int {
	t := row.(*registry.TableDef)
	for i, cand := range reg.Tables() {
		if cand == t {
			return i
		}
	}
	return -1
}

// columnsTable builds the `rta_columns` meta-table: one row per registered
// column across every table, in registration order.
func columnsTable(reg *registry.Registry) *registry.TableDef {
	at := func(i int) (any, bool) {
		cs := reg.Columns()
		if i < 0 || i >= len(cs) {
			return nil, false
		}
		return cs[i], true
	}
	rowCount := func() int { return len(reg.Columns()) }

	col := func(name string, kind coltype.Kind, get coltype.Getter) *coltype.ColumnDef {
		return &coltype.ColumnDef{Table: "rta_columns", Name: name, Kind: kind, Get: get, Set: noopSet, Flags: coltype.ReadOnly}
	}

	return &registry.TableDef{
		Name:     "rta_columns",
		At:       at,
		RowCount: rowCount,
		Help:     "one row per registered column",
		Columns: []*coltype.ColumnDef{
			col("oid", coltype.KindInt32, func(row any) coltype.Value {
				return coltype.NewInt32(int32(columnOIDBase + indexOfColumn(reg, row)))
			}),
			col("table_name", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*coltype.ColumnDef).Table)
			}),
			col("name", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*coltype.ColumnDef).Name)
			}),
			col("kind", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*coltype.ColumnDef).Kind.String())
			}),
			col("capacity", coltype.KindInt32, func(row any) coltype.Value {
				return coltype.NewInt32(int32(row.(*coltype.ColumnDef).Capacity))
			}),
			col("disksave", coltype.KindUint8, func(row any) coltype.Value {
				return coltype.NewUint8(boolToUint8(row.(*coltype.ColumnDef).Flags&coltype.DiskSave != 0))
			}),
			col("readonly", coltype.KindUint8, func(row any) coltype.Value {
				return coltype.NewUint8(boolToUint8(row.(*coltype.ColumnDef).Flags&coltype.ReadOnly != 0))
			}),
			col("help", coltype.KindString, func(row any) coltype.Value {
				return coltype.NewString(row.(*coltype.ColumnDef).Help)
			}),
		},
	}
}

func indexOfColumn(reg *registry.Registry, row any) int {
	c := row.(*coltype.ColumnDef)
	for i, cand := range reg.Columns() {
		if cand == c {
			return i
		}
	}
	return -1
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func noopSet(row any, v coltype.Value) {}
