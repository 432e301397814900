package metatables

import (
	"rtasql/coltype"
	"rtasql/registry"
)

// statTable builds the single-row `rta_stat` meta-table: read-only 64-bit
// counters taken from a fresh StatsSource.Snapshot on every access, so
// concurrent reads never see a torn mix of old and new values beyond
// whatever Snapshot itself guarantees.
func statTable(stats StatsSource) *registry.TableDef {
	col := func(name string, get func(StatSnapshot) int64) *coltype.ColumnDef {
		return &coltype.ColumnDef{
			Table: "rta_stat", Name: name, Kind: coltype.KindInt64, Flags: coltype.ReadOnly,
			Get: func(row any) coltype.Value {
				return coltype.NewInt64(get(row.(StatsSource).Snapshot()))
			},
			Set: noopSet,
		}
	}

	return &registry.TableDef{
		Name:     "rta_stat",
		At:       func(i int) (any, bool) { return stats, i == 0 },
		RowCount: func() int { return 1 },
		Help:     "monotonic request counters; a single row, read-only",
		Columns: []*coltype.ColumnDef{
			col("sys_errors", func(s StatSnapshot) int64 { return s.SysErrors }),
			col("int_errors", func(s StatSnapshot) int64 { return s.IntErrors }),
			col("sql_errors", func(s StatSnapshot) int64 { return s.SQLErrors }),
			col("connections", func(s StatSnapshot) int64 { return s.Connections }),
			col("selects", func(s StatSnapshot) int64 { return s.Selects }),
			col("updates", func(s StatSnapshot) int64 { return s.Updates }),
			col("inserts", func(s StatSnapshot) int64 { return s.Inserts }),
			col("deletes", func(s StatSnapshot) int64 { return s.Deletes }),
		},
	}
}
