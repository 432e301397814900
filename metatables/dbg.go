package metatables

import (
	"rtasql/coltype"
	"rtasql/registry"
)

// dbgTable builds the single-row `rta_dbg` meta-table. Its row handle is
// sink itself; every column reads or writes through sink's locked
// Config/SetConfig so a write takes effect atomically with respect to
// the logger rebuild it may trigger.
func dbgTable(sink *LogSink) *registry.TableDef {
	boolCol := func(name string, get func(DbgConfig) bool, set func(*DbgConfig, bool)) *coltype.ColumnDef {
		return &coltype.ColumnDef{
			Table: "rta_dbg", Name: name, Kind: coltype.KindUint8,
			Get: func(row any) coltype.Value {
				return coltype.NewUint8(boolToUint8(get(row.(*LogSink).Config())))
			},
			Set: func(row any, v coltype.Value) {
				s := row.(*LogSink)
				cfg := s.Config()
				set(&cfg, v.Int() != 0)
				s.SetConfig(cfg)
			},
		}
	}
	intCol := func(name string, get func(DbgConfig) int32, set func(*DbgConfig, int32)) *coltype.ColumnDef {
		return &coltype.ColumnDef{
			Table: "rta_dbg", Name: name, Kind: coltype.KindInt32,
			Get: func(row any) coltype.Value {
				return coltype.NewInt32(get(row.(*LogSink).Config()))
			},
			Set: func(row any, v coltype.Value) {
				s := row.(*LogSink)
				cfg := s.Config()
				set(&cfg, int32(v.Int()))
				s.SetConfig(cfg)
			},
		}
	}

	return &registry.TableDef{
		Name:     "rta_dbg",
		At:       func(i int) (any, bool) { return sink, i == 0 },
		RowCount: func() int { return 1 },
		Help:     "process-wide logging configuration; a single row",
		Columns: []*coltype.ColumnDef{
			boolCol("log_sys_errors",
				func(c DbgConfig) bool { return c.LogSysErrors },
				func(c *DbgConfig, b bool) { c.LogSysErrors = b }),
			boolCol("log_int_errors",
				func(c DbgConfig) bool { return c.LogIntErrors },
				func(c *DbgConfig, b bool) { c.LogIntErrors = b }),
			boolCol("log_sql_errors",
				func(c DbgConfig) bool { return c.LogSQLErrors },
				func(c *DbgConfig, b bool) { c.LogSQLErrors = b }),
			boolCol("log_sql_trace",
				func(c DbgConfig) bool { return c.LogSQLTrace },
				func(c *DbgConfig, b bool) { c.LogSQLTrace = b }),
			intCol("target",
				func(c DbgConfig) int32 { return int32(c.Target) },
				func(c *DbgConfig, v int32) { c.Target = SinkTarget(v) }),
			intCol("syslog_priority",
				func(c DbgConfig) int32 { return c.SyslogPriority },
				func(c *DbgConfig, v int32) { c.SyslogPriority = v }),
			intCol("syslog_facility",
				func(c DbgConfig) int32 { return c.SyslogFacility },
				func(c *DbgConfig, v int32) { c.SyslogFacility = v }),
			{
				Table: "rta_dbg", Name: "ident", Kind: coltype.KindString,
				Get: func(row any) coltype.Value { return coltype.NewString(row.(*LogSink).Config().Ident) },
				Set: func(row any, v coltype.Value) {
					s := row.(*LogSink)
					cfg := s.Config()
					cfg.Ident = v.Str()
					s.SetConfig(cfg)
				},
				Capacity: 64,
			},
		},
	}
}
