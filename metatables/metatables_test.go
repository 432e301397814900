package metatables

import (
	"testing"

	"go.uber.org/zap"

	"rtasql/coltype"
	"rtasql/registry"
)

type fakeStats struct{ snap StatSnapshot }

func (f fakeStats) Snapshot() StatSnapshot { return f.snap }

func nopSink() *LogSink {
	return NewLogSink(DbgConfig{Target: SinkNone}, func(DbgConfig) *zap.Logger { return zap.NewNop() })
}

func userTable(name string) *registry.TableDef {
	return &registry.TableDef{
		Name:     name,
		At:       func(i int) (any, bool) { return nil, false },
		RowCount: func() int { return 0 },
		Columns: []*coltype.ColumnDef{
			{Table: name, Name: "x", Kind: coltype.KindInt32,
				Get: func(any) coltype.Value { return coltype.NewInt32(0) },
				Set: func(any, coltype.Value) {}},
		},
	}
}

func TestInstallRegistersAllFourMetaTables(t *testing.T) {
	reg := registry.New(nil)
	if err := reg.AddTable(userTable("widgets")); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	if err := Install(reg, fakeStats{}, nopSink()); err != nil {
		t.Fatalf("Install: %v", err)
	}
	for _, name := range []string{"rta_tables", "rta_columns", "rta_dbg", "rta_stat"} {
		if reg.TableByName(name) == nil {
			t.Errorf("table %q was not registered", name)
		}
	}
}

func TestTablesViewSeesLiveRegistrations(t *testing.T) {
	reg := registry.New(nil)
	if err := reg.AddTable(userTable("widgets")); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	if err := Install(reg, fakeStats{}, nopSink()); err != nil {
		t.Fatalf("Install: %v", err)
	}
	// Register a second user table after Install; the `rta_tables` view
	// reads the registry live, so it must show up without reinstalling.
	if err := reg.AddTable(userTable("gadgets")); err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	tablesView := reg.TableByName("rta_tables")
	n := tablesView.RowCount()
	if n < 5 { // widgets, rta_tables, rta_columns, rta_dbg, rta_stat and gadgets make 6; the five present at Install are required
		t.Errorf("tables view row count = %d, want at least 5", n)
	}
	found := false
	tablesView.Scan(func(row any, rowID int) bool {
		if row.(*registry.TableDef).Name == "gadgets" {
			found = true
		}
		return true
	})
	if !found {
		t.Error("tables view did not include a table registered after Install")
	}
}

func TestStatTableReflectsSnapshot(t *testing.T) {
	reg := registry.New(nil)
	stats := fakeStats{snap: StatSnapshot{Selects: 7, SQLErrors: 2}}
	if err := Install(reg, stats, nopSink()); err != nil {
		t.Fatalf("Install: %v", err)
	}
	statTbl := reg.TableByName("rta_stat")
	row, ok := statTbl.At(0)
	if !ok {
		t.Fatal("stat table has no row")
	}
	selectsCol := statTbl.Column("selects")
	if got := selectsCol.Get(row).Int(); got != 7 {
		t.Errorf("selects = %d, want 7", got)
	}
}

func TestDbgTableWriteRebuildsLoggerOnTargetChange(t *testing.T) {
	builds := 0
	sink := NewLogSink(DbgConfig{Target: SinkNone}, func(DbgConfig) *zap.Logger {
		builds++
		return zap.NewNop()
	})
	reg := registry.New(nil)
	if err := Install(reg, fakeStats{}, sink); err != nil {
		t.Fatalf("Install: %v", err)
	}
	dbgTbl := reg.TableByName("rta_dbg")
	row, ok := dbgTbl.At(0)
	if !ok {
		t.Fatal("dbg table has no row")
	}
	targetCol := dbgTbl.Column("target")
	before := builds
	targetCol.Set(row, coltype.NewInt32(int32(SinkStderr)))
	if builds != before+1 {
		t.Errorf("builds = %d, want %d (one rebuild on target change)", builds, before+1)
	}
	if sink.Config().Target != SinkStderr {
		t.Errorf("Config().Target = %v, want SinkStderr", sink.Config().Target)
	}
}

func TestDbgTableWriteBoolFlagDoesNotRebuildLogger(t *testing.T) {
	builds := 0
	sink := NewLogSink(DbgConfig{Target: SinkNone}, func(DbgConfig) *zap.Logger {
		builds++
		return zap.NewNop()
	})
	reg := registry.New(nil)
	if err := Install(reg, fakeStats{}, sink); err != nil {
		t.Fatalf("Install: %v", err)
	}
	dbgTbl := reg.TableByName("rta_dbg")
	row, _ := dbgTbl.At(0)
	logSQLCol := dbgTbl.Column("log_sql_errors")
	before := builds
	logSQLCol.Set(row, coltype.NewUint8(1))
	if builds != before {
		t.Errorf("builds = %d, want %d (a class flag alone must not rebuild the logger)", builds, before)
	}
	if !sink.Config().LogSQLErrors {
		t.Error("LogSQLErrors was not set")
	}
}
