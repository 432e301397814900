// Package engine ties the registry, row accessor, SQL parser, and
// savefile engine together behind the host-facing API: register tables,
// run SQL text directly, or feed raw wire bytes from a PostgreSQL client.
package engine

import (
	"bytes"
	"sync/atomic"

	"go.uber.org/zap"

	"rtasql/metatables"
	"rtasql/pgwire"
	"rtasql/registry"
	"rtasql/savefile"
	"rtasql/sqlparse"
)

// Stats holds the monotonic counters the `rta_stat` meta-table exposes.
// Every field is accessed with atomic ops since a future host may read
// them from a different goroutine than the one driving Exec/FeedWire,
// even though execution itself is never concurrent.
type Stats struct {
	SysErrors   int64
	IntErrors   int64
	SQLErrors   int64
	Connections int64
	Selects     int64
	Updates     int64
	Inserts     int64
	Deletes     int64
}

func (s *Stats) incr(p *int64) { atomic.AddInt64(p, 1) }

// Snapshot reads every counter with an atomic load, satisfying
// metatables.StatsSource for the `rta_stat` meta-table.
func (s *Stats) Snapshot() metatables.StatSnapshot {
	return metatables.StatSnapshot{
		SysErrors:   atomic.LoadInt64(&s.SysErrors),
		IntErrors:   atomic.LoadInt64(&s.IntErrors),
		SQLErrors:   atomic.LoadInt64(&s.SQLErrors),
		Connections: atomic.LoadInt64(&s.Connections),
		Selects:     atomic.LoadInt64(&s.Selects),
		Updates:     atomic.LoadInt64(&s.Updates),
		Inserts:     atomic.LoadInt64(&s.Inserts),
		Deletes:     atomic.LoadInt64(&s.Deletes),
	}
}

// MaxOutputBytes bounds how much a single statement's response may grow
// the caller's output buffer before Exec reports EFullBuf.
const MaxOutputBytes = 1 << 20

// Engine is the host-facing facade: one per process, holding the table
// registry, its savefile loader adapter, and the framer's per-connection
// handshake state is left to the caller (FeedWire takes a *pgwire.Framer
// explicitly so one Engine can serve many connections).
type Engine struct {
	reg   *registry.Registry
	log   *zap.Logger
	stats Stats
}

// New creates an Engine with a no-op logger. Use NewWithLogger to wire a
// real sink (see cmd/rtasql for the zap/lumberjack setup).
func New() *Engine {
	return NewWithLogger(zap.NewNop())
}

// NewWithLogger creates an Engine that logs through log.
func NewWithLogger(log *zap.Logger) *Engine {
	e := &Engine{reg: registry.New(log), log: log}
	e.reg.SetLoader(registryLoader{e: e})
	e.reg.Init()
	return e
}

// registryLoader adapts Engine to registry.Loader so AddTable can
// trigger a savefile replay without the registry package importing
// savefile or engine directly.
type registryLoader struct{ e *Engine }

func (l registryLoader) Load(t *registry.TableDef, configDir string) error {
	return savefile.Load(t, configDir, l.e)
}

// Registry exposes the underlying table registry, e.g. for metatables
// installation at startup.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Stats returns the live stat counters; callers must not mutate them.
func (e *Engine) Stats() *Stats { return &e.stats }

// Logger returns the engine's structured logger.
func (e *Engine) Logger() *zap.Logger { return e.log }

// SetConfigDir sets the directory savefile paths are resolved relative
// to, per registry.SetConfigDir.
func (e *Engine) SetConfigDir(path string) error {
	return e.reg.SetConfigDir(path)
}

// AddTable registers t, validating it and attempting a savefile replay
// if it declares one.
func (e *Engine) AddTable(t *registry.TableDef) error {
	return e.reg.AddTable(t)
}

// InstallMetaTables registers the `rta_tables`, `rta_columns`, `rta_dbg`, and `rta_stat`
// self-describing tables, wiring `rta_dbg`'s writes to sink. Call it once,
// any time after New — the views read the registry live, so tables
// registered afterward still show up.
func (e *Engine) InstallMetaTables(sink *metatables.LogSink) error {
	return metatables.Install(e.reg, &e.stats, sink)
}

// Save writes t's persisted columns to path (resolved against the
// registry's config dir).
func (e *Engine) Save(t *registry.TableDef, path string) error {
	return savefile.Save(t, e.reg.ConfigDir(), path)
}

// Load replays path into t, exactly as AddTable does automatically for
// tables that declare a non-empty SaveFile.
func (e *Engine) Load(t *registry.TableDef, path string) error {
	saved := t.SaveFile
	t.SaveFile = path
	defer func() { t.SaveFile = saved }()
	return savefile.Load(t, e.reg.ConfigDir(), e)
}

// ReplaySQL runs sql for its side effects only, discarding any response;
// it satisfies savefile.Executor so Load/AddTable's automatic replay can
// drive statements straight into Exec.
func (e *Engine) ReplaySQL(sql string) error {
	var buf bytes.Buffer
	_, err := e.ExecuteSQL(sql, &buf)
	return err
}

// ExecuteSQL parses and runs a single SQL statement, appending its wire
// response bytes (RowDescription/DataRow/CommandComplete, or an
// ErrorResponse) to out. The returned int is the number of bytes
// written to out.
func (e *Engine) ExecuteSQL(sql string, out *bytes.Buffer) (int, error) {
	before := out.Len()
	w := pgwire.NewResponseWriter(out, MaxOutputBytes)
	mark := w.Mark()
	if err := e.Exec(sql, w); err != nil {
		w.Reset(mark)
		msg := err.Error()
		if err == pgwire.ErrNoBuf {
			msg = sqlErr(EFullBuf, "").Error()
		}
		if werr := w.ErrorResponse("SERROR", "42601", msg); werr != nil {
			return out.Len() - before, werr
		}
	}
	return out.Len() - before, nil
}

// FeedWire drives the PostgreSQL wire protocol state machine for one
// connection, consuming as much of in as forms a complete frontend
// packet and appending the response to out. f carries that connection's
// handshake state across calls.
func (e *Engine) FeedWire(f *pgwire.Framer, in []byte, out *bytes.Buffer) (pgwire.Outcome, int, error) {
	if f.OnAuth == nil {
		f.OnAuth = func() { e.stats.incr(&e.stats.Connections) }
	}
	return f.Feed(in, out, e, MaxOutputBytes)
}

// Exec implements pgwire.QueryExecutor: parse sql, verify it against the
// registry, run it, and write the response directly onto w. Any error
// returned is either pgwire.ErrNoBuf, which callers report as the
// "Output buffer full" error, or a message to report via w.ErrorResponse —
// Exec itself never writes an error packet, to let ExecuteSQL and FeedWire
// share one error path.
func (e *Engine) Exec(sql string, w *pgwire.ResponseWriter) error {
	cmd, err := sqlparse.Parse(sql)
	if err != nil {
		e.stats.incr(&e.stats.SQLErrors)
		return sqlErr(EBadParse, "")
	}

	p, err := e.verify(cmd)
	if err != nil {
		e.stats.incr(&e.stats.SQLErrors)
		return err
	}

	switch cmd.Kind {
	case sqlparse.CmdSelect:
		e.stats.incr(&e.stats.Selects)
		return e.execSelect(p, w)
	case sqlparse.CmdUpdate:
		e.stats.incr(&e.stats.Updates)
		return e.execUpdate(p, w)
	case sqlparse.CmdInsert:
		e.stats.incr(&e.stats.Inserts)
		return e.execInsert(p, w)
	case sqlparse.CmdDelete:
		e.stats.incr(&e.stats.Deletes)
		return e.execDelete(p, w)
	default:
		return sqlErr(EBadParse, "")
	}
}
