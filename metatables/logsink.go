package metatables

import (
	"sync"

	"go.uber.org/zap"
)

// SinkTarget selects where the engine's log output goes.
type SinkTarget int32

const (
	SinkNone SinkTarget = iota
	SinkLogFile
	SinkStderr
	SinkBoth
	// SinkSyslog forwards to the local syslog daemon using the
	// priority, facility, and ident fields of DbgConfig.
	SinkSyslog
)

// DbgConfig is the process-wide logging configuration exposed by the
// `rta_dbg` meta-table: which classes of event are logged, where they go,
// and the syslog identity used when a log sink forwards to syslog.
type DbgConfig struct {
	LogSysErrors bool
	LogIntErrors bool
	LogSQLErrors bool
	LogSQLTrace  bool

	Target SinkTarget

	SyslogPriority int32
	SyslogFacility int32
	Ident          string
}

// LogSink owns a zap.Logger and rebuilds it whenever a write to the
// `rta_dbg` meta-table changes a field that affects sink selection.
// Logger returns whichever logger is current at the time of the call; a
// logger already handed out (such as the one an engine.Engine was created
// with) keeps writing to the sink it was built for. build is supplied by the host
// (cmd/rtasql wires stderr and a lumberjack-backed file sink); metatables
// itself has no opinion on how a target maps to an io.Writer.
type LogSink struct {
	mu     sync.Mutex
	cfg    DbgConfig
	logger *zap.Logger
	build  func(DbgConfig) *zap.Logger
}

// NewLogSink creates a LogSink with the given starting configuration,
// building the initial logger immediately.
func NewLogSink(initial DbgConfig, build func(DbgConfig) *zap.Logger) *LogSink {
	s := &LogSink{cfg: initial, build: build}
	s.logger = build(initial)
	return s
}

// Logger returns the currently active logger.
func (s *LogSink) Logger() *zap.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// Config returns a copy of the current configuration.
func (s *LogSink) Config() DbgConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// sinkAffecting reports whether changing from old to next requires
// rebuilding the underlying logger. A change to the class flags alone only
// updates the stored configuration; the engine's own log calls do not
// read those flags.
func sinkAffecting(old, next DbgConfig) bool {
	return old.Target != next.Target ||
		old.SyslogPriority != next.SyslogPriority ||
		old.SyslogFacility != next.SyslogFacility ||
		old.Ident != next.Ident
}

// SetConfig installs next as the live configuration, rebuilding the
// logger if a sink-affecting field changed.
func (s *LogSink) SetConfig(next DbgConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reopen := sinkAffecting(s.cfg, next)
	s.cfg = next
	if reopen {
		s.logger = s.build(next)
	}
}

