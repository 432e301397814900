package main

import (
	"log/syslog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"rtasql/metatables"
)

// logFilePath is where the file-backed sink half of a "log-sink" or
// "both" dbg target writes, rotated by lumberjack.
const logFilePath = "rtasql.log"

// newLogSink builds the process's LogSink, wiring the rta_dbg
// meta-table's target field to an actual sink: stderr, a rotating file,
// a zapcore.Tee of both, or the local syslog daemon.
func newLogSink(initial metatables.DbgConfig) *metatables.LogSink {
	return metatables.NewLogSink(initial, buildLogger)
}

func buildLogger(cfg metatables.DbgConfig) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	var cores []zapcore.Core
	switch cfg.Target {
	case metatables.SinkStderr:
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), zap.InfoLevel))
	case metatables.SinkLogFile:
		cores = append(cores, fileCore(encoder))
	case metatables.SinkBoth:
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), zap.InfoLevel))
		cores = append(cores, fileCore(encoder))
	case metatables.SinkSyslog:
		cores = append(cores, syslogCore(encoder, cfg))
	case metatables.SinkNone:
		return zap.NewNop()
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core).Named(cfg.Ident)
}

func fileCore(encoder zapcore.Encoder) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return zapcore.NewCore(encoder, zapcore.AddSync(rotator), zap.InfoLevel)
}

// syslogSyncer adapts a syslog.Writer to zapcore.WriteSyncer. The syslog
// connection has no userspace buffering to flush, so Sync is a no-op.
type syslogSyncer struct{ w *syslog.Writer }

func (s syslogSyncer) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s syslogSyncer) Sync() error                 { return nil }

// syslogCore opens the local syslog daemon with the dbg table's
// priority, facility, and ident. A logger rebuild re-enters here on any
// change to those fields, reopening the connection. If the daemon is
// unreachable, logging degrades to a no-op core rather than failing the
// dbg write that selected the target.
func syslogCore(encoder zapcore.Encoder, cfg metatables.DbgConfig) zapcore.Core {
	prio := syslog.Priority(cfg.SyslogFacility) | syslog.Priority(cfg.SyslogPriority)
	w, err := syslog.New(prio, cfg.Ident)
	if err != nil {
		return zapcore.NewNopCore()
	}
	return zapcore.NewCore(encoder, syslogSyncer{w: w}, zap.InfoLevel)
}
