package main

import (
	"bytes"
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rtasql/cmd/rtasql/demotable"
	"rtasql/engine"
	"rtasql/metatables"
	"rtasql/pgwire"
)

func serveCmd() *cobra.Command {
	var addr string
	var configDir string
	var seedRows int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the engine as a standalone Postgres-wire server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(addr, configDir, seedRows)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5433", "listen address")
	cmd.Flags().StringVar(&configDir, "config-dir", ".", "directory savefile paths resolve against")
	cmd.Flags().IntVar(&seedRows, "seed", 5, "number of demo rows to seed into the widgets table")
	return cmd
}

// wireRequest is one FeedWire invocation shipped to the executor
// goroutine, with the caller blocked on done until it has run.
type wireRequest struct {
	framer *pgwire.Framer
	in     []byte
	out    *bytes.Buffer
	done   chan wireResult
}

type wireResult struct {
	outcome  pgwire.Outcome
	consumed int
	err      error
}

func runServe(addr, configDir string, seedRows int) error {
	sink := newLogSink(metatables.DbgConfig{LogSQLErrors: true, Target: metatables.SinkStderr, Ident: "rtasql"})
	eng := engine.NewWithLogger(sink.Logger())

	if err := eng.SetConfigDir(configDir); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	store := demotable.NewStore()
	store.Seed(seedRows)
	if err := eng.AddTable(store.TableDef()); err != nil {
		return fmt.Errorf("serve: register widgets table: %w", err)
	}
	if err := eng.InstallMetaTables(sink); err != nil {
		return fmt.Errorf("serve: install meta-tables: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve: listen on %s: %w", addr, err)
	}
	defer ln.Close()
	sink.Logger().Sugar().Infof("rtasql listening on %s", addr)

	// The engine is single-threaded cooperative, so every FeedWire call
	// from every connection is funneled through this one executor
	// goroutine; connection goroutines only do socket I/O.
	requests := make(chan wireRequest)
	go func() {
		for req := range requests {
			outcome, consumed, err := eng.FeedWire(req.framer, req.in, req.out)
			req.done <- wireResult{outcome: outcome, consumed: consumed, err: err}
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("serve: accept: %w", err)
		}
		go serveConn(sink.Logger().Sugar(), requests, conn)
	}
}

// serveConn bridges one raw TCP connection to the executor goroutine,
// feeding whatever bytes arrive and writing back whatever response bytes
// (if any) accumulate before the next read.
func serveConn(log *zap.SugaredLogger, requests chan<- wireRequest, conn net.Conn) {
	defer conn.Close()

	framer := pgwire.NewFramer()
	var pending bytes.Buffer
	readBuf := make([]byte, 4096)
	done := make(chan wireResult, 1)

	for {
		n, err := conn.Read(readBuf)
		if n > 0 {
			pending.Write(readBuf[:n])
		}
		if err != nil {
			if err != io.EOF {
				log.Warnf("connection read error: %v", err)
			}
			return
		}

		for pending.Len() > 0 {
			var out bytes.Buffer
			requests <- wireRequest{framer: framer, in: pending.Bytes(), out: &out, done: done}
			res := <-done
			if res.err != nil {
				log.Warnf("wire framing error: %v", res.err)
				return
			}
			if out.Len() > 0 {
				if _, werr := conn.Write(out.Bytes()); werr != nil {
					return
				}
			}
			if res.consumed > 0 {
				remaining := append([]byte(nil), pending.Bytes()[res.consumed:]...)
				pending.Reset()
				pending.Write(remaining)
			}
			if res.outcome == pgwire.Close {
				return
			}
			if res.outcome == pgwire.NoCompleteCommand || res.consumed == 0 {
				break
			}
		}
	}
}
