// Package savefile persists a table's DISKSAVE columns to a textual log
// of UPDATE/INSERT statements and replays that log at registration time.
package savefile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rtasql/coltype"
	"rtasql/registry"
)

// MaxLineLen bounds a savefile line; longer lines are silently truncated
// on load.
const MaxLineLen = 2048

// Executor runs one statement's worth of SQL against the engine during
// replay. engine.Engine implements this; savefile depends on it only
// through this interface to avoid an import cycle.
type Executor interface {
	ReplaySQL(sql string) error
}

// persistedColumns returns the table's non-read-only DISKSAVE columns, in
// definition order.
func persistedColumns(t *registry.TableDef) []*coltype.ColumnDef {
	var cols []*coltype.ColumnDef
	for _, c := range t.Columns {
		if c.Flags&coltype.DiskSave != 0 && c.Flags&coltype.ReadOnly == 0 {
			cols = append(cols, c)
		}
	}
	return cols
}

// quote formats s as a savefile string literal: double-quoted unless it
// contains a double quote, in which case single-quoted. If it contains
// both quote characters the double-quote form is used with embedded
// double quotes backslash-escaped. Backslashes are escaped in every
// form, mirroring the lexer's escape rule, so any value replays to the
// exact bytes that were saved.
func quote(s string) string {
	esc := strings.ReplaceAll(s, `\`, `\\`)
	hasDouble := strings.Contains(s, `"`)
	hasSingle := strings.Contains(s, `'`)
	switch {
	case hasDouble && hasSingle:
		return `"` + strings.ReplaceAll(esc, `"`, `\"`) + `"`
	case hasDouble:
		return "'" + esc + "'"
	default:
		return `"` + esc + `"`
	}
}

// Save writes t's persisted columns to dir-relative (or absolute) path as
// a series of single-statement lines, one per row, and atomically
// replaces the target file. If t has an insert callback, rows are
// serialized as INSERT statements; otherwise as UPDATE...LIMIT 1 OFFSET n.
func Save(t *registry.TableDef, dir string, path string) error {
	cols := persistedColumns(t)
	if len(cols) == 0 {
		return nil
	}

	full := resolvePath(dir, path)
	tmp, err := os.CreateTemp(filepath.Dir(full), "rtasql-save-*")
	if err != nil {
		return fmt.Errorf("savefile: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	w := bufio.NewWriter(tmp)
	var writeErr error
	t.Scan(func(row any, rowID int) bool {
		if err := writeRow(w, t, cols, row, rowID); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		tmp.Close()
		return fmt.Errorf("savefile: %w", writeErr)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("savefile: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("savefile: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("savefile: rename into place: %w", err)
	}
	return nil
}

func writeRow(w *bufio.Writer, t *registry.TableDef, cols []*coltype.ColumnDef, row any, rowID int) error {
	if t.InsertCB != nil {
		names := make([]string, len(cols))
		vals := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
			vals[i] = formatCell(c, row)
		}
		_, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s)\n",
			t.Name, strings.Join(names, ", "), strings.Join(vals, ", "))
		return err
	}

	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.Name + " = " + formatCell(c, row)
	}
	_, err := fmt.Fprintf(w, "UPDATE %s SET %s LIMIT 1 OFFSET %d\n",
		t.Name, strings.Join(parts, ", "), rowID)
	return err
}

func formatCell(c *coltype.ColumnDef, row any) string {
	v := c.Get(row)
	if c.Kind.IsString() {
		return quote(v.Format())
	}
	return v.Format()
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

// Load reads path (dir-relative or absolute) and feeds every line whose
// first token is UPDATE or INSERT through exec, one statement at a time.
// All other lines — including blank lines — are treated as comments, per
// the documented (non-strict) load behavior. The table's SaveFile field
// is temporarily cleared for the duration of the load so that write
// callbacks triggered by the replay do not themselves trigger a save.
func Load(t *registry.TableDef, dir string, exec Executor) error {
	full := resolvePath(dir, t.SaveFile)
	f, err := os.Open(full)
	if err != nil {
		return fmt.Errorf("savefile: open %s: %w", full, err)
	}
	defer f.Close()

	saved := t.SaveFile
	t.SaveFile = ""
	defer func() { t.SaveFile = saved }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > MaxLineLen {
			line = line[:MaxLineLen]
		}
		if !isStatementLine(line) {
			continue
		}
		if err := exec.ReplaySQL(line); err != nil {
			return fmt.Errorf("savefile: replay %q: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("savefile: read %s: %w", full, err)
	}
	return nil
}

func isStatementLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	first := trimmed
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		first = trimmed[:i]
	}
	return strings.EqualFold(first, "UPDATE") || strings.EqualFold(first, "INSERT")
}
