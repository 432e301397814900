package engine

import (
	"strconv"

	"go.uber.org/zap"

	"rtasql/coltype"
	"rtasql/pgwire"
	"rtasql/registry"
	"rtasql/rowaccess"
	"rtasql/savefile"
	"rtasql/sqlparse"
)

// saveTable rewrites t's savefile after a mutation that touched a
// DiskSave column. Failures are logged and counted, never surfaced to
// the client; the in-memory mutation has already happened.
func (e *Engine) saveTable(t *registry.TableDef) {
	if t.SaveFile == "" {
		return
	}
	if err := savefile.Save(t, e.reg.ConfigDir(), t.SaveFile); err != nil {
		e.stats.incr(&e.stats.SysErrors)
		e.log.Error("savefile rewrite failed",
			zap.String("table", t.Name),
			zap.String("savefile", t.SaveFile),
			zap.Error(err))
	}
}

// rowMatches reports whether row satisfies every WHERE term of p, in
// order, invoking each term's read callback before comparing. The
// dialect is AND-only, so the first failing term short circuits the
// rest. A read callback failure aborts the statement with EBadTrig.
func rowMatches(p *plan, row any, rowID int) (bool, error) {
	for i, col := range p.whereCols {
		v, err := rowaccess.Get(col, p.cmd.Text, row, rowID)
		if err != nil {
			return false, sqlErr(EBadTrig, col.Name)
		}
		cmp := coltype.Compare(v, p.whereVals[i], col.Capacity)
		var ok bool
		switch p.cmd.Where[i].Op {
		case sqlparse.OpEQ:
			ok = cmp == 0
		case sqlparse.OpNE:
			ok = cmp != 0
		case sqlparse.OpGT:
			ok = cmp > 0
		case sqlparse.OpLT:
			ok = cmp < 0
		case sqlparse.OpGE:
			ok = cmp >= 0
		case sqlparse.OpLE:
			ok = cmp <= 0
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Engine) execSelect(p *plan, w *pgwire.ResponseWriter) error {
	// Synthesized OIDs: table registration index scaled by the column
	// ceiling, plus the column's position within its table.
	tblIdx := e.reg.TableIndex(p.table)
	fields := make([]pgwire.Field, len(p.selectCols))
	for i, col := range p.selectCols {
		attr := p.table.ColumnIndex(col)
		fields[i] = pgwire.Field{
			Col:      col,
			TableOID: int32(tblIdx*registry.MaxColumns + attr),
			Attr:     int16(attr),
		}
	}
	if err := w.RowDescription(fields); err != nil {
		return err
	}

	matched := 0
	emitted := 0
	var rowErr error
	p.table.Scan(func(row any, rowID int) bool {
		match, err := rowMatches(p, row, rowID)
		if err != nil {
			rowErr = err
			return false
		}
		if !match {
			return true
		}
		matched++
		if matched <= p.cmd.Offset {
			return true
		}
		if emitted >= p.cmd.Limit {
			return false
		}
		vals := make([]coltype.Value, len(p.selectCols))
		for i, col := range p.selectCols {
			v, err := rowaccess.Get(col, p.cmd.Text, row, rowID)
			if err != nil {
				rowErr = sqlErr(EBadTrig, col.Name)
				return false
			}
			vals[i] = v
		}
		if err := w.DataRow(vals); err != nil {
			rowErr = err
			return false
		}
		emitted++
		return emitted < p.cmd.Limit
	})
	if rowErr != nil {
		return rowErr
	}
	return w.CommandComplete("SELECT")
}

// rowSnapshot is the pre-assignment capture of a row's column values,
// passed as the "old" argument to write callbacks and used to roll an
// UPDATE back if a callback aborts it.
type rowSnapshot map[string]coltype.Value

func snapshotRow(cols []*coltype.ColumnDef, row any) rowSnapshot {
	snap := make(rowSnapshot, len(cols))
	for _, c := range cols {
		snap[c.Name] = c.Get(row)
	}
	return snap
}

func (snap rowSnapshot) restore(cols []*coltype.ColumnDef, row any) {
	for _, c := range cols {
		c.Set(row, snap[c.Name])
	}
}

func (e *Engine) execUpdate(p *plan, w *pgwire.ResponseWriter) error {
	updated := 0
	matched := 0
	var execErr error

	diskSaveTouched := false
	for _, col := range p.assignCols {
		if col.Flags&coltype.DiskSave != 0 {
			diskSaveTouched = true
		}
	}

	p.table.Scan(func(row any, rowID int) bool {
		match, err := rowMatches(p, row, rowID)
		if err != nil {
			execErr = err
			return false
		}
		if !match {
			return true
		}
		matched++
		if matched <= p.cmd.Offset {
			return true
		}
		if updated >= p.cmd.Limit {
			return false
		}

		old := snapshotRow(p.table.Columns, row)
		for i, col := range p.assignCols {
			col.Set(row, p.assignVals[i])
		}
		for _, col := range p.assignCols {
			if col.WriteCB == nil {
				continue
			}
			if err := col.WriteCB(p.table.Name, col.Name, p.cmd.Text, row, rowID, old); err != nil {
				old.restore(p.table.Columns, row)
				e.log.Warn("write callback aborted UPDATE",
					zap.String("table", p.table.Name), zap.String("column", col.Name))
				execErr = sqlErr(EBadTrig, col.Name)
				return false
			}
		}
		if diskSaveTouched {
			e.saveTable(p.table)
		}
		updated++
		return updated < p.cmd.Limit
	})

	if execErr != nil {
		return execErr
	}
	return w.CommandComplete(commandTag("UPDATE", updated))
}

func (e *Engine) execDelete(p *plan, w *pgwire.ResponseWriter) error {
	deleted := 0
	matched := 0
	var execErr error

	if p.table.Iterator != nil {
		// Linked/host-iterated storage: the next row handle must be
		// fetched while the current row is still intact, since the
		// delete callback is free to unlink or free it.
		var cur any
		curOK := false
		cur, curOK = p.table.Iterator(nil, p.table.Cookie, 0)
		i := 0
		for curOK {
			next, nextOK := p.table.Iterator(cur, p.table.Cookie, i+1)

			match, err := rowMatches(p, cur, i)
			if err != nil {
				execErr = err
				break
			}
			if match {
				matched++
				if matched > p.cmd.Offset && deleted < p.cmd.Limit {
					if err := p.table.DeleteCB(p.table.Name, p.cmd.Text, cur); err != nil {
						execErr = sqlErr(EBadTrig, p.table.Name)
						break
					}
					deleted++
				}
			}
			if deleted >= p.cmd.Limit {
				break
			}
			cur, curOK = next, nextOK
			i++
		}
	} else {
		// Array-backed storage: the host is expected to compact the
		// array on delete, so the row now at index i is the one after
		// whatever was just removed; only advance i when nothing was
		// deleted at this index.
		i := 0
		for {
			rowCount := 0
			if p.table.RowCount != nil {
				rowCount = p.table.RowCount()
			}
			if i >= rowCount || deleted >= p.cmd.Limit {
				break
			}
			row, ok := p.table.At(i)
			if !ok {
				break
			}
			match, err := rowMatches(p, row, i)
			if err != nil {
				execErr = err
				break
			}
			if !match {
				i++
				continue
			}
			matched++
			if matched <= p.cmd.Offset {
				i++
				continue
			}
			if err := p.table.DeleteCB(p.table.Name, p.cmd.Text, row); err != nil {
				execErr = sqlErr(EBadTrig, p.table.Name)
				break
			}
			deleted++
		}
	}

	if deleted > 0 && p.table.HasDiskSave() {
		e.saveTable(p.table)
	}
	if execErr != nil {
		return execErr
	}
	return w.CommandComplete(commandTag("DELETE", deleted))
}

func (e *Engine) execInsert(p *plan, w *pgwire.ResponseWriter) error {
	row := p.table.NewRow()

	// Every column starts from its kind's zero value so indirect slots
	// allocate their backing storage before any Set call touches them.
	for _, c := range p.table.Columns {
		c.Set(row, c.ZeroValue())
	}
	for i, col := range p.insertCols {
		col.Set(row, p.insertVals[i])
	}

	newOID, err := p.table.InsertCB(p.table.Name, p.cmd.Text, row)
	if err != nil || newOID < 0 {
		return sqlErr(EBadInsert, p.table.Name)
	}

	// Write callbacks fire for every column of the table in definition
	// order, not just the ones named in the statement.
	for _, col := range p.table.Columns {
		if col.WriteCB == nil {
			continue
		}
		if err := col.WriteCB(p.table.Name, col.Name, p.cmd.Text, row, -1, nil); err != nil {
			if p.table.DeleteCB != nil {
				p.table.DeleteCB(p.table.Name, p.cmd.Text, row)
			}
			return sqlErr(EBadTrig, col.Name)
		}
	}

	if p.table.HasDiskSave() {
		e.saveTable(p.table)
	}
	return w.CommandComplete(insertTag(newOID))
}

// commandTag renders the CommandComplete tag for a row-count verb.
func commandTag(verb string, n int) string {
	return verb + " " + strconv.Itoa(n)
}

// insertTag renders the CommandComplete tag for INSERT, which carries
// the inserted row's OID ahead of the always-1 row count, matching
// PostgreSQL's historical "INSERT oid rows" tag shape.
func insertTag(oid int64) string {
	return "INSERT " + strconv.FormatInt(oid, 10) + " 1"
}
