package engine

import (
	"rtasql/coltype"
	"rtasql/registry"
	"rtasql/sqlparse"
)

// plan is the result of verifying a Command against the registry: every
// name has been resolved to a *coltype.ColumnDef and every literal has
// been type-checked and converted to a coltype.Value. Nothing in Exec
// ever re-resolves a name or re-checks a literal's type; that is the
// whole point of running verification as a single up-front phase before
// any callback runs.
type plan struct {
	table *registry.TableDef
	cmd   *sqlparse.Command

	selectCols []*coltype.ColumnDef // SELECT projection, in output order

	assignCols []*coltype.ColumnDef // UPDATE SET, parallel to cmd.Assignments
	assignVals []coltype.Value

	insertCols []*coltype.ColumnDef // INSERT column list
	insertVals []coltype.Value

	whereCols []*coltype.ColumnDef // WHERE terms, parallel to cmd.Where
	whereVals []coltype.Value
}

func (e *Engine) verify(cmd *sqlparse.Command) (*plan, error) {
	table := e.reg.TableByName(cmd.Table)
	if table == nil {
		return nil, sqlErr(ENoTable, cmd.Table)
	}

	p := &plan{table: table, cmd: cmd}

	switch cmd.Kind {
	case sqlparse.CmdSelect:
		if cmd.SelectStar {
			p.selectCols = table.Columns
		} else {
			for _, name := range cmd.Columns {
				col := table.Column(name)
				if col == nil {
					return nil, sqlErr(ENoColumn, name)
				}
				p.selectCols = append(p.selectCols, col)
			}
		}

	case sqlparse.CmdUpdate:
		for _, a := range cmd.Assignments {
			col := table.Column(a.Column)
			if col == nil {
				return nil, sqlErr(ENoColumn, a.Column)
			}
			v, err := typeCheckLiteral(a.Value, col, true)
			if err != nil {
				return nil, err
			}
			if col.Flags&coltype.ReadOnly != 0 {
				return nil, sqlErr(ENoWrite, a.Column)
			}
			p.assignCols = append(p.assignCols, col)
			p.assignVals = append(p.assignVals, v)
		}

	case sqlparse.CmdInsert:
		if table.InsertCB == nil {
			return nil, sqlErr(ENoInsert, cmd.Table)
		}
		for i, name := range cmd.Columns {
			col := table.Column(name)
			if col == nil {
				return nil, sqlErr(ENoColumn, name)
			}
			v, err := typeCheckLiteral(cmd.InsertValues[i], col, true)
			if err != nil {
				return nil, err
			}
			p.insertCols = append(p.insertCols, col)
			p.insertVals = append(p.insertVals, v)
		}

	case sqlparse.CmdDelete:
		if table.DeleteCB == nil {
			return nil, sqlErr(ENoDelete, cmd.Table)
		}
	}

	for _, w := range cmd.Where {
		col := table.Column(w.Column)
		if col == nil {
			return nil, sqlErr(ENoColumn, w.Column)
		}
		v, err := typeCheckLiteral(w.Value, col, false)
		if err != nil {
			return nil, err
		}
		p.whereCols = append(p.whereCols, col)
		p.whereVals = append(p.whereVals, v)
	}

	return p, nil
}

// typeCheckLiteral converts a parsed literal into a coltype.Value of
// col's kind, or returns EBadParse on a kind mismatch. When enforceCap is
// true (UPDATE/INSERT, never WHERE) a string literal that would not fit
// in capacity-1 bytes is rejected with EBigStr rather than silently
// truncated.
func typeCheckLiteral(lit sqlparse.Literal, col *coltype.ColumnDef, enforceCap bool) (coltype.Value, error) {
	switch {
	case col.Kind.IsString():
		var s string
		switch lit.Kind {
		case sqlparse.LitString, sqlparse.LitName:
			s = lit.Str
		default:
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}
		if enforceCap && col.Capacity > 0 && len(s) > col.Capacity-1 {
			return coltype.Value{}, sqlErr(EBigStr, col.Name)
		}
		return coltype.NewString(s), nil

	case col.Kind == coltype.KindInt16:
		if lit.Kind != sqlparse.LitInt {
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}
		return coltype.NewInt16(int16(lit.Int)), nil

	case col.Kind == coltype.KindUint8:
		if lit.Kind != sqlparse.LitInt {
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}
		return coltype.NewUint8(uint8(lit.Int)), nil

	case col.Kind == coltype.KindInt32 || col.Kind == coltype.KindPInt32:
		if lit.Kind != sqlparse.LitInt {
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}
		return coltype.NewInt32(int32(lit.Int)), nil

	case col.Kind == coltype.KindInt64 || col.Kind == coltype.KindPInt64:
		if lit.Kind != sqlparse.LitInt {
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}
		return coltype.NewInt64(lit.Int), nil

	case col.Kind == coltype.KindFloat32:
		switch lit.Kind {
		case sqlparse.LitFloat:
			return coltype.NewFloat32(float32(lit.Float)), nil
		case sqlparse.LitInt:
			return coltype.NewFloat32(float32(lit.Int)), nil
		default:
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}

	case col.Kind == coltype.KindFloat64 || col.Kind == coltype.KindPFloat64:
		switch lit.Kind {
		case sqlparse.LitFloat:
			return coltype.NewFloat64(lit.Float), nil
		case sqlparse.LitInt:
			return coltype.NewFloat64(float64(lit.Int)), nil
		default:
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}

	case col.Kind == coltype.KindPointer:
		if lit.Kind != sqlparse.LitInt {
			return coltype.Value{}, sqlErr(EBadParse, col.Name)
		}
		return coltype.NewInt32(int32(lit.Int)), nil

	default:
		return coltype.Value{}, sqlErr(EBadParse, col.Name)
	}
}
