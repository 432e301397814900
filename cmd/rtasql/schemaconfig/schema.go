// Package schemaconfig loads a declarative table/column schema from a
// TOML file and resolves it into registry column descriptors at
// startup, instead of requiring the host to hand-write a ColumnDef
// literal per column. It only supports columns that map onto exported
// fields of a Go struct the host registers alongside the schema.
package schemaconfig

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"rtasql/coltype"
	"rtasql/rowaccess"
)

// ColumnSpec is one column's declarative definition.
type ColumnSpec struct {
	Name     string `toml:"name"`
	Field    string `toml:"field"`
	Kind     string `toml:"kind"`
	Capacity int    `toml:"capacity"`
	DiskSave bool   `toml:"disksave"`
	ReadOnly bool   `toml:"readonly"`
	Help     string `toml:"help"`
}

// TableSpec is one table's declarative definition.
type TableSpec struct {
	Name     string       `toml:"name"`
	SaveFile string       `toml:"savefile"`
	Help     string       `toml:"help"`
	Columns  []ColumnSpec `toml:"column"`
}

// Document is the top-level shape of a schema TOML file: a list of
// tables, each with a list of columns.
type Document struct {
	Table []TableSpec `toml:"table"`
}

// Load parses path into a Document.
func Load(path string) (*Document, error) {
	var doc Document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("schemaconfig: decode %s: %w", path, err)
	}
	return &doc, nil
}

var kindNames = map[string]coltype.Kind{
	"string": coltype.KindString, "pstring": coltype.KindPString,
	"int16": coltype.KindInt16, "uint8": coltype.KindUint8,
	"int32": coltype.KindInt32, "pint32": coltype.KindPInt32,
	"int64": coltype.KindInt64, "pint64": coltype.KindPInt64,
	"float32": coltype.KindFloat32,
	"float64": coltype.KindFloat64, "pfloat64": coltype.KindPFloat64,
	"pointer": coltype.KindPointer,
}

// BuildColumns resolves spec's columns into coltype.ColumnDef values
// whose accessors are bound by field name, via rowaccess.FieldAccessor,
// to the struct a row handle points to. tableName is stamped onto every
// column's Table field.
func BuildColumns(tableName string, spec []ColumnSpec) ([]*coltype.ColumnDef, error) {
	cols := make([]*coltype.ColumnDef, 0, len(spec))
	for _, c := range spec {
		kind, ok := kindNames[c.Kind]
		if !ok {
			return nil, fmt.Errorf("schemaconfig: table %q column %q: unknown kind %q", tableName, c.Name, c.Kind)
		}
		get, set := rowaccess.FieldAccessor(c.Field, kind)
		var flags coltype.Flag
		if c.DiskSave {
			flags |= coltype.DiskSave
		}
		if c.ReadOnly {
			flags |= coltype.ReadOnly
		}
		cols = append(cols, &coltype.ColumnDef{
			Table: tableName, Name: c.Name, Kind: kind,
			Capacity: c.Capacity, Flags: flags, Help: c.Help,
			Get: get, Set: set,
		})
	}
	return cols, nil
}

// Validate checks every table spec for part of what registry.AddTable
// will itself enforce, without needing live row storage: table names must
// be non-empty, unique, within coltype.MaxNameLen and not reserved,
// column names unique within their table, and every kind known. Column
// name length, reserved column names and help length are not checked.
// It serves the `schema validate` subcommand, which only wants to catch
// authoring mistakes before a server ever starts.
func Validate(doc *Document) error {
	seen := make(map[string]bool, len(doc.Table))
	for _, t := range doc.Table {
		if t.Name == "" {
			return fmt.Errorf("schemaconfig: table with empty name")
		}
		if seen[t.Name] {
			return fmt.Errorf("schemaconfig: duplicate table %q", t.Name)
		}
		seen[t.Name] = true
		if len(t.Name) > coltype.MaxNameLen {
			return fmt.Errorf("schemaconfig: table name %q exceeds %d characters", t.Name, coltype.MaxNameLen)
		}
		if coltype.ReservedWords[strings.ToUpper(t.Name)] {
			return fmt.Errorf("schemaconfig: table name %q is a reserved word", t.Name)
		}
		colSeen := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if colSeen[c.Name] {
				return fmt.Errorf("schemaconfig: table %q: duplicate column %q", t.Name, c.Name)
			}
			colSeen[c.Name] = true
			if _, ok := kindNames[c.Kind]; !ok {
				return fmt.Errorf("schemaconfig: table %q column %q: unknown kind %q", t.Name, c.Name, c.Kind)
			}
		}
	}
	return nil
}

