package savefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtasql/coltype"
	"rtasql/registry"
	"rtasql/sqlparse"
)

type row struct {
	Name string
	Size int32
}

func plainTable(rows *[]row) *registry.TableDef {
	return &registry.TableDef{
		Name: "widgets",
		At: func(i int) (any, bool) {
			if i < 0 || i >= len(*rows) {
				return nil, false
			}
			return &(*rows)[i], true
		},
		RowCount: func() int { return len(*rows) },
		Columns: []*coltype.ColumnDef{
			{
				Table: "widgets", Name: "name", Kind: coltype.KindString, Capacity: 32, Flags: coltype.DiskSave,
				Get: func(r any) coltype.Value { return coltype.NewString(r.(*row).Name) },
				Set: func(r any, v coltype.Value) { r.(*row).Name = v.Str() },
			},
			{
				Table: "widgets", Name: "size", Kind: coltype.KindInt32, Flags: coltype.DiskSave,
				Get: func(r any) coltype.Value { return coltype.NewInt32(r.(*row).Size) },
				Set: func(r any, v coltype.Value) { r.(*row).Size = int32(v.Int()) },
			},
		},
	}
}

func TestSaveProducesOneUpdateStatementPerRowWithoutInsertCB(t *testing.T) {
	rows := []row{{Name: "bolt", Size: 3}, {Name: `o"dd`, Size: 4}}
	tbl := plainTable(&rows)

	dir := t.TempDir()
	path := filepath.Join(dir, "save.dat")
	if err := Save(tbl, "", path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), string(data))
	}
	if !strings.HasPrefix(lines[0], "UPDATE widgets SET name = \"bolt\", size = 3 LIMIT 1 OFFSET 0") {
		t.Errorf("line 0 = %q", lines[0])
	}
	// A name containing a double quote must fall back to single-quoting.
	if !strings.Contains(lines[1], `'o"dd'`) {
		t.Errorf("line 1 = %q, want single-quoted value containing the embedded double quote", lines[1])
	}
}

func TestQuoteBothQuoteCharsEscapesDoubleQuote(t *testing.T) {
	got := quote(`it's "quoted"`)
	want := `"it's \"quoted\""`
	if got != want {
		t.Errorf("quote() = %q, want %q", got, want)
	}
}

func TestQuotedValuesRoundTripThroughParser(t *testing.T) {
	cases := []string{
		`plain`,
		`o"dd`,
		`it's fine`,
		`it's "quoted"`,
		`back\slash`,
		`both \" mixed '`,
		`trailing \`,
		`quote then backslash "\`,
	}
	for _, want := range cases {
		stmt := "UPDATE widgets SET name = " + quote(want) + " LIMIT 1 OFFSET 0"
		cmd, err := sqlparse.Parse(stmt)
		if err != nil {
			t.Errorf("Parse(%q): %v", stmt, err)
			continue
		}
		if got := cmd.Assignments[0].Value.Str; got != want {
			t.Errorf("value %q saved as %q replayed as %q", want, quote(want), got)
		}
	}
}

type recordingExecutor struct {
	statements []string
}

func (r *recordingExecutor) ReplaySQL(sql string) error {
	r.statements = append(r.statements, sql)
	return nil
}

func TestLoadSkipsNonStatementLinesAsComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "load.dat")
	content := "# a header comment\n\nUPDATE widgets SET size = 1 LIMIT 1 OFFSET 0\nnot a statement\nINSERT INTO widgets (name) VALUES (\"x\")\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var rows []row
	tbl := plainTable(&rows)
	tbl.SaveFile = path
	exec := &recordingExecutor{}
	if err := Load(tbl, "", exec); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(exec.statements) != 2 {
		t.Fatalf("replayed %d statements, want 2: %v", len(exec.statements), exec.statements)
	}
	if tbl.SaveFile != path {
		t.Error("Load must restore SaveFile after clearing it for the duration of the replay")
	}
}

func TestSaveWithNoDiskSaveColumnsIsNoop(t *testing.T) {
	tbl := &registry.TableDef{
		Name:     "widgets",
		At:       func(i int) (any, bool) { return nil, false },
		RowCount: func() int { return 0 },
		Columns: []*coltype.ColumnDef{
			{Table: "widgets", Name: "name", Kind: coltype.KindString},
		},
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "never-created.dat")
	if err := Save(tbl, "", path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("Save should not create a file when no column carries DiskSave")
	}
}
