package sqlparse

import "testing"

func TestParseSelectStar(t *testing.T) {
	cmd, err := Parse("SELECT * FROM widgets")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != CmdSelect || !cmd.SelectStar || cmd.Table != "widgets" {
		t.Errorf("got %+v", cmd)
	}
	if cmd.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want DefaultLimit", cmd.Limit)
	}
}

func TestParseSelectColumnsWhereLimitOffset(t *testing.T) {
	cmd, err := Parse("SELECT name, size FROM widgets WHERE size > 3 AND name = 'bolt' LIMIT 10 OFFSET 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cmd.Columns) != 2 || cmd.Columns[0] != "name" || cmd.Columns[1] != "size" {
		t.Errorf("Columns = %v", cmd.Columns)
	}
	if len(cmd.Where) != 2 {
		t.Fatalf("Where = %v, want 2 conditions", cmd.Where)
	}
	if cmd.Where[0].Column != "size" || cmd.Where[0].Op != OpGT || cmd.Where[0].Value.Int != 3 {
		t.Errorf("Where[0] = %+v", cmd.Where[0])
	}
	if cmd.Where[1].Column != "name" || cmd.Where[1].Op != OpEQ || cmd.Where[1].Value.Str != "bolt" {
		t.Errorf("Where[1] = %+v", cmd.Where[1])
	}
	if cmd.Limit != 10 || cmd.Offset != 2 {
		t.Errorf("Limit=%d Offset=%d, want 10/2", cmd.Limit, cmd.Offset)
	}
}

func TestParseWhereParenthesizedGroupFlattens(t *testing.T) {
	cmd, err := Parse("SELECT * FROM widgets WHERE (size > 1 AND size < 9) AND name != 'x'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cmd.Where) != 3 {
		t.Fatalf("Where = %v, want 3 flattened conditions", cmd.Where)
	}
	if cmd.Where[2].Op != OpNE {
		t.Errorf("Where[2].Op = %v, want OpNE", cmd.Where[2].Op)
	}
}

func TestParseUpdate(t *testing.T) {
	cmd, err := Parse(`UPDATE widgets SET seton = "olleh", size = 4 WHERE name = bolt`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != CmdUpdate || cmd.Table != "widgets" {
		t.Errorf("got %+v", cmd)
	}
	if len(cmd.Assignments) != 2 {
		t.Fatalf("Assignments = %v", cmd.Assignments)
	}
	if cmd.Assignments[0].Column != "seton" || cmd.Assignments[0].Value.Str != "olleh" {
		t.Errorf("Assignments[0] = %+v", cmd.Assignments[0])
	}
	if cmd.Where[0].Value.Kind != LitName || cmd.Where[0].Value.Str != "bolt" {
		t.Errorf("bare identifier literal should parse as LitName, got %+v", cmd.Where[0].Value)
	}
}

func TestParseInsert(t *testing.T) {
	cmd, err := Parse("INSERT INTO widgets (name, size) VALUES ('bolt', 7)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != CmdInsert || len(cmd.Columns) != 2 || len(cmd.InsertValues) != 2 {
		t.Errorf("got %+v", cmd)
	}
	if cmd.InsertValues[1].Int != 7 {
		t.Errorf("InsertValues[1] = %+v", cmd.InsertValues[1])
	}
}

func TestParseInsertColumnValueCountMismatch(t *testing.T) {
	_, err := Parse("INSERT INTO widgets (name, size) VALUES ('bolt')")
	if err == nil {
		t.Fatal("expected an error for mismatched column/value counts")
	}
}

func TestParseDelete(t *testing.T) {
	cmd, err := Parse("DELETE FROM widgets WHERE size >= 5 LIMIT 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Kind != CmdDelete || cmd.Limit != 1 {
		t.Errorf("got %+v", cmd)
	}
}

func TestParseStringLiteralBackslashEscapes(t *testing.T) {
	cmd, err := Parse(`UPDATE widgets SET name = "it's \"quoted\"" LIMIT 1`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cmd.Assignments[0].Value.Str; got != `it's "quoted"` {
		t.Errorf("Str = %q, want %q", got, `it's "quoted"`)
	}

	// A backslash not followed by the delimiter or another backslash
	// stays a literal byte.
	cmd, err = Parse(`UPDATE widgets SET name = "a\b, c\\d" LIMIT 1`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cmd.Assignments[0].Value.Str; got != `a\b, c\d` {
		t.Errorf("Str = %q, want %q", got, `a\b, c\d`)
	}
}

func TestParseErrorEchoesText(t *testing.T) {
	text := "SELEKT * FROM widgets"
	_, err := Parse(text)
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if perr.Text != text {
		t.Errorf("Text = %q, want %q", perr.Text, text)
	}
}

func TestParseRejectsReservedWordAsIdentifier(t *testing.T) {
	_, err := Parse("SELECT * FROM where")
	if err == nil {
		t.Fatal("expected an error using a reserved word as a table name")
	}
}

func TestParseTrailingSemicolonAccepted(t *testing.T) {
	if _, err := Parse("SELECT * FROM widgets;"); err != nil {
		t.Errorf("Parse with trailing semicolon: %v", err)
	}
}

func TestParseTrailingGarbageRejected(t *testing.T) {
	if _, err := Parse("SELECT * FROM widgets garbage"); err == nil {
		t.Fatal("expected an error for trailing tokens after the statement")
	}
}
