package sqlparse

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError carries the single error token the dialect produces on a
// malformed statement: a message plus the verbatim command text, echoed
// back to the caller unmodified. The parser never attempts recovery.
type ParseError struct {
	Msg  string
	Text string
}

func (e *ParseError) Error() string { return e.Msg }

// Parser consumes a token stream and produces a Command. Create one with
// Parse; it is not meant to be reused across statements.
type Parser struct {
	lex  *Lexer
	tok  Token
	text string
}

// Parse lexes and parses one statement (an optional trailing semicolon is
// accepted and discarded).
func Parse(text string) (*Command, error) {
	p := &Parser{lex: NewLexer(text), text: text}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var cmd *Command
	var err error

	switch {
	case p.isKeyword("SELECT"):
		cmd, err = p.parseSelect()
	case p.isKeyword("UPDATE"):
		cmd, err = p.parseUpdate()
	case p.isKeyword("INSERT"):
		cmd, err = p.parseInsert()
	case p.isKeyword("DELETE"):
		cmd, err = p.parseDelete()
	default:
		return nil, p.fail("expected SELECT, UPDATE, INSERT, or DELETE")
	}
	if err != nil {
		return nil, err
	}

	if p.tok.Kind == TSemicolon {
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
	}
	if p.tok.Kind != TEOF {
		return nil, p.fail(fmt.Sprintf("unexpected token %q after statement", p.tok.Text))
	}
	cmd.Text = text
	return cmd, nil
}

func (p *Parser) fail(msg string) *ParseError {
	return &ParseError{Msg: msg, Text: p.text}
}

func (p *Parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return p.fail(err.Error())
	}
	p.tok = t
	return nil
}

func (p *Parser) isKeyword(kw string) bool {
	return p.tok.Kind == TIdent && strings.EqualFold(p.tok.Text, kw)
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.fail(fmt.Sprintf("expected %s, got %q", kw, p.tok.Text))
	}
	return p.advance()
}

func (p *Parser) expectIdent() (string, error) {
	if p.tok.Kind != TIdent {
		return "", p.fail(fmt.Sprintf("expected identifier, got %q", p.tok.Text))
	}
	if isReserved(p.tok.Text) {
		return "", p.fail(fmt.Sprintf("%q is a reserved word and cannot be used as an identifier here", p.tok.Text))
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return "", err
	}
	return name, nil
}

func isReserved(s string) bool {
	switch strings.ToUpper(s) {
	case "SELECT", "UPDATE", "DELETE", "INSERT", "VALUES", "FROM", "INTO",
		"WHERE", "LIMIT", "OFFSET", "SET", "AND":
		return true
	}
	return false
}

// parseSelect: SELECT col_list FROM name [where] [limit]
func (p *Parser) parseSelect() (*Command, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	cmd := &Command{Kind: CmdSelect, Limit: DefaultLimit}

	if p.tok.Kind == TStar {
		cmd.SelectStar = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		cols, err := p.parseNameList()
		if err != nil {
			return nil, err
		}
		cmd.Columns = cols
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	cmd.Table = table

	if err := p.parseOptionalWhere(cmd); err != nil {
		return nil, err
	}
	if err := p.parseOptionalLimit(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// parseUpdate: UPDATE name SET set_list [where] [limit]
func (p *Parser) parseUpdate() (*Command, error) {
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	cmd := &Command{Kind: CmdUpdate, Table: table, Limit: DefaultLimit}

	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != TEq {
			return nil, p.fail(fmt.Sprintf("expected = after column %q in SET list", col))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		cmd.Assignments = append(cmd.Assignments, Assignment{Column: col, Value: lit})
		if len(cmd.Assignments) > MaxListLen {
			return nil, p.fail("too many columns in SET list")
		}
		if p.tok.Kind != TComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if err := p.parseOptionalWhere(cmd); err != nil {
		return nil, err
	}
	if err := p.parseOptionalLimit(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// parseInsert: INSERT INTO name ( col_list ) VALUES ( lit_list )
func (p *Parser) parseInsert() (*Command, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	cmd := &Command{Kind: CmdInsert, Table: table, Limit: DefaultLimit}

	if p.tok.Kind != TLParen {
		return nil, p.fail("expected ( after table name in INSERT")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cols, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	cmd.Columns = cols
	if p.tok.Kind != TRParen {
		return nil, p.fail("expected ) after column list in INSERT")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if p.tok.Kind != TLParen {
		return nil, p.fail("expected ( after VALUES")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		cmd.InsertValues = append(cmd.InsertValues, lit)
		if len(cmd.InsertValues) > MaxListLen {
			return nil, p.fail("too many values in INSERT")
		}
		if p.tok.Kind != TComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != TRParen {
		return nil, p.fail("expected ) after value list in INSERT")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if len(cmd.Columns) != len(cmd.InsertValues) {
		return nil, p.fail(fmt.Sprintf("INSERT column count (%d) does not match value count (%d)", len(cmd.Columns), len(cmd.InsertValues)))
	}
	return cmd, nil
}

// parseDelete: DELETE FROM name [where] [limit]
func (p *Parser) parseDelete() (*Command, error) {
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	cmd := &Command{Kind: CmdDelete, Table: table, Limit: DefaultLimit}

	if err := p.parseOptionalWhere(cmd); err != nil {
		return nil, err
	}
	if err := p.parseOptionalLimit(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// parseNameList: name {"," name}
func (p *Parser) parseNameList() ([]string, error) {
	var names []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if len(names) > MaxListLen {
			return nil, p.fail("too many columns in list")
		}
		if p.tok.Kind != TComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// parseOptionalWhere: [WHERE cond], cond := cond AND cond | name relop literal
// Parenthesized sub-conditions are accepted syntactically (grouping has no
// semantic effect since AND is the only connective and is associative).
func (p *Parser) parseOptionalWhere(cmd *Command) error {
	if !p.isKeyword("WHERE") {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	for {
		cond, err := p.parseCondTerm()
		if err != nil {
			return err
		}
		cmd.Where = append(cmd.Where, cond...)
		if !p.isKeyword("AND") {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseCondTerm parses either "( cond )" (recursing, since a parenthesized
// group is itself an AND-list) or a single "name relop literal" term.
func (p *Parser) parseCondTerm() ([]Cond, error) {
	if p.tok.Kind == TLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var conds []Cond
		for {
			c, err := p.parseCondTerm()
			if err != nil {
				return nil, err
			}
			conds = append(conds, c...)
			if !p.isKeyword("AND") {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.tok.Kind != TRParen {
			return nil, p.fail("expected ) to close WHERE group")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return conds, nil
	}

	col, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	op, err := p.parseRelOp()
	if err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return []Cond{{Column: col, Op: op, Value: lit}}, nil
}

func (p *Parser) parseRelOp() (RelOp, error) {
	var op RelOp
	switch p.tok.Kind {
	case TEq:
		op = OpEQ
	case TNe:
		op = OpNE
	case TGt:
		op = OpGT
	case TLt:
		op = OpLT
	case TGe:
		op = OpGE
	case TLe:
		op = OpLE
	default:
		return 0, p.fail(fmt.Sprintf("expected a relational operator, got %q", p.tok.Text))
	}
	return op, p.advance()
}

// parseOptionalLimit: [LIMIT integer [OFFSET integer]]
func (p *Parser) parseOptionalLimit(cmd *Command) error {
	if !p.isKeyword("LIMIT") {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.Kind != TInt {
		return p.fail("expected an integer after LIMIT")
	}
	n, err := strconv.Atoi(p.tok.Text)
	if err != nil {
		return p.fail("invalid LIMIT value")
	}
	cmd.Limit = n
	if err := p.advance(); err != nil {
		return err
	}

	if p.isKeyword("OFFSET") {
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.Kind != TInt {
			return p.fail("expected an integer after OFFSET")
		}
		n, err := strconv.Atoi(p.tok.Text)
		if err != nil {
			return p.fail("invalid OFFSET value")
		}
		cmd.Offset = n
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// parseLiteral: name | "string" | 'string' | integer | real
func (p *Parser) parseLiteral() (Literal, error) {
	switch p.tok.Kind {
	case TString:
		lit := Literal{Kind: LitString, Str: p.tok.Text}
		return lit, p.advance()
	case TInt:
		n, err := strconv.ParseInt(p.tok.Text, 10, 64)
		if err != nil {
			return Literal{}, p.fail(fmt.Sprintf("invalid integer literal %q", p.tok.Text))
		}
		lit := Literal{Kind: LitInt, Int: n}
		return lit, p.advance()
	case TFloat:
		f, err := strconv.ParseFloat(p.tok.Text, 64)
		if err != nil {
			return Literal{}, p.fail(fmt.Sprintf("invalid numeric literal %q", p.tok.Text))
		}
		lit := Literal{Kind: LitFloat, Float: f}
		return lit, p.advance()
	case TIdent:
		if isReserved(p.tok.Text) {
			return Literal{}, p.fail(fmt.Sprintf("%q is a reserved word and cannot be used as a literal here", p.tok.Text))
		}
		lit := Literal{Kind: LitName, Str: p.tok.Text}
		return lit, p.advance()
	default:
		return Literal{}, p.fail(fmt.Sprintf("expected a literal, got %q", p.tok.Text))
	}
}
