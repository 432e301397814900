package sqlparse

// Kind identifies which of the four supported statements a Command is.
type Kind int

const (
	CmdSelect Kind = iota
	CmdUpdate
	CmdInsert
	CmdDelete
)

// LitKind classifies a parsed literal's surface form.
type LitKind int

const (
	LitString LitKind = iota // quoted, either ' or "
	LitName                  // bare, unquoted identifier used as a literal
	LitInt
	LitFloat
)

// Literal is a parsed literal value together with enough of its surface
// form to type-check it against a column kind during verification.
type Literal struct {
	Kind  LitKind
	Str   string  // LitString, LitName
	Int   int64   // LitInt
	Float float64 // LitFloat
}

// RelOp is a WHERE term's relational operator.
type RelOp int

const (
	OpEQ RelOp = iota
	OpNE
	OpGT
	OpLT
	OpGE
	OpLE
)

func (op RelOp) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpNE:
		return "!="
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	case OpGE:
		return ">="
	case OpLE:
		return "<="
	default:
		return "?"
	}
}

// Assignment is one "column = literal" term of an UPDATE's SET list.
type Assignment struct {
	Column string
	Value  Literal
}

// Cond is one "column relop literal" term of a WHERE clause. The parser
// only ever produces AND-conjoined, left-to-right lists of these;
// parenthesized groups are flattened during parsing since AND is the
// dialect's only connective.
type Cond struct {
	Column string
	Op     RelOp
	Value  Literal
}

// DefaultLimit is the LIMIT value used when a statement has none.
// 2^30 rows is effectively unbounded.
const DefaultLimit = 1 << 30

// MaxListLen bounds the SELECT/INSERT column lists and UPDATE SET list of
// a single statement, matching the registry's global column ceiling.
const MaxListLen = 2500

// Command is the parsed form of one SQL statement.
type Command struct {
	Kind  Kind
	Table string

	// Columns holds the SELECT projection list or the INSERT column
	// list. A SELECT of "*" is represented as a nil Columns with
	// SelectStar set; expansion to the full column list happens during
	// executor verification, never inside the parser, so the parser
	// never touches table metadata.
	Columns    []string
	SelectStar bool

	Assignments  []Assignment // UPDATE SET list
	InsertValues []Literal    // INSERT VALUES list, parallel to Columns

	Where []Cond

	Limit  int
	Offset int

	// Text is the verbatim source text, echoed back on parse error and
	// passed through to callbacks.
	Text string
}
