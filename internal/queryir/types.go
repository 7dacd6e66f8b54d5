package queryir

// Statement is a sealed interface for the four statement kinds.
type Statement interface {
	statementNode() // Marker method - seals interface to this package
}

// From is a sealed interface for FROM clause items.
type From interface {
	fromNode() // Marker method - seals interface to this package
}

// Expression is a sealed interface for WHERE and ON expressions.
type Expression interface {
	expressionNode() // Marker method - seals interface to this package
}

// Select represents
//
//	SELECT <columns> FROM <from> WHERE <where> LIMIT <limit>
//
// Nil From, Where and Limit are omitted. An empty Columns list selects *.
type Select struct {
	Columns []string
	From    From
	Where   Expression
	Limit   *int64
}

func (Select) statementNode() {}

// Insert represents INSERT INTO <table> (<columns>) VALUES (<values>).
// Values keep their order: the Nth column pairs with the Nth value.
type Insert struct {
	Table  string
	Values []Assignment
}

func (Insert) statementNode() {}

// Update represents UPDATE <table> SET <set> WHERE <where>.
type Update struct {
	Table string
	Set   []Assignment
	Where Expression
}

func (Update) statementNode() {}

// Delete represents DELETE FROM <table> WHERE <where>.
type Delete struct {
	Table string
	Where Expression
}

func (Delete) statementNode() {}

// Assignment pairs a column with a value. Value may be a string, an
// integer, a float64, a bool, nil, or an ast.Value.
type Assignment struct {
	Column string
	Value  any
}

// Set is shorthand for an Assignment.
func Set(column string, value any) Assignment {
	return Assignment{Column: column, Value: value}
}

// Table names a table, optionally qualified ("main.Artist").
type Table string

func (Table) fromNode() {}

// FromList is a comma-separated list of FROM items.
type FromList []From

func (FromList) fromNode() {}

// Subquery is ( <query> ) AS <alias>.
type Subquery struct {
	Alias string
	Query Select
}

func (Subquery) fromNode() {}

// JoinKind is the join keyword emitted between the two sides.
type JoinKind string

const (
	InnerJoin   JoinKind = "INNER JOIN"
	OuterJoin   JoinKind = "OUTER JOIN"
	CrossJoin   JoinKind = "CROSS JOIN"
	LeftJoin    JoinKind = "LEFT JOIN"
	RightJoin   JoinKind = "RIGHT JOIN"
	NaturalJoin JoinKind = "NATURAL JOIN"
)

// JoinKinds lists the recognised join keywords.
var JoinKinds = []JoinKind{InnerJoin, OuterJoin, CrossJoin, LeftJoin, RightJoin, NaturalJoin}

// Join is ( <left> <kind> <right> ON <on> ). On may be nil for CROSS and
// NATURAL joins.
type Join struct {
	Kind  JoinKind
	Left  From
	Right From
	On    Expression
}

func (Join) fromNode() {}

// BoolOp combines predicates.
type BoolOp string

const (
	OpAnd BoolOp = "AND"
	OpOr  BoolOp = "OR"
)

// Bool is a conjunction or disjunction. An empty AND is true and an empty
// OR is false.
type Bool struct {
	Op         BoolOp
	Predicates []Expression
}

func (Bool) expressionNode() {}

// AllOf is Bool{Op: OpAnd}.
func AllOf(preds ...Expression) Bool {
	return Bool{Op: OpAnd, Predicates: preds}
}

// AnyOf is Bool{Op: OpOr}.
func AnyOf(preds ...Expression) Bool {
	return Bool{Op: OpOr, Predicates: preds}
}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpLt CompareOp = "<"
	OpGt CompareOp = ">"
	OpLe CompareOp = "<="
	OpGe CompareOp = ">="
)

// Compare is ( <left> <op> <right> ).
type Compare struct {
	Op    CompareOp
	Left  Expression
	Right Expression
}

func (Compare) expressionNode() {}

// Eq builds left = right.
func Eq(left, right Expression) Compare { return Compare{Op: OpEq, Left: left, Right: right} }

// Lt builds left < right.
func Lt(left, right Expression) Compare { return Compare{Op: OpLt, Left: left, Right: right} }

// Gt builds left > right.
func Gt(left, right Expression) Compare { return Compare{Op: OpGt, Left: left, Right: right} }

// Le builds left <= right.
func Le(left, right Expression) Compare { return Compare{Op: OpLe, Left: left, Right: right} }

// Ge builds left >= right.
func Ge(left, right Expression) Compare { return Compare{Op: OpGe, Left: left, Right: right} }

// Ident is bare expression text: a column, a qualified column, a number
// or a keyword such as TRUE. It is sanitized but never quoted as a string.
type Ident string

func (Ident) expressionNode() {}

// Quoted is a string literal, rendered in single quotes.
type Quoted string

func (Quoted) expressionNode() {}

// Int is an integer literal.
type Int int64

func (Int) expressionNode() {}

// Limit returns a pointer for Select.Limit.
func Limit(n int64) *int64 {
	return &n
}
