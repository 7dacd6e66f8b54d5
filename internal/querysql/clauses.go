package querysql

import (
	"strconv"
	"strings"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/ir"
)

var comma = ir.Atom(",")

// Select clause

func (c *Compiler) selectSingle(v ast.Value) (ir.Token, error) {
	return ir.Atom(c.dialect.Sanitize(string(v.(ast.String)))), nil
}

// selectList renders the column list as one atom so it reads "a,b,c".
func (c *Compiler) selectList(v ast.Value) (ir.Token, error) {
	l := v.(ast.List)
	cols := make([]string, len(l))
	for i, item := range l {
		cols[i] = c.dialect.Sanitize(string(item.(ast.String)))
	}
	return ir.Atom(strings.Join(cols, ",")), nil
}

// From clause

func (c *Compiler) fromSingle(v ast.Value) (ir.Token, error) {
	return ir.Atom(c.dialect.FormatName(string(v.(ast.String)))), nil
}

func (c *Compiler) fromList(v ast.Value) (ir.Token, error) {
	l := v.(ast.List)
	items := make([]ir.Token, len(l))
	for i, sub := range l {
		tok, err := c.from.Dispatch(sub)
		if err != nil {
			return nil, err
		}
		items[i] = tok
	}
	return ir.Interpose(comma, items), nil
}

func (c *Compiler) fromSubQuery(v ast.Value) (ir.Token, error) {
	m := v.(ast.Map)

	alias, ok := m.Get(keyAlias)
	aliasText, isText := alias.(ast.String)
	if !ok || !isText || aliasText == "" {
		return nil, missingField(keyFrom, "From.Alias", "must be a non-empty string")
	}
	query, ok := m.Get(keyQuery)
	if !ok {
		return nil, missingField(keyFrom, "From.Query", "is required with Alias")
	}

	sub, err := c.subquery.Dispatch(query)
	if err != nil {
		return nil, err
	}
	return ir.Of(format.Parenthesize(sub), ir.Atom("AS"), ir.Atom(c.dialect.Sanitize(string(aliasText)))), nil
}

// fromJoin renders ( <Sx> <JOIN> <Dx> ON <On> ). On may be omitted for
// joins that take no condition (CROSS JOIN, NATURAL JOIN).
func (c *Compiler) fromJoin(v ast.Value) (ir.Token, error) {
	m := v.(ast.Map)

	join, _ := m.Get(keyJoin)
	joinText, ok := join.(ast.String)
	if !ok || joinText == "" {
		return nil, missingField(keyFrom, "From.Join", "must be a join keyword such as INNER JOIN")
	}

	sx, ok := m.Get(keySx)
	if !ok {
		return nil, missingField(keyFrom, "From.Sx", "is required in a join")
	}
	dx, ok := m.Get(keyDx)
	if !ok {
		return nil, missingField(keyFrom, "From.Dx", "is required in a join")
	}

	left, err := c.from.Dispatch(sx)
	if err != nil {
		return nil, err
	}
	right, err := c.from.Dispatch(dx)
	if err != nil {
		return nil, err
	}

	on := ir.Empty
	if expr, ok := m.Get(keyOn); ok {
		cond, err := c.where.Dispatch(expr)
		if err != nil {
			return nil, err
		}
		on = ir.Of(ir.Atom("ON"), cond)
	}

	return format.Parenthesize(left, ir.Atom(c.dialect.Sanitize(string(joinText))), right, on), nil
}

// Where clause

// expressionBoolean interposes the operator between the predicates. An
// empty AND is vacuously true and an empty OR is false.
func (c *Compiler) expressionBoolean(v ast.Value) (ir.Token, error) {
	m := v.(ast.Map)
	op, _ := m.Get(keyOp)
	opText := string(op.(ast.String))

	raw, ok := m.Get(keyPredicates)
	preds, isList := raw.(ast.List)
	if !ok || !isList {
		return nil, missingField(keyWhere, "Where.Predicates", "must be a list of expressions")
	}

	if len(preds) == 0 {
		if opText == "AND" {
			return format.Parenthesize(ir.Atom("1"), ir.Atom("="), ir.Atom("1")), nil
		}
		return format.Parenthesize(ir.Atom("1"), ir.Atom("="), ir.Atom("0")), nil
	}

	items := make([]ir.Token, len(preds))
	for i, p := range preds {
		tok, err := c.where.Dispatch(p)
		if err != nil {
			return nil, err
		}
		items[i] = tok
	}
	return format.Parenthesize(ir.Interpose(ir.Atom(c.dialect.Sanitize(opText)), items)), nil
}

func (c *Compiler) expressionSxDx(v ast.Value) (ir.Token, error) {
	m := v.(ast.Map)
	op, _ := m.Get(keyOp)

	sx, ok := m.Get(keySx)
	if !ok {
		return nil, missingField(keyWhere, "Where.Sx", "is required in a comparison")
	}
	dx, ok := m.Get(keyDx)
	if !ok {
		return nil, missingField(keyWhere, "Where.Dx", "is required in a comparison")
	}

	left, err := c.where.Dispatch(sx)
	if err != nil {
		return nil, err
	}
	right, err := c.where.Dispatch(dx)
	if err != nil {
		return nil, err
	}
	return format.Parenthesize(left, ir.Atom(c.dialect.Sanitize(string(op.(ast.String)))), right), nil
}

func (c *Compiler) expressionLiteral(v ast.Value) (ir.Token, error) {
	return c.literal.Dispatch(v)
}

func (c *Compiler) literalQuoted(v ast.Value) (ir.Token, error) {
	expr, ok := v.(ast.Map).Get(keyExpression)
	if !ok {
		return nil, missingField(keyWhere, "Where.Expression", "is required in a quoted literal")
	}
	text, ok := ast.ScalarText(expr)
	if !ok {
		return nil, missingField(keyWhere, "Where.Expression", "must be a string, number or boolean")
	}
	return ir.Atom(c.dialect.QuoteLiteral(text)), nil
}

// literalSimple renders bare text. Identifier paths are quoted by the
// dialect; numbers and keywords pass through sanitized.
func (c *Compiler) literalSimple(v ast.Value) (ir.Token, error) {
	if isNull(v) {
		return ir.Atom("NULL"), nil
	}
	text, _ := ast.ScalarText(v)
	return ir.Atom(c.dialect.FormatBare(text)), nil
}

// Limit clause

func (c *Compiler) limitInteger(v ast.Value) (ir.Token, error) {
	n, _ := v.(ast.Number).Int64()
	return ir.Atom(c.dialect.Sanitize(strconv.FormatInt(n, 10))), nil
}

// Values of Insert and Update

func (c *Compiler) valueNull(ast.Value) (ir.Token, error) {
	return ir.Atom("NULL"), nil
}

func (c *Compiler) valueScalar(v ast.Value) (ir.Token, error) {
	text, _ := ast.ScalarText(v)
	return ir.Atom(c.dialect.QuoteLiteral(text)), nil
}
