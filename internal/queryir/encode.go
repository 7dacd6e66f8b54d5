package queryir

import (
	"fmt"

	"github.com/roach88/dict2sql/internal/ast"
)

// Encode converts a statement into the AST wire shape.
// Both value and pointer forms of each statement are accepted.
func Encode(stmt Statement) (ast.Value, error) {
	if stmt == nil {
		return nil, fmt.Errorf("cannot encode nil statement")
	}

	switch s := stmt.(type) {
	case Select:
		return encodeSelect(s)
	case *Select:
		return encodeSelect(*s)
	case Insert:
		return encodeInsert(s)
	case *Insert:
		return encodeInsert(*s)
	case Update:
		return encodeUpdate(s)
	case *Update:
		return encodeUpdate(*s)
	case Delete:
		return encodeDelete(s)
	case *Delete:
		return encodeDelete(*s)
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

func encodeSelect(s Select) (ast.Value, error) {
	m := ast.Map{ast.P("Select", encodeColumns(s.Columns))}

	if s.From != nil {
		from, err := encodeFrom(s.From)
		if err != nil {
			return nil, fmt.Errorf("encode from: %w", err)
		}
		m = append(m, ast.P("From", from))
	}
	if s.Where != nil {
		where, err := encodeExpression(s.Where)
		if err != nil {
			return nil, fmt.Errorf("encode where: %w", err)
		}
		m = append(m, ast.P("Where", where))
	}
	if s.Limit != nil {
		m = append(m, ast.P("Limit", ast.Int(*s.Limit)))
	}
	return m, nil
}

// encodeColumns emits a single column as a string and several as a list.
func encodeColumns(cols []string) ast.Value {
	switch len(cols) {
	case 0:
		return ast.String("*")
	case 1:
		return ast.String(cols[0])
	default:
		l := make(ast.List, len(cols))
		for i, col := range cols {
			l[i] = ast.String(col)
		}
		return l
	}
}

func encodeInsert(s Insert) (ast.Value, error) {
	data, err := encodeAssignments(s.Values)
	if err != nil {
		return nil, fmt.Errorf("encode insert: %w", err)
	}
	return ast.Map{
		ast.P("Insert", ast.Map{
			ast.P("Table", ast.String(s.Table)),
			ast.P("Data", data),
		}),
	}, nil
}

func encodeUpdate(s Update) (ast.Value, error) {
	data, err := encodeAssignments(s.Set)
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	m := ast.Map{
		ast.P("Update", ast.Map{
			ast.P("Table", ast.String(s.Table)),
			ast.P("Data", data),
		}),
	}
	return withWhere(m, s.Where)
}

func encodeDelete(s Delete) (ast.Value, error) {
	m := ast.Map{
		ast.P("Delete", ast.Map{ast.P("Table", ast.String(s.Table))}),
	}
	return withWhere(m, s.Where)
}

func withWhere(m ast.Map, where Expression) (ast.Value, error) {
	if where == nil {
		return m, nil
	}
	expr, err := encodeExpression(where)
	if err != nil {
		return nil, fmt.Errorf("encode where: %w", err)
	}
	return append(m, ast.P("Where", expr)), nil
}

func encodeAssignments(as []Assignment) (ast.Map, error) {
	data := make(ast.Map, 0, len(as))
	for _, a := range as {
		v, err := ast.FromGo(a.Value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", a.Column, err)
		}
		data = append(data, ast.P(a.Column, v))
	}
	return data, nil
}

func encodeFrom(f From) (ast.Value, error) {
	switch from := f.(type) {
	case Table:
		return ast.String(from), nil
	case FromList:
		l := make(ast.List, len(from))
		for i, item := range from {
			v, err := encodeFrom(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = v
		}
		return l, nil
	case Subquery:
		return encodeSubquery(from)
	case *Subquery:
		return encodeSubquery(*from)
	case Join:
		return encodeJoin(from)
	case *Join:
		return encodeJoin(*from)
	default:
		return nil, fmt.Errorf("unsupported from type: %T", f)
	}
}

func encodeSubquery(s Subquery) (ast.Value, error) {
	q, err := encodeSelect(s.Query)
	if err != nil {
		return nil, fmt.Errorf("subquery %s: %w", s.Alias, err)
	}
	return ast.Map{ast.P("Alias", ast.String(s.Alias)), ast.P("Query", q)}, nil
}

func encodeJoin(j Join) (ast.Value, error) {
	if j.Left == nil || j.Right == nil {
		return nil, fmt.Errorf("join %s needs both sides", j.Kind)
	}
	left, err := encodeFrom(j.Left)
	if err != nil {
		return nil, err
	}
	right, err := encodeFrom(j.Right)
	if err != nil {
		return nil, err
	}

	m := ast.Map{
		ast.P("Join", ast.String(j.Kind)),
		ast.P("Sx", left),
		ast.P("Dx", right),
	}
	if j.On != nil {
		on, err := encodeExpression(j.On)
		if err != nil {
			return nil, fmt.Errorf("encode on: %w", err)
		}
		m = append(m, ast.P("On", on))
	}
	return m, nil
}

func encodeExpression(e Expression) (ast.Value, error) {
	switch expr := e.(type) {
	case Bool:
		return encodeBool(expr)
	case *Bool:
		return encodeBool(*expr)
	case Compare:
		return encodeCompare(expr)
	case *Compare:
		return encodeCompare(*expr)
	case Ident:
		return ast.String(expr), nil
	case Quoted:
		return ast.Map{ast.P("Type", ast.String("Quoted")), ast.P("Expression", ast.String(expr))}, nil
	case Int:
		return ast.Int(int64(expr)), nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

func encodeBool(b Bool) (ast.Value, error) {
	preds := make(ast.List, len(b.Predicates))
	for i, p := range b.Predicates {
		v, err := encodeExpression(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", b.Op, i, err)
		}
		preds[i] = v
	}
	return ast.Map{ast.P("Op", ast.String(b.Op)), ast.P("Predicates", preds)}, nil
}

func encodeCompare(c Compare) (ast.Value, error) {
	if c.Left == nil || c.Right == nil {
		return nil, fmt.Errorf("comparison %s needs both sides", c.Op)
	}
	left, err := encodeExpression(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := encodeExpression(c.Right)
	if err != nil {
		return nil, err
	}
	return ast.Map{ast.P("Op", ast.String(c.Op)), ast.P("Sx", left), ast.P("Dx", right)}, nil
}
