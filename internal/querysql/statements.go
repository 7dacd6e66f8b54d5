package querysql

import (
	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/dispatch"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/ir"
)

// selectStatement emits the clauses in fixed order; absent ones are Empty.
func (c *Compiler) selectStatement(v ast.Value) (ir.Token, error) {
	clauses := make(ir.Seq, 0, 4)
	for _, rule := range []*dispatch.Rule{c.selectClause, c.from, c.where, c.limit} {
		tok, err := rule.ApplyIfKey(v)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, tok)
	}
	return clauses, nil
}

func (c *Compiler) insertStatement(v ast.Value) (ir.Token, error) {
	table, pairs, err := c.valueClause(v.(ast.Map), keyInsert)
	if err != nil {
		return nil, err
	}

	cols := make([]ir.Token, len(pairs))
	vals := make([]ir.Token, len(pairs))
	for i, p := range pairs {
		cols[i] = ir.Atom(c.dialect.QuoteIdentifier(p.Key))
		val, err := c.value.Dispatch(p.Value)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}

	return ir.Of(
		ir.Atom("INSERT INTO"),
		ir.Atom(c.dialect.Sanitize(table)),
		format.Parenthesize(ir.Interpose(comma, cols)),
		ir.Atom("VALUES"),
		format.Parenthesize(ir.Interpose(comma, vals)),
	), nil
}

func (c *Compiler) updateStatement(v ast.Value) (ir.Token, error) {
	m := v.(ast.Map)
	table, pairs, err := c.valueClause(m, keyUpdate)
	if err != nil {
		return nil, err
	}

	assignments := make([]ir.Token, len(pairs))
	for i, p := range pairs {
		val, err := c.value.Dispatch(p.Value)
		if err != nil {
			return nil, err
		}
		assignments[i] = ir.Of(ir.Atom(c.dialect.QuoteIdentifier(p.Key)), ir.Atom("="), val)
	}

	where, err := c.where.ApplyIfKey(m)
	if err != nil {
		return nil, err
	}

	return ir.Of(
		ir.Atom("UPDATE"),
		ir.Atom(c.dialect.Sanitize(table)),
		ir.Atom("SET"),
		ir.Interpose(comma, assignments),
		where,
	), nil
}

func (c *Compiler) deleteStatement(v ast.Value) (ir.Token, error) {
	m := v.(ast.Map)
	raw, _ := m.Get(keyDelete)
	inner, ok := raw.(ast.Map)
	if !ok {
		return nil, missingField(keyDelete, keyDelete, "must be a map with a Table")
	}
	table, err := requireTable(inner, keyDelete)
	if err != nil {
		return nil, err
	}

	where, err := c.where.ApplyIfKey(m)
	if err != nil {
		return nil, err
	}

	return ir.Of(ir.Atom("DELETE FROM"), ir.Atom(c.dialect.Sanitize(table)), where), nil
}

// valueClause reads {Table, Data} under key. Data is materialized once as
// an ordered pair list; callers derive both columns and values from it so
// the two can never disagree on order.
func (c *Compiler) valueClause(m ast.Map, key string) (string, []ast.Pair, error) {
	raw, _ := m.Get(key)
	inner, ok := raw.(ast.Map)
	if !ok {
		return "", nil, missingField(key, key, "must be a map with Table and Data")
	}

	table, err := requireTable(inner, key)
	if err != nil {
		return "", nil, err
	}

	rawData, ok := inner.Get(keyData)
	if !ok {
		return "", nil, missingField(key, key+".Data", "is required")
	}
	data, ok := rawData.(ast.Map)
	if !ok || data.Len() == 0 {
		return "", nil, missingField(key, key+".Data", "must be a non-empty map of column to value")
	}
	return table, data.Pairs(), nil
}

func requireTable(inner ast.Map, key string) (string, error) {
	raw, ok := inner.Get(keyTable)
	if !ok {
		return "", missingField(key, key+".Table", "is required")
	}
	table, ok := raw.(ast.String)
	if !ok || table == "" {
		return "", missingField(key, key+".Table", "must be a non-empty string")
	}
	return string(table), nil
}
