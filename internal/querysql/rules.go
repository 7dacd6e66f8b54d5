package querysql

import (
	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/dispatch"
)

// AST keys. They are case-sensitive.
const (
	keySelect     = "Select"
	keyFrom       = "From"
	keyWhere      = "Where"
	keyLimit      = "Limit"
	keyJoin       = "Join"
	keySx         = "Sx"
	keyDx         = "Dx"
	keyOn         = "On"
	keyAlias      = "Alias"
	keyQuery      = "Query"
	keyInsert     = "Insert"
	keyUpdate     = "Update"
	keyDelete     = "Delete"
	keyTable      = "Table"
	keyData       = "Data"
	keyType       = "Type"
	keyExpression = "Expression"
	keyOp         = "Op"
	keyPredicates = "Predicates"
)

// Operators recognised by the Where alternatives.
var (
	booleanOps    = map[string]bool{"AND": true, "OR": true}
	comparisonOps = map[string]bool{"=": true, "<": true, ">": true, "<=": true, ">=": true}
)

// buildRules wires the rule tables. Rules refer to each other through c,
// which is how From and Where recurse.
func (c *Compiler) buildRules(debug bool) {
	selectStatement := dispatch.Alternative{
		Name:      "SelectStatement",
		Match:     hasKey(keySelect),
		Transform: c.selectStatement,
	}

	c.statement = dispatch.MustRule(dispatch.Spec{
		Name: "Statement",
		Alternatives: []dispatch.Alternative{
			selectStatement,
			{Name: "InsertStatement", Match: hasKey(keyInsert), Transform: c.insertStatement},
			{Name: "UpdateStatement", Match: hasKey(keyUpdate), Transform: c.updateStatement},
			{Name: "DeleteStatement", Match: hasKey(keyDelete), Transform: c.deleteStatement},
		},
	}, debug)

	c.subquery = dispatch.MustRule(dispatch.Spec{
		Name:         "SubQuery",
		Alternatives: []dispatch.Alternative{selectStatement},
	}, debug)

	c.selectClause = dispatch.MustRule(dispatch.Spec{
		Name: "SelectClause",
		Key:  keySelect,
		Wrap: "SELECT",
		Alternatives: []dispatch.Alternative{
			{Name: "SelectClauseSingle", Match: isString, Transform: c.selectSingle},
			{Name: "SelectClauseList", Match: isStringList, Transform: c.selectList},
		},
	}, debug)

	c.from = dispatch.MustRule(dispatch.Spec{
		Name: "FromClause",
		Key:  keyFrom,
		Wrap: "FROM",
		Alternatives: []dispatch.Alternative{
			{Name: "FromClauseSingle", Match: isString, Transform: c.fromSingle},
			{Name: "FromClauseList", Match: isNonEmptyList, Transform: c.fromList},
			{Name: "FromClauseSubQuery", Match: hasKey(keyAlias), Transform: c.fromSubQuery},
			{Name: "FromClauseJoin", Match: hasKey(keyJoin), Transform: c.fromJoin},
		},
	}, debug)

	// ExpressionLiteral must stay last: it accepts anything.
	c.where = dispatch.MustRule(dispatch.Spec{
		Name: "WhereClause",
		Key:  keyWhere,
		Wrap: "WHERE",
		Alternatives: []dispatch.Alternative{
			{Name: "ExpressionBoolean", Match: hasOp(booleanOps), Transform: c.expressionBoolean},
			{Name: "ExpressionSxDx", Match: hasOp(comparisonOps), Transform: c.expressionSxDx},
			{Name: "ExpressionLiteral", CatchAll: true, Transform: c.expressionLiteral},
		},
	}, debug)

	c.literal = dispatch.MustRule(dispatch.Spec{
		Name: "ExpressionLiteral",
		Alternatives: []dispatch.Alternative{
			{Name: "ExpressionLiteralQuoted", Match: isQuoted, Transform: c.literalQuoted},
			{Name: "ExpressionLiteralSimple", Match: isScalar, Transform: c.literalSimple},
		},
	}, debug)

	c.limit = dispatch.MustRule(dispatch.Spec{
		Name: "LimitClause",
		Key:  keyLimit,
		Wrap: "LIMIT",
		Alternatives: []dispatch.Alternative{
			{Name: "LimitClauseInteger", Match: isNonNegativeInt, Transform: c.limitInteger},
		},
	}, debug)

	c.value = dispatch.MustRule(dispatch.Spec{
		Name: "Value",
		Alternatives: []dispatch.Alternative{
			{Name: "ValueNull", Match: isNull, Transform: c.valueNull},
			{Name: "ValueScalar", Match: isScalar, Transform: c.valueScalar},
		},
	}, debug)
}

// Matchers

func hasKey(key string) dispatch.Matcher {
	return func(v ast.Value) bool {
		m, ok := v.(ast.Map)
		return ok && m.Has(key)
	}
}

func hasOp(ops map[string]bool) dispatch.Matcher {
	return func(v ast.Value) bool {
		m, ok := v.(ast.Map)
		if !ok {
			return false
		}
		op, ok := m.Get(keyOp)
		if !ok {
			return false
		}
		s, ok := op.(ast.String)
		return ok && ops[string(s)]
	}
}

func isString(v ast.Value) bool {
	_, ok := v.(ast.String)
	return ok
}

func isNull(v ast.Value) bool {
	_, ok := v.(ast.Null)
	return ok
}

func isNonEmptyList(v ast.Value) bool {
	l, ok := v.(ast.List)
	return ok && len(l) > 0
}

func isStringList(v ast.Value) bool {
	l, ok := v.(ast.List)
	if !ok || len(l) == 0 {
		return false
	}
	for _, item := range l {
		if !isString(item) {
			return false
		}
	}
	return true
}

func isScalar(v ast.Value) bool {
	switch v.(type) {
	case ast.String, ast.Number, ast.Bool, ast.Null:
		return true
	default:
		return false
	}
}

func isQuoted(v ast.Value) bool {
	m, ok := v.(ast.Map)
	if !ok {
		return false
	}
	typ, ok := m.Get(keyType)
	return ok && typ == ast.String("Quoted")
}

func isNonNegativeInt(v ast.Value) bool {
	n, ok := v.(ast.Number)
	if !ok {
		return false
	}
	i, ok := n.Int64()
	return ok && i >= 0
}
