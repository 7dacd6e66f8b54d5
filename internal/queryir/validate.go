package queryir

import (
	"fmt"
	"slices"
)

// ValidationResult lists constructs that compile but are probably not what
// the author meant.
type ValidationResult struct {
	// Clean is true when there are no warnings.
	Clean bool

	// Warnings describes each finding. Empty when Clean is true.
	Warnings []string
}

// Validate walks a statement and collects warnings:
//  1. Unknown join keywords, boolean or comparison operators
//  2. Select without columns or without From
//  3. Duplicate columns in Insert values or Update assignments
//  4. Update or Delete without Where (affects every row)
//  5. Subqueries without an alias
//
// Validate is a pure function with no side effects.
func Validate(stmt Statement) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateStatement(stmt)

	return ValidationResult{
		Clean:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateStatement(stmt Statement) {
	if stmt == nil {
		v.addWarning("nil statement")
		return
	}

	switch s := stmt.(type) {
	case Select:
		v.validateSelect(s)
	case *Select:
		v.validateSelect(*s)
	case Insert:
		v.validateAssignments("Insert", s.Table, s.Values)
	case *Insert:
		v.validateAssignments("Insert", s.Table, s.Values)
	case Update:
		v.validateUpdate(s)
	case *Update:
		v.validateUpdate(*s)
	case Delete:
		v.validateDelete(s)
	case *Delete:
		v.validateDelete(*s)
	default:
		v.addWarning("unknown statement type: %T", stmt)
	}
}

func (v *validator) validateSelect(s Select) {
	if len(s.Columns) == 0 {
		v.addWarning("empty column list compiles to SELECT *")
	}
	if s.From == nil {
		v.addWarning("Select without From")
	} else {
		v.validateFrom(s.From)
	}
	if s.Where != nil {
		v.validateExpression(s.Where)
	}
}

func (v *validator) validateUpdate(s Update) {
	v.validateAssignments("Update", s.Table, s.Set)
	if s.Where == nil {
		v.addWarning("Update of %s without Where affects every row", s.Table)
		return
	}
	v.validateExpression(s.Where)
}

func (v *validator) validateDelete(s Delete) {
	if s.Where == nil {
		v.addWarning("Delete from %s without Where affects every row", s.Table)
		return
	}
	v.validateExpression(s.Where)
}

func (v *validator) validateAssignments(kind, table string, as []Assignment) {
	seen := make(map[string]bool, len(as))
	for _, a := range as {
		if seen[a.Column] {
			v.addWarning("%s into %s assigns column %s twice", kind, table, a.Column)
		}
		seen[a.Column] = true
	}
}

func (v *validator) validateFrom(f From) {
	switch from := f.(type) {
	case Table:
	case FromList:
		for _, item := range from {
			v.validateFrom(item)
		}
	case Subquery:
		v.validateSubquery(from)
	case *Subquery:
		v.validateSubquery(*from)
	case Join:
		v.validateJoin(from)
	case *Join:
		v.validateJoin(*from)
	default:
		v.addWarning("unknown from type: %T", f)
	}
}

func (v *validator) validateSubquery(s Subquery) {
	if s.Alias == "" {
		v.addWarning("subquery without alias")
	}
	v.validateSelect(s.Query)
}

func (v *validator) validateJoin(j Join) {
	if !slices.Contains(JoinKinds, j.Kind) {
		v.addWarning("unknown join kind %q", j.Kind)
	}
	if j.Left != nil {
		v.validateFrom(j.Left)
	}
	if j.Right != nil {
		v.validateFrom(j.Right)
	}
	if j.On != nil {
		v.validateExpression(j.On)
	}
}

func (v *validator) validateExpression(e Expression) {
	switch expr := e.(type) {
	case Bool:
		v.validateBool(expr)
	case *Bool:
		v.validateBool(*expr)
	case Compare:
		v.validateCompare(expr)
	case *Compare:
		v.validateCompare(*expr)
	case Ident, Quoted, Int:
		// Literals are always valid
	default:
		v.addWarning("unknown expression type: %T", e)
	}
}

func (v *validator) validateBool(b Bool) {
	if b.Op != OpAnd && b.Op != OpOr {
		v.addWarning("unknown boolean operator %q", b.Op)
	}
	for _, p := range b.Predicates {
		v.validateExpression(p)
	}
}

func (v *validator) validateCompare(c Compare) {
	switch c.Op {
	case OpEq, OpLt, OpGt, OpLe, OpGe:
	default:
		v.addWarning("unknown comparison operator %q", c.Op)
	}
	if c.Left != nil {
		v.validateExpression(c.Left)
	}
	if c.Right != nil {
		v.validateExpression(c.Right)
	}
}
