package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClean(t *testing.T) {
	result := Validate(mountains())
	assert.True(t, result.Clean)
	assert.Empty(t, result.Warnings)

	result = Validate(&Delete{Table: "Artist", Where: Eq(Ident("Name"), Quoted("Y"))})
	assert.True(t, result.Clean)
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name string
		stmt Statement
		want string
	}{
		{"nil", nil, "nil statement"},
		{"select star", Select{From: Table("t")}, "SELECT *"},
		{"select without from", Select{Columns: []string{"1"}}, "without From"},
		{"unknown join", Select{Columns: []string{"a"}, From: Join{Kind: "FULL JOIN", Left: Table("a"), Right: Table("b")}}, `unknown join kind "FULL JOIN"`},
		{"unknown comparison", Select{Columns: []string{"a"}, From: Table("t"), Where: Compare{Op: "!=", Left: Ident("a"), Right: Int(1)}}, `unknown comparison operator "!="`},
		{"unknown boolean", Select{Columns: []string{"a"}, From: Table("t"), Where: Bool{Op: "XOR"}}, `unknown boolean operator "XOR"`},
		{"subquery alias", Select{Columns: []string{"a"}, From: Subquery{Query: Select{Columns: []string{"a"}, From: Table("t")}}}, "without alias"},
		{"duplicate insert column", Insert{Table: "t", Values: []Assignment{Set("a", 1), Set("a", 2)}}, "assigns column a twice"},
		{"update without where", &Update{Table: "t", Set: []Assignment{Set("a", 1)}}, "affects every row"},
		{"delete without where", Delete{Table: "t"}, "affects every row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.stmt)
			assert.False(t, result.Clean)
			if assert.NotEmpty(t, result.Warnings) {
				assert.Contains(t, result.Warnings[0], tt.want)
			}
		})
	}
}
