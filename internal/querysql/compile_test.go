package querysql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/dispatch"
	"github.com/roach88/dict2sql/internal/format"
)

func mustJSON(t *testing.T, src string) ast.Value {
	t.Helper()
	v, err := ast.DecodeJSON([]byte(src))
	require.NoError(t, err)
	return v
}

const (
	selectStarJSON = `{"Select": "*", "From": "Customer", "Limit": 1}`

	joinJSON = `{
		"Select": ["Title", "Artist.Name"],
		"From": {"Join": "INNER JOIN", "Sx": "Album", "Dx": "Artist",
		         "On": {"Op": "=", "Sx": "Artist.ArtistId", "Dx": "Album.ArtistId"}},
		"Where": {"Op": "=", "Sx": "Artist.Name", "Dx": {"Type": "Quoted", "Expression": "AC/DC"}}
	}`

	insertJSON = `{"Insert": {"Table": "Artist", "Data": {"Name": "Weird Al Yancovic"}}}`

	updateJSON = `{"Update": {"Table": "Artist", "Data": {"Name": "X"}},
		"Where": {"Op": "=", "Sx": "Name", "Dx": {"Type": "Quoted", "Expression": "Y"}}}`

	deleteJSON = `{"Delete": {"Table": "Artist"},
		"Where": {"Op": "=", "Sx": "Name", "Dx": {"Type": "Quoted", "Expression": "Y"}}}`

	demoJSON = `{
		"Select": ["name", "height", "country"],
		"From": [{"Join": "INNER JOIN", "Sx": "mountains", "Dx": "castles",
		          "On": {"Op": "=", "Sx": "mountains.province", "Dx": "castle.province"}}],
		"Where": {"Op": "AND", "Predicates": [
			{"Op": ">=", "Sx": "height", "Dx": "3000"},
			{"Op": "=", "Sx": "has_glacier", "Dx": "true"}
		]},
		"Limit": 3
	}`
)

func TestCompileGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	c := New()

	tests := []struct {
		name string
		src  string
	}{
		{"select_star_limit", selectStarJSON},
		{"join_where_quoted", joinJSON},
		{"insert_single", insertJSON},
		{"update_single", updateJSON},
		{"delete_where", deleteJSON},
		{"demo_mountains", demoJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := c.Compile(mustJSON(t, tt.src))
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(sql+"\n"))
		})
	}
}

func TestCompile(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "select list without from",
			src:  `{"Select": ["a", "b"]}`,
			want: `SELECT a,b`,
		},
		{
			name: "from list",
			src:  `{"Select": "*", "From": ["Album", "Artist"]}`,
			want: `SELECT * FROM "Album" , "Artist"`,
		},
		{
			name: "subquery",
			src:  `{"Select": "*", "From": {"Alias": "a", "Query": {"Select": "Name", "From": "Artist"}}}`,
			want: `SELECT * FROM ( SELECT Name FROM "Artist" ) AS a`,
		},
		{
			name: "join without on",
			src:  `{"Select": "*", "From": {"Join": "CROSS JOIN", "Sx": "a", "Dx": "b"}}`,
			want: `SELECT * FROM ( "a" CROSS JOIN "b" )`,
		},
		{
			name: "nested join",
			src: `{"Select": "*", "From": {"Join": "LEFT JOIN",
				"Sx": {"Join": "INNER JOIN", "Sx": "a", "Dx": "b", "On": {"Op": "=", "Sx": "a.id", "Dx": "b.id"}},
				"Dx": "c", "On": {"Op": "=", "Sx": "b.id", "Dx": "c.id"}}}`,
			want: `SELECT * FROM ( ( "a" INNER JOIN "b" ON ( "a"."id" = "b"."id" ) ) LEFT JOIN "c" ON ( "b"."id" = "c"."id" ) )`,
		},
		{
			name: "limit zero is kept",
			src:  `{"Select": "*", "From": "t", "Limit": 0}`,
			want: `SELECT * FROM "t" LIMIT 0`,
		},
		{
			name: "literal zero is kept",
			src:  `{"Select": "*", "From": "t", "Where": {"Op": "=", "Sx": "n", "Dx": 0}}`,
			want: `SELECT * FROM "t" WHERE ( "n" = 0 )`,
		},
		{
			name: "null and boolean literals",
			src:  `{"Select": "*", "From": "t", "Where": {"Op": "OR", "Predicates": [{"Op": "=", "Sx": "a", "Dx": null}, {"Op": "=", "Sx": "b", "Dx": false}]}}`,
			want: `SELECT * FROM "t" WHERE ( ( "a" = NULL ) OR ( "b" = false ) )`,
		},
		{
			name: "quoted number",
			src:  `{"Select": "*", "From": "t", "Where": {"Op": "<", "Sx": "n", "Dx": {"Type": "Quoted", "Expression": 10}}}`,
			want: `SELECT * FROM "t" WHERE ( "n" < '10' )`,
		},
		{
			name: "empty and is true",
			src:  `{"Select": "*", "From": "t", "Where": {"Op": "AND", "Predicates": []}}`,
			want: `SELECT * FROM "t" WHERE ( 1 = 1 )`,
		},
		{
			name: "empty or is false",
			src:  `{"Select": "*", "From": "t", "Where": {"Op": "OR", "Predicates": []}}`,
			want: `SELECT * FROM "t" WHERE ( 1 = 0 )`,
		},
		{
			name: "quotes are escaped",
			src:  `{"Select": "*", "From": "t", "Where": {"Op": "=", "Sx": "name", "Dx": {"Type": "Quoted", "Expression": "O'Brien \"Jr\""}}}`,
			want: `SELECT * FROM "t" WHERE ( "name" = 'O''Brien Jr' )`,
		},
		{
			name: "multi column insert keeps order",
			src:  `{"Insert": {"Table": "Artist", "Data": {"Name": "O'Neil", "ArtistId": 300, "Bio": null}}}`,
			want: `INSERT INTO Artist ( "Name" , "ArtistId" , "Bio" ) VALUES ( 'O''Neil' , '300' , NULL )`,
		},
		{
			name: "multi column update is comma separated",
			src:  `{"Update": {"Table": "Artist", "Data": {"Name": "A", "Rating": 4.5}}, "Where": {"Op": "=", "Sx": "ArtistId", "Dx": 7}}`,
			want: `UPDATE Artist SET "Name" = 'A' , "Rating" = '4.5' WHERE ( "ArtistId" = 7 )`,
		},
		{
			name: "update without where",
			src:  `{"Update": {"Table": "Artist", "Data": {"Name": "A"}}}`,
			want: `UPDATE Artist SET "Name" = 'A'`,
		},
		{
			name: "delete without where",
			src:  `{"Delete": {"Table": "Artist"}}`,
			want: `DELETE FROM Artist`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := c.Compile(mustJSON(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCompileMySQLDialect(t *testing.T) {
	c := New(WithDialect(format.MySQL))

	sql, err := c.Compile(mustJSON(t, joinJSON))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT Title,Artist.Name FROM ( `Album` INNER JOIN `Artist` ON ( `Artist`.`ArtistId` = `Album`.`ArtistId` ) ) WHERE ( `Artist`.`Name` = 'AC/DC' )",
		sql,
	)

	sql, err = c.Compile(mustJSON(t, insertJSON))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Artist ( `Name` ) VALUES ( 'Weird Al Yancovic' )", sql)
	assert.Equal(t, "mysql", c.Dialect().Name())
}

func TestCompileNoMatchingAlternative(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		src  string
		rule string
	}{
		{"unknown statement", `{"Merge": {}}`, "Statement"},
		{"statement is not a map", `["Select"]`, "Statement"},
		{"negative limit", `{"Select": "*", "Limit": -1}`, "LimitClause"},
		{"fractional limit", `{"Select": "*", "Limit": 1.5}`, "LimitClause"},
		{"string limit", `{"Select": "*", "Limit": "3"}`, "LimitClause"},
		{"select of numbers", `{"Select": [1, 2]}`, "SelectClause"},
		{"empty select list", `{"Select": []}`, "SelectClause"},
		{"from number", `{"Select": "*", "From": 3}`, "FromClause"},
		{"subquery without select", `{"Select": "*", "From": {"Alias": "a", "Query": {"From": "t"}}}`, "SubQuery"},
		{"where map of unknown shape", `{"Select": "*", "Where": {"Foo": "bar"}}`, "ExpressionLiteral"},
		{"where list", `{"Select": "*", "Where": ["a"]}`, "ExpressionLiteral"},
		{"insert list value", `{"Insert": {"Table": "t", "Data": {"a": [1]}}}`, "Value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := c.Compile(mustJSON(t, tt.src))
			require.Error(t, err)
			assert.Empty(t, sql)
			assert.True(t, dispatch.IsNoMatch(err), "got %v", err)

			var ne *dispatch.NoMatchError
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, tt.rule, ne.Rule)
		})
	}
}

func TestCompileMissingField(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"insert not a map", `{"Insert": "Artist"}`, "Insert"},
		{"insert without table", `{"Insert": {"Data": {"a": 1}}}`, "Insert.Table"},
		{"insert without data", `{"Insert": {"Table": "t"}}`, "Insert.Data"},
		{"insert empty data", `{"Insert": {"Table": "t", "Data": {}}}`, "Insert.Data"},
		{"insert data list", `{"Insert": {"Table": "t", "Data": ["a"]}}`, "Insert.Data"},
		{"update table number", `{"Update": {"Table": 1, "Data": {"a": 1}}}`, "Update.Table"},
		{"delete without table", `{"Delete": {}}`, "Delete.Table"},
		{"delete not a map", `{"Delete": null}`, "Delete"},
		{"comparison without dx", `{"Select": "*", "Where": {"Op": "=", "Sx": "a"}}`, "Where.Dx"},
		{"boolean without predicates", `{"Select": "*", "Where": {"Op": "AND"}}`, "Where.Predicates"},
		{"quoted without expression", `{"Select": "*", "Where": {"Type": "Quoted"}}`, "Where.Expression"},
		{"subquery without query", `{"Select": "*", "From": {"Alias": "a"}}`, "From.Query"},
		{"join without dx", `{"Select": "*", "From": {"Join": "INNER JOIN", "Sx": "a"}}`, "From.Dx"},
		{"join keyword not a string", `{"Select": "*", "From": {"Join": 1, "Sx": "a", "Dx": "b"}}`, "From.Join"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := c.Compile(mustJSON(t, tt.src))
			require.Error(t, err)
			assert.Empty(t, sql)
			assert.True(t, IsMissingField(err), "got %v", err)

			var me *MissingFieldError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.field, me.Field)
		})
	}
}

func TestCompileNil(t *testing.T) {
	_, err := New().Compile(nil)
	assert.Error(t, err)
}

func TestCompileIsDeterministic(t *testing.T) {
	c := New()
	v := mustJSON(t, demoJSON)

	first, err := c.Compile(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Compile(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClauseElision(t *testing.T) {
	c := New()

	sql, err := c.Compile(mustJSON(t, `{"Select": "*", "From": "t"}`))
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "LIMIT")
	assert.Equal(t, `SELECT * FROM "t"`, sql)
}

func TestDebugModeDoesNotChangeFlatOutput(t *testing.T) {
	plain := New()
	debug := New(WithDebug(true))
	assert.True(t, debug.Debug())

	for _, src := range []string{selectStarJSON, joinJSON, insertJSON, updateJSON, deleteJSON, demoJSON} {
		v := mustJSON(t, src)

		want, err := plain.Compile(v)
		require.NoError(t, err)

		tok, err := debug.CompileIR(v)
		require.NoError(t, err)
		got, err := format.RenderFlat(tok)
		require.NoError(t, err)

		assert.Equal(t, want, got)
	}
}

func TestDebugOutputNamesAlternatives(t *testing.T) {
	c := New(WithDebug(true))

	out, err := c.Compile(mustJSON(t, selectStarJSON))
	require.NoError(t, err)

	var tree any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	assert.Equal(t, map[string]any{
		"SelectStatement": []any{
			[]any{"SELECT", map[string]any{"SelectClauseSingle": "*"}},
			[]any{"FROM", map[string]any{"FromClauseSingle": `"Customer"`}},
			[]any{"LIMIT", map[string]any{"LimitClauseInteger": "1"}},
		},
	}, tree)
}

func TestWhereComparisonNeverFallsToLiteral(t *testing.T) {
	c := New(WithDebug(true))

	out, err := c.Compile(mustJSON(t, `{"Select": "*", "Where": {"Op": "=", "Sx": "a", "Dx": "b"}}`))
	require.NoError(t, err)
	assert.Contains(t, out, "ExpressionSxDx")
	assert.Contains(t, out, "ExpressionLiteralSimple")

	// The literal catch-all only sees the operands, never the comparison.
	tok, err := c.where.Dispatch(mustJSON(t, `{"Op": "<=", "Sx": "a", "Dx": "b"}`))
	require.NoError(t, err)
	out, err = format.RenderDebug(tok)
	require.NoError(t, err)
	assert.Contains(t, out, "ExpressionSxDx:")
}

func TestCompileAll(t *testing.T) {
	c := New()
	stmts := []ast.Value{
		mustJSON(t, selectStarJSON),
		mustJSON(t, insertJSON),
		mustJSON(t, deleteJSON),
	}

	out, err := c.CompileAll(context.Background(), stmts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`SELECT * FROM "Customer" LIMIT 1`,
		`INSERT INTO Artist ( "Name" ) VALUES ( 'Weird Al Yancovic' )`,
		`DELETE FROM Artist WHERE ( "Name" = 'Y' )`,
	}, out)
}

func TestCompileAllFails(t *testing.T) {
	c := New()
	stmts := []ast.Value{
		mustJSON(t, selectStarJSON),
		mustJSON(t, `{"Merge": {}}`),
	}

	out, err := c.CompileAll(context.Background(), stmts)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, dispatch.IsNoMatch(err))
	assert.Contains(t, err.Error(), "statement 1")

	var se *StatementError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
}

func TestCompileAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().CompileAll(ctx, []ast.Value{mustJSON(t, selectStarJSON)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompileLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(WithLogger(logger)).Compile(mustJSON(t, insertJSON))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "compiled statement")
	assert.Contains(t, buf.String(), "kind=Insert")
	assert.Contains(t, buf.String(), "fingerprint=")
}

func TestCompileQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := New(WithLogger(logger)).Compile(mustJSON(t, insertJSON))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
