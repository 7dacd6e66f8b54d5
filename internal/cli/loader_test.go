package cli

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dict2sql/internal/ast"
)

func TestLoadQueriesDirectory(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/q/b.yaml":    "- {Select: '*', From: Artist}\n- {Delete: {Table: Album}}\n",
		"/q/a.json":    `{"Select": "Name", "From": "Artist"}`,
		"/q/notes.txt": "ignored",
		"/q/sub/c.yml": "Select: Title\nFrom: Album\n",
	})

	docs, err := LoadQueries(fs, []string{"/q"})
	require.NoError(t, err)
	require.Len(t, docs, 4)

	assert.Equal(t, "/q/a.json", docs[0].File)
	assert.Equal(t, 0, docs[0].Index)
	assert.Equal(t, "/q/b.yaml", docs[1].File)
	assert.Equal(t, 0, docs[1].Index)
	assert.Equal(t, "/q/b.yaml", docs[2].File)
	assert.Equal(t, 1, docs[2].Index)
	assert.Equal(t, "/q/sub/c.yml", docs[3].File)

	m, ok := docs[2].Value.(ast.Map)
	require.True(t, ok)
	assert.True(t, m.Has("Delete"))
}

func TestLoadQueriesKeepsArgumentOrder(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/z.json": `{"Select": "a"}`,
		"/a.json": `{"Select": "b"}`,
	})

	docs, err := LoadQueries(fs, []string{"/z.json", "/a.json"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "/z.json", docs[0].File)
	assert.Equal(t, "/a.json", docs[1].File)
}

func TestLoadQueryFileMsgpack(t *testing.T) {
	v := ast.Map{ast.P("Select", ast.String("*")), ast.P("From", ast.String("Artist"))}
	data, err := ast.EncodeMsgpack(v)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/q.msgpack", data, 0644))

	values, err := LoadQueryFile(fs, "/q.msgpack")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, ast.Value(v), values[0])
}

func TestLoadQueriesErrors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/q/bad.json":  `{"Select": `,
		"/q/query.sql": "SELECT 1",
		"/empty/x.txt": "",
	})

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing path", "/nope", ErrCodeNotFound},
		{"undecodable", "/q/bad.json", ErrCodeDecodeFailed},
		{"unsupported extension", "/q/query.sql", ErrCodeUnsupported},
		{"no query files", "/empty", ErrCodeNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadQueries(fs, []string{tt.path})
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}
