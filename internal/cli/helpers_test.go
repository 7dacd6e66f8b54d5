package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// memFs returns an in-memory filesystem holding files.
func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func textOptions(fs afero.Fs) *RootOptions {
	return &RootOptions{Format: "text", Dialect: "ansi", Driver: "sqlite3", Fs: fs}
}

func jsonOptions(fs afero.Fs) *RootOptions {
	return &RootOptions{Format: "json", Dialect: "ansi", Driver: "sqlite3", Fs: fs}
}
