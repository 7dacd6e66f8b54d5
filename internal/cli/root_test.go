package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dict2sql", cmd.Use)
	assert.Contains(t, cmd.Long, "DICT2SQL_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "run", "test", "repl", "demo"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	for flag, def := range map[string]string{
		"format":  "text",
		"dialect": "ansi",
		"debug":   "false",
		"driver":  "sqlite3",
		"db":      "",
		"config":  "",
	} {
		f := cmd.PersistentFlags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue, flag)
	}
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	out, _, err := execute(NewRootCommand(), "demo", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Empty(t, out)
}

func TestRootFlagsReachSubcommands(t *testing.T) {
	out, _, err := execute(NewRootCommand(), "demo", "--dialect", "mysql")
	require.NoError(t, err)
	assert.Contains(t, out, "FROM ( `mountains` INNER JOIN `castles`")
}

func TestRootEnvironmentConfig(t *testing.T) {
	t.Setenv("DICT2SQL_DIALECT", "mysql")
	t.Setenv("DICT2SQL_FORMAT", "json")

	out, _, err := execute(NewRootCommand(), "demo")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, "`mountains`")
}
