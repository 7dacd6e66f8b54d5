package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader replays lines, then reports io.EOF.
type fakeReader struct {
	lines  []string
	errs   map[int]error
	next   int
	closed bool
}

func (r *fakeReader) Readline() (string, error) {
	if err, ok := r.errs[r.next]; ok {
		r.next++
		return "", err
	}
	if r.next >= len(r.lines) {
		return "", io.EOF
	}
	line := r.lines[r.next]
	r.next++
	return line, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func runReplLines(t *testing.T, exec bool, lines ...string) (string, *fakeReader) {
	t.Helper()
	reader := &fakeReader{lines: lines}
	opts := &ReplOptions{
		RootOptions: textOptions(nil),
		Exec:        exec,
		newReader:   func() (lineReader, error) { return reader, nil },
	}

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())

	require.NoError(t, runRepl(opts, cmd))
	return out.String(), reader
}

func TestReplCompilesEachLine(t *testing.T) {
	out, reader := runReplLines(t, false,
		`{"Select": "Name", "From": "Artist", "Limit": 1}`,
		"",
		".dialect mysql",
		`{"Select": "Name", "From": "Artist", "Limit": 1}`,
	)

	assert.Contains(t, out, `SELECT Name FROM "Artist" LIMIT 1`)
	assert.Contains(t, out, "dialect mysql")
	assert.Contains(t, out, "SELECT Name FROM `Artist` LIMIT 1")
	assert.True(t, reader.closed)
}

func TestReplReportsErrorsAndContinues(t *testing.T) {
	out, _ := runReplLines(t, false,
		`{"Merge": {}}`,
		`not json`,
		`{"Delete": {}}`,
		".bogus",
		".dialect oracle",
		".debug maybe",
		`{"Select": "*", "From": "Album"}`,
	)

	assert.Contains(t, out, "Error [E010]")
	assert.Contains(t, out, "Error [E004]")
	assert.Contains(t, out, "Error [E011]")
	assert.Contains(t, out, "unknown command .bogus")
	assert.Contains(t, out, "unknown dialect")
	assert.Contains(t, out, "usage: .debug on|off")
	assert.Contains(t, out, `SELECT * FROM "Album"`)
}

func TestReplQuitStopsReading(t *testing.T) {
	out, reader := runReplLines(t, false,
		".help",
		".quit",
		`{"Select": "*", "From": "Album"}`,
	)
	assert.Contains(t, out, ".dialect <ansi|mysql>")
	assert.NotContains(t, out, "SELECT")
	assert.Equal(t, 2, reader.next)
}

func TestReplExecutesAgainstFixture(t *testing.T) {
	out, _ := runReplLines(t, true,
		`{"Insert": {"Table": "Artist", "Data": {"ArtistId": 300, "Name": "Weird Al Yancovic"}}}`,
		`{"Select": "Name", "From": "Artist", "Where": {"Op": ">=", "Sx": "ArtistId", "Dx": 300}}`,
		".exec off",
		`{"Delete": {"Table": "Artist", "Where": {"Op": "=", "Sx": "ArtistId", "Dx": 300}}}`,
	)

	assert.Contains(t, out, "1 row(s) affected")
	assert.Contains(t, out, "Weird Al Yancovic")
	assert.Contains(t, out, "exec off")
	assert.Contains(t, out, `DELETE FROM Artist WHERE ( "ArtistId" = 300 )`)
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("row(s) affected")))
}

func TestReplDebugSkipsExecution(t *testing.T) {
	out, _ := runReplLines(t, true,
		".debug on",
		`{"Select": "*", "From": "Nope"}`,
	)
	assert.Contains(t, out, "debug on")
	assert.NotContains(t, out, "Error [E008]")
}

func TestReplInterruptContinues(t *testing.T) {
	reader := &fakeReader{
		lines: []string{"", `{"Select": "*", "From": "Album"}`},
		errs:  map[int]error{0: readline.ErrInterrupt},
	}
	opts := &ReplOptions{
		RootOptions: textOptions(nil),
		newReader:   func() (lineReader, error) { return reader, nil },
	}
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())

	require.NoError(t, runRepl(opts, cmd))
	assert.Contains(t, out.String(), `SELECT * FROM "Album"`)
}

func TestReplReaderFailure(t *testing.T) {
	opts := &ReplOptions{
		RootOptions: textOptions(nil),
		newReader:   func() (lineReader, error) { return nil, errors.New("no tty") },
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	err := runRepl(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseSwitch(t *testing.T) {
	on, ok := parseSwitch("ON")
	assert.True(t, on)
	assert.True(t, ok)

	on, ok = parseSwitch("off")
	assert.False(t, on)
	assert.True(t, ok)

	_, ok = parseSwitch("maybe")
	assert.False(t, ok)
}
