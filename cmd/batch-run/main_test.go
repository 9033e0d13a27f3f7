package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svrvt/vc-ranger/internal/batch"
	"go.uber.org/zap"
)

type result struct {
	err    error
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, argv ...string) result {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := run(context.Background(), argv, strings.NewReader(stdin), stdout, stderr, zap.NewNop())
	code := exitCode(err, stderr, zap.NewNop())
	return result{err: err, code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// writeScript creates an executable shell script that records its arguments
// into log, one invocation per line, and exits with the given status when
// one of its arguments is "fail".
func writeScript(t *testing.T) (string, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	log := filepath.Join(dir, "calls.log")
	script := filepath.Join(dir, "record")
	content := "#!/bin/sh\n" +
		"echo \"$*\" >> '" + log + "'\n" +
		"for a in \"$@\"; do [ \"$a\" = fail ] && exit 3; done\n" +
		"exit 0\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0755))
	return script, log
}

func readCalls(t *testing.T, log string) []string {
	t.Helper()
	content, err := os.ReadFile(log)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

func TestRun_PositionalArguments(t *testing.T) {
	res := runCLI(t, "", "echo", "--budget=3", "a", "bb", "ccc")
	require.NoError(t, res.err)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, "a bb\nccc\n", res.stdout)
}

func TestRun_DefaultBudgetKeepsOneBatch(t *testing.T) {
	res := runCLI(t, "", "echo", "a", "b", "c")
	require.NoError(t, res.err)
	assert.Equal(t, "a b c\n", res.stdout)
}

func TestRun_ArgumentsFromStdin(t *testing.T) {
	res := runCLI(t, "one\r\ntwo words\nthree", "echo", "--budget", "8")
	require.NoError(t, res.err)
	assert.Equal(t, "one\ntwo words\nthree\n", res.stdout)
}

func TestRun_EmptyStdinInvokesOnce(t *testing.T) {
	res := runCLI(t, "", "echo")
	require.NoError(t, res.err)
	assert.Equal(t, "\n", res.stdout)
}

func TestRun_DoubleDashPassesDashedArguments(t *testing.T) {
	res := runCLI(t, "", "echo", "--", "-rf", "x")
	require.NoError(t, res.err)
	assert.Equal(t, "-rf x\n", res.stdout)
}

func TestRun_DryRun(t *testing.T) {
	res := runCLI(t, "", "--dry-run", "--budget=2", "trash-put", "a", "b", "c d")
	require.NoError(t, res.err)
	assert.Equal(t,
		"# batch 1/2: 2 args, 2 B\ntrash-put a b\n"+
			"# batch 2/2: 1 args, 3 B\ntrash-put 'c d'\n",
		res.stdout)
}

func TestRun_InvalidBudget(t *testing.T) {
	for _, budget := range []string{"0", "-5"} {
		res := runCLI(t, "", "echo", "--budget="+budget, "a")
		assert.ErrorIs(t, res.err, batch.ErrInvalidBudget)
		assert.Equal(t, 2, res.code)
		assert.Empty(t, res.stdout, "nothing may run with an invalid budget")
	}
}

func TestRun_UsageErrors(t *testing.T) {
	res := runCLI(t, "")
	assert.Error(t, res.err)
	assert.Equal(t, 2, res.code)

	res = runCLI(t, "", "echo", "--no-such-flag")
	assert.Error(t, res.err)
	assert.Equal(t, 2, res.code)

	res = runCLI(t, "", "--budget=lots", "echo")
	assert.Error(t, res.err)
	assert.Equal(t, 2, res.code)
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, "", "--version")
	require.NoError(t, res.err)
	assert.Equal(t, BUILD_VERSION+"\n", res.stdout)
}

func TestRun_FailuresContinueAndReportFirstExitCode(t *testing.T) {
	script, log := writeScript(t)

	res := runCLI(t, "", script, "--budget=4", "ok1", "fail", "ok2")
	require.Error(t, res.err)
	assert.Equal(t, 3, res.code)
	assert.Equal(t, []string{"ok1", "fail", "ok2"}, readCalls(t, log))
	assert.Contains(t, res.stderr, "batch 2 (1 args) exited with status 3")
}

func TestRun_FailFast(t *testing.T) {
	script, log := writeScript(t)

	res := runCLI(t, "", script, "--fail-fast", "--budget=4", "fail", "ok1", "ok2")
	assert.Equal(t, 3, res.code)
	assert.Equal(t, []string{"fail"}, readCalls(t, log))
}

func TestRun_MissingCommand(t *testing.T) {
	res := runCLI(t, "", "vc-ranger-no-such-program", "a")
	assert.Equal(t, 127, res.code)
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("a\nb\r\n\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "", "c"}, lines)

	lines, err = readLines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}
