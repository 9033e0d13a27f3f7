package ranger

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
	"github.com/svrvt/vc-ranger/internal/config"
	"github.com/svrvt/vc-ranger/internal/executor"
	"github.com/svrvt/vc-ranger/internal/selector"
)

// execFixture runs Commands on a real executor whose own directory differs
// from the host's, so every capture has to move into ThisDir.
type execFixture struct {
	dir      string
	bin      string
	stdout   *bytes.Buffer
	commands *Commands
}

func newExecFixture(t *testing.T, query string) *execFixture {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("a\nb\nc\n"), 0644))

	e, err := executor.NewExecutor(executor.Options{
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Dir:    t.TempDir(),
	}, nil)
	require.NoError(t, err)

	f := &execFixture{dir: dir, bin: t.TempDir(), stdout: &bytes.Buffer{}}
	f.commands = &Commands{
		Host:   &ConsoleHost{Dir: dir, Out: f.stdout, Err: &bytes.Buffer{}},
		Exec:   e,
		Config: config.DefaultConfig(),
		Selector: func(string) selector.Selector {
			return &selector.Fuzzy{Query: query}
		},
	}
	return f
}

// script writes an executable sh script into the fixture's bin directory.
func (f *execFixture) script(t *testing.T, name, body string) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	require.NoError(t, err)
	path := filepath.Join(f.bin, name)
	require.NoError(t, os.WriteFile(path, []byte("#!"+sh+"\n"+body), 0755))
	return path
}

const fakeFrecency = `case "$1" in
-dl) echo "$(pwd)/sub" ;;
-fl) echo "$(pwd)/notes.txt" ;;
esac
`

func TestCommands_RecentDirectories_RealExecutor(t *testing.T) {
	f := newExecFixture(t, "sub")
	f.commands.Config.Frecency = f.script(t, "fasd", fakeFrecency)

	require.NoError(t, f.commands.RecentDirectories(context.Background()))
	assert.Equal(t, "cd "+filepath.Join(f.dir, "sub")+"\n", f.stdout.String())
}

func TestCommands_RecentFiles_RealExecutor(t *testing.T) {
	f := newExecFixture(t, "notes")
	f.commands.Config.Frecency = f.script(t, "fasd", fakeFrecency)

	require.NoError(t, f.commands.RecentFiles(context.Background()))
	assert.Equal(t, "select_file "+filepath.Join(f.dir, "notes.txt")+"\n", f.stdout.String())
}

func TestCommands_FzfMySelect_RealExecutor(t *testing.T) {
	f := newExecFixture(t, "notes")
	f.commands.Config.SearchedFiles = `for f in *; do echo "$f"; done`

	require.NoError(t, f.commands.FzfMySelect(context.Background()))
	assert.Equal(t, "select_file "+filepath.Join(f.dir, "notes.txt")+"\n", f.stdout.String())
}

func TestCommands_FzfSelect_RealExecutor(t *testing.T) {
	for _, tool := range []string{"find", "sed", "cut"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}
	f := newExecFixture(t, "sub")

	require.NoError(t, f.commands.FzfSelect(context.Background()))
	assert.Equal(t, "cd "+filepath.Join(f.dir, "sub")+"\n", f.stdout.String())
}

func TestCommands_FzfSelectByLineCount_RealExecutor(t *testing.T) {
	f := newExecFixture(t, "")
	f.commands.Config.LineCount = f.script(t, "line-count", `for f in *; do
	case "$f" in *.txt) echo "  3 $f" ;; esac
done
`)

	require.NoError(t, f.commands.FzfSelectByLineCount(context.Background()))
	assert.Equal(t, "select_file "+filepath.Join(f.dir, "notes.txt")+"\n", f.stdout.String())
}
