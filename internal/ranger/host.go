package ranger

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/svrvt/vc-ranger/internal/styles"
)

// Host is the file manager the commands act on.
type Host interface {
	// ThisDir is the absolute path of the directory being browsed.
	ThisDir() string
	// ThisFile is the file under the cursor.
	ThisFile() string
	// Selection lists the marked files, empty when nothing is marked.
	Selection() []string
	ShowHidden() bool

	Cd(path string) error
	SelectFile(path string) error
	// Scout moves to the single entry matching pattern and opens it.
	Scout(pattern string) error
	Notify(msg string, bad bool)
}

var errMultiline = errors.New("console arguments cannot span lines")

// ConsoleHost drives ranger through its console: every action is written to
// Out as one console command line, for a ranger-side shim to pass to
// execute_console. The browsing state is supplied up front.
type ConsoleHost struct {
	Dir      string
	File     string
	Selected []string
	Hidden   bool

	Out io.Writer
	Err io.Writer
}

func (h *ConsoleHost) ThisDir() string     { return h.Dir }
func (h *ConsoleHost) ThisFile() string    { return h.File }
func (h *ConsoleHost) Selection() []string { return h.Selected }
func (h *ConsoleHost) ShowHidden() bool    { return h.Hidden }

func (h *ConsoleHost) Cd(path string) error {
	return h.console("cd", path)
}

func (h *ConsoleHost) SelectFile(path string) error {
	return h.console("select_file", path)
}

func (h *ConsoleHost) Scout(pattern string) error {
	return h.console("scout -ae", pattern)
}

func (h *ConsoleHost) Notify(msg string, bad bool) {
	if bad {
		msg = styles.ERROR(msg)
	}
	fmt.Fprintln(h.Err, msg)
}

func (h *ConsoleHost) console(command string, arg string) error {
	if strings.ContainsAny(arg, "\r\n") {
		return fmt.Errorf("%s %q: %w", command, arg, errMultiline)
	}
	_, err := fmt.Fprintf(h.Out, "%s %s\n", command, arg)
	return err
}
