// Package selector picks a single entry out of a list of candidate lines.
package selector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// ErrNoSelection is returned when nothing was picked, for instance because
// the user aborted the selector.
var ErrNoSelection = errors.New("nothing selected")

// ReverseFlag asks a selector to present candidates in reverse order, most
// relevant last-listed entry first.
const ReverseFlag = "--tac"

// Selector picks one of the candidates. args are passed to external
// selectors verbatim; Fuzzy only understands ReverseFlag.
type Selector interface {
	Select(ctx context.Context, candidates []string, args ...string) (string, error)
}

// Capturer runs argv with stdin attached and returns its stdout.
type Capturer interface {
	CaptureArgs(ctx context.Context, dir string, argv []string, stdin io.Reader) (string, int, error)
}

// Command delegates selection to an interactive program such as fzf. The
// candidates are written to its stdin and the first line of its stdout is
// the selection.
type Command struct {
	Exec Capturer
	Name string
}

func (c *Command) Select(ctx context.Context, candidates []string, args ...string) (string, error) {
	argv := append([]string{c.Name}, args...)
	input := strings.Join(candidates, "\n")
	if len(candidates) > 0 {
		input += "\n"
	}

	stdout, exitCode, err := c.Exec.CaptureArgs(ctx, "", argv, strings.NewReader(input))
	if err != nil {
		return "", fmt.Errorf("failed to run selector %s: %w", c.Name, err)
	}
	if exitCode != 0 {
		return "", fmt.Errorf("%w: %s exited with status %d", ErrNoSelection, c.Name, exitCode)
	}

	line := FirstLine(stdout)
	if line == "" {
		return "", ErrNoSelection
	}
	return line, nil
}

// Fuzzy selects the best fuzzy match of Query without any interaction. An
// empty Query picks the first candidate.
type Fuzzy struct {
	Query string
}

func (f *Fuzzy) Select(_ context.Context, candidates []string, args ...string) (string, error) {
	candidates = lo.Filter(candidates, func(c string, _ int) bool {
		return strings.TrimSpace(c) != ""
	})
	if lo.Contains(args, ReverseFlag) {
		candidates = lo.Reverse(append([]string{}, candidates...))
	}

	if f.Query == "" {
		if len(candidates) == 0 {
			return "", ErrNoSelection
		}
		return candidates[0], nil
	}

	matches := fuzzy.Find(f.Query, candidates)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no candidate matches %q", ErrNoSelection, f.Query)
	}
	return matches[0].Str, nil
}

// FirstLine returns the first line of s without its line terminator.
func FirstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Lines splits command output into non-empty lines.
func Lines(s string) []string {
	return lo.FilterMap(strings.Split(s, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSuffix(line, "\r")
		return line, line != ""
	})
}
