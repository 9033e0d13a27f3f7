// Package ranger implements file-manager commands on top of external
// tools: a frecency index, interactive selectors and a trash utility. The
// file manager itself is reached through the Host interface.
package ranger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/svrvt/vc-ranger/internal/batchrun"
	"github.com/svrvt/vc-ranger/internal/config"
	"github.com/svrvt/vc-ranger/internal/selector"
	"go.uber.org/zap"
)

// ErrExists is returned by Mkcd when the target is already present.
var ErrExists = errors.New("file/directory exists")

// findCandidates lists everything below the current directory, skipping
// device and proc file systems, relative to it.
const findCandidates = `find -L . \( -fstype 'dev' -o -fstype 'proc' \) -prune -o -print 2> /dev/null | sed 1d | cut -b3-`

// lineCountEntry matches "<count> <file>" lines.
var lineCountEntry = regexp.MustCompile(`^\s*\d+\s+(.*)$`)

// Exec runs the external programs. Programs started through ExecuteArgs run
// in the host's current directory.
type Exec interface {
	batchrun.Executor
	selector.Capturer
	Capture(ctx context.Context, dir string, command string, stdin io.Reader) (string, int, error)
}

// Commands binds the file-manager commands to their collaborators.
type Commands struct {
	Host   Host
	Exec   Exec
	Config *config.Config
	// Selector returns the selector used in place of the named program.
	Selector func(program string) selector.Selector
	Logger   *zap.Logger
}

func (c *Commands) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Commands) selector(program string) selector.Selector {
	if c.Selector != nil {
		return c.Selector(program)
	}
	return &selector.Command{Exec: c.Exec, Name: program}
}

// abs resolves p against the host's current directory.
func (c *Commands) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Host.ThisDir(), p)
}

// RecentDirectories lets the user pick one of the most frecent directories
// and enters it.
func (c *Commands) RecentDirectories(ctx context.Context) error {
	dir, err := c.pickRecent(ctx, "-dl", c.Config.Selectors.Directory)
	if err != nil || dir == "" {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("recent directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("recent directory: %s is not a directory", dir)
	}

	c.touchFrecency(ctx, dir)
	return c.Host.Cd(dir)
}

// RecentFiles lets the user pick one of the most frecent files and moves the
// cursor to it.
func (c *Commands) RecentFiles(ctx context.Context) error {
	file, err := c.pickRecent(ctx, "-fl", c.Config.Selectors.File)
	if err != nil || file == "" {
		return err
	}

	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("recent file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("recent file: %s is a directory", file)
	}

	c.touchFrecency(ctx, file)
	return c.Host.SelectFile(file)
}

// pickRecent lists frecency entries with listFlag and returns the absolute
// path of the selected one, or "" when the user aborted.
func (c *Commands) pickRecent(ctx context.Context, listFlag string, selectorProgram string) (string, error) {
	out, exitCode, err := c.Exec.CaptureArgs(ctx, c.Host.ThisDir(), []string{c.Config.Frecency, listFlag}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", c.Config.Frecency, err)
	}
	if exitCode != 0 {
		return "", fmt.Errorf("%s %s exited with status %d", c.Config.Frecency, listFlag, exitCode)
	}

	return c.pick(ctx, selector.Lines(out), selectorProgram, selector.ReverseFlag)
}

// pick runs the selector and resolves its answer; "" means aborted.
func (c *Commands) pick(ctx context.Context, candidates []string, program string, args ...string) (string, error) {
	choice, err := c.selector(program).Select(ctx, candidates, args...)
	if errors.Is(err, selector.ErrNoSelection) {
		c.logger().Debug("nothing selected", zap.String("selector", program), zap.Error(err))
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.abs(choice), nil
}

func (c *Commands) touchFrecency(ctx context.Context, path string) {
	exitCode, err := c.Exec.ExecuteArgs(ctx, []string{c.Config.Frecency, "--add", path})
	if err != nil || exitCode != 0 {
		c.logger().Warn("failed to record visit",
			zap.String("path", path),
			zap.Int("exit_code", exitCode),
			zap.Error(err),
		)
	}
}

// Mkcd creates the directory name, relative to the current directory unless
// absolute or ~-prefixed, and walks the host into it.
func (c *Commands) Mkcd(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("mkcd: missing directory name")
	}

	target := ExpandUser(name)
	if !filepath.IsAbs(target) {
		target = filepath.Join(c.Host.ThisDir(), target)
	}

	if _, err := os.Lstat(target); err == nil {
		c.Host.Notify("file/directory exists!", true)
		return fmt.Errorf("mkcd %s: %w", target, ErrExists)
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("mkcd: %w", err)
	}

	for _, step := range NavigationSteps(target, c.Host.ShowHidden()) {
		var err error
		switch step.Kind {
		case StepCd:
			err = c.Host.Cd(step.Arg)
		case StepScout:
			err = c.Host.Scout(step.Arg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FzfSelect picks any entry below the current directory.
func (c *Commands) FzfSelect(ctx context.Context) error {
	return c.selectFromCommand(ctx, findCandidates)
}

// FzfMySelect picks one of the files listed by the searched-files program.
func (c *Commands) FzfMySelect(ctx context.Context) error {
	return c.selectFromCommand(ctx, c.Config.SearchedFiles)
}

func (c *Commands) selectFromCommand(ctx context.Context, command string) error {
	out, exitCode, err := c.Exec.Capture(ctx, c.Host.ThisDir(), command, nil)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}
	candidates := selector.Lines(out)
	if exitCode != 0 && len(candidates) == 0 {
		return fmt.Errorf("listing candidates exited with status %d", exitCode)
	}

	path, err := c.pick(ctx, candidates, c.Config.Selectors.File, "+m")
	if err != nil || path == "" {
		return err
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return c.Host.Cd(path)
	}
	return c.Host.SelectFile(path)
}

// FzfSelectByLineCount runs the line-count selector, which prints the chosen
// "<count> <file>" line, and moves the cursor to that file.
func (c *Commands) FzfSelectByLineCount(ctx context.Context) error {
	out, exitCode, err := c.Exec.CaptureArgs(ctx, c.Host.ThisDir(), []string{c.Config.LineCount, "."}, nil)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", c.Config.LineCount, err)
	}
	if exitCode != 0 {
		c.logger().Debug("line count selector aborted", zap.Int("exit_code", exitCode))
		return nil
	}

	file, ok := ParseLineCountEntry(selector.FirstLine(out))
	if !ok {
		return nil
	}
	return c.Host.SelectFile(c.abs(file))
}

// ParseLineCountEntry extracts the file name of a "<count> <file>" line.
func ParseLineCountEntry(line string) (string, bool) {
	m := lineCountEntry.FindStringSubmatch(line)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// TrashArgs picks what TrashPut removes: the given files, else the marked
// files, else the file under the cursor. Host entries are passed by base
// name.
func (c *Commands) TrashArgs(files []string) []string {
	if len(files) > 0 {
		return files
	}
	if selection := c.Host.Selection(); len(selection) > 0 {
		return lo.Map(selection, func(p string, _ int) string {
			return filepath.Base(p)
		})
	}
	if file := c.Host.ThisFile(); file != "" {
		return []string{filepath.Base(file)}
	}
	return nil
}

// TrashPut moves files to the trash, invoking the trash program as few times
// as the configured argument budget allows.
func (c *Commands) TrashPut(ctx context.Context, files []string) error {
	args := c.TrashArgs(files)
	if len(args) == 0 {
		return errors.New("trash: nothing to trash")
	}

	runner, err := batchrun.NewRunner(batchrun.Options{
		Command: []string{c.Config.Trash},
		Budget:  c.Config.Budget,
	}, c.Exec, c.logger())
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, args)
	if err != nil {
		var failure *batchrun.FailureError
		if errors.As(err, &failure) {
			c.Host.Notify(fmt.Sprintf("%s failed for %d of %d batches", c.Config.Trash, len(failure.Failures), report.Batches), true)
		}
		return err
	}

	c.logger().Info("trashed files", zap.Int("files", len(args)), zap.Int("batches", report.Batches))
	return nil
}
