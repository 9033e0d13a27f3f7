package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/svrvt/vc-ranger/internal/config"
	"github.com/svrvt/vc-ranger/internal/core"
	"github.com/svrvt/vc-ranger/internal/executor"
	"github.com/svrvt/vc-ranger/internal/ranger"
	"github.com/svrvt/vc-ranger/internal/selector"
	"go.uber.org/zap"
)

// globalFlags carry the browsing state ranger passes in.
type globalFlags struct {
	configFile string
	thisDir    string
	thisFile   string
	selection  []string
	showHidden bool
	query      string
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   binaryName,
		Short: "ranger commands backed by fasd, fzf and trash-cli",
		Long: `ranger-cmd runs a ranger command outside of ranger and prints the
resulting console commands (cd, select_file, scout) on stdout.

Examples:
  ranger-cmd --thisdir "$PWD" recent-dirs
  ranger-cmd --thisdir "$PWD" mkcd build/out
  ranger-cmd --thisdir "$PWD" --selection a.txt --selection b.txt trash-put`,
		Version:       BUILD_VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/vc-ranger/config.yaml)")
	pf.StringVar(&flags.thisDir, "thisdir", "", "directory ranger is showing (default is the working directory)")
	pf.StringVar(&flags.thisFile, "thisfile", "", "file under ranger's cursor")
	pf.StringArrayVar(&flags.selection, "selection", nil, "marked file, repeatable")
	pf.BoolVar(&flags.showHidden, "show-hidden", false, "ranger is showing hidden files")
	pf.StringVarP(&flags.query, "query", "q", "", "pick the best fuzzy match of this query instead of running a selector")

	build := func(cmd *cobra.Command) (*ranger.Commands, error) {
		return buildCommands(cmd, flags, logger)
	}

	rootCmd.AddCommand(
		newRecentDirsCmd(build),
		newRecentFilesCmd(build),
		newMkcdCmd(build),
		newFzfSelectCmd(build),
		newFzfMySelectCmd(build),
		newFzfSelectByLineCountCmd(build),
		newTrashPutCmd(build),
	)

	return rootCmd
}

// buildCommands wires a ranger.Commands for one invocation.
func buildCommands(cmd *cobra.Command, flags *globalFlags, logger *zap.Logger) (*ranger.Commands, error) {
	configFile := flags.configFile
	if configFile == "" {
		configFile = core.ConfigFile()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	thisDir := flags.thisDir
	if thisDir == "" {
		if thisDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	// Console commands own stdout; anything the tools print goes to stderr.
	exec, err := executor.NewExecutor(executor.Options{
		Stdout: cmd.ErrOrStderr(),
		Stderr: cmd.ErrOrStderr(),
		Dir:    thisDir,
	}, logger, executor.NewLoggingMiddleware(logger))
	if err != nil {
		return nil, err
	}

	host := &ranger.ConsoleHost{
		Dir:      exec.GetPwd(),
		File:     flags.thisFile,
		Selected: flags.selection,
		Hidden:   flags.showHidden,
		Out:      cmd.OutOrStdout(),
		Err:      cmd.ErrOrStderr(),
	}

	commands := &ranger.Commands{
		Host:   host,
		Exec:   exec,
		Config: cfg,
		Logger: logger.With(zap.String("command", cmd.Name())),
	}
	if flags.query != "" {
		query := flags.query
		commands.Selector = func(string) selector.Selector {
			return &selector.Fuzzy{Query: query}
		}
	}
	return commands, nil
}
