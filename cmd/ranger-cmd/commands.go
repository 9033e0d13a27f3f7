package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/svrvt/vc-ranger/internal/ranger"
)

type commandsBuilder func(cmd *cobra.Command) (*ranger.Commands, error)

func newRecentDirsCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "recent-dirs",
		Short: "Jump to a recent directory using fasd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.RecentDirectories(cmd.Context())
		},
	}
}

func newRecentFilesCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "recent-files",
		Short: "Jump to a recent file using fasd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.RecentFiles(cmd.Context())
		},
	}
}

func newMkcdCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "mkcd <dirname>",
		Short: "Create a directory and enter it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.Mkcd(strings.Join(args, " "))
		},
	}
}

func newFzfSelectCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "fzf-select",
		Short: "Find a file below the current directory using fzf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.FzfSelect(cmd.Context())
		},
	}
}

func newFzfMySelectCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "fzf-my-select",
		Short: "Find a file using list-searched-files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.FzfMySelect(cmd.Context())
		},
	}
}

func newFzfSelectByLineCountCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "fzf-select-by-line-count",
		Short: "Pick a file ranked by line count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.FzfSelectByLineCount(cmd.Context())
		},
	}
}

func newTrashPutCmd(build commandsBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "trash-put [files...]",
		Short: "Move files to the XDG trash",
		Long: `Move files to the XDG trash. Without arguments the marked files are
trashed, or the file under the cursor when nothing is marked. The trash
program is invoked as few times as the configured budget allows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands, err := build(cmd)
			if err != nil {
				return err
			}
			return commands.TrashPut(cmd.Context(), args)
		},
	}
}
