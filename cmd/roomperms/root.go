package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/roomperms/internal/app"
	"github.com/five82/roomperms/internal/permissions"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "roomperms",
		Short: "Edit who may do what in a Matrix room",
		Long: `roomperms edits the power levels of a Matrix room: which role
(admin, moderator or everyone) is needed to rename the room, send or delete
messages, invite, remove or ban people.

Without a subcommand it opens the interactive editor.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/roomperms/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "prefs file (default ~/.config/roomperms/prefs.toml)")
	flags.StringVar(&opts.Room, "room", "", "room id (!id:server) or alias (#alias:server), overrides config")
	root.Flags().StringVar(&opts.Section, "section", "", "section to open first ("+sectionNames()+")")

	root.AddCommand(
		newShowCmd(&opts),
		newSetCmd(&opts),
		newSectionsCmd(),
		newLogsCmd(&opts),
	)
	return root
}

func newShowCmd(opts *app.Options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the room's permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Show(cmd.Context(), *opts, output, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", app.FormatText, "output format ("+strings.Join(app.Formats(), "|")+")")
	return cmd
}

func newSetCmd(opts *app.Options) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "set key=role|level...",
		Short: "Change permissions and save them",
		Example: `  roomperms set ban=admin kick=moderator
  roomperms set --dry-run send_events=25`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Apply(cmd.Context(), *opts, args, dryRun, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the diff without saving")
	return cmd
}

func newSectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List editor sections and the permissions they hold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, section := range permissions.Sections() {
				if _, err := fmt.Fprintf(out, "%s (%s)\n", section.Title(), section); err != nil {
					return err
				}
				for _, key := range section.Items() {
					if _, err := fmt.Fprintf(out, "  %-14s %s\n", key, key.Label()); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func newLogsCmd(opts *app.Options) *cobra.Command {
	var (
		lines   int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the roomperms log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Logs(*opts, lines, !noColor, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to print, 0 for all")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

func sectionNames() string {
	names := make([]string, 0, 3)
	for _, section := range permissions.Sections() {
		names = append(names, section.String())
	}
	return strings.Join(names, "|")
}
