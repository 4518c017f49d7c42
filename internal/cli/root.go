package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/statekit/internal/app"
	"github.com/five82/statekit/internal/config"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	PrefsPath  string
	Strict     bool
	ThemeName  string
}

// runDemo is swapped out in tests so commands can be exercised without a
// terminal.
var runDemo = app.Run

// NewRootCommand creates the statekit command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "statekit",
		Short: "statekit - centralized state for terminal apps",
		Long: `A centralized store with mutations, actions, getters and plugins,
shown through four demo apps: counter, cart, todo and chat.

Run without a subcommand to open the last demo you used.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startDemo(cmd, opts, "")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/statekit/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/statekit/prefs.toml)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", true, "fail mutations of state outside a commit")
	cmd.PersistentFlags().StringVar(&opts.ThemeName, "theme", "", "color theme (overrides saved preference)")

	for _, demo := range config.Demos {
		cmd.AddCommand(newDemoCommand(opts, demo))
	}
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

var demoShort = map[string]string{
	"counter": "Increment and decrement a shared count",
	"cart":    "Browse products and check out a shopping cart",
	"todo":    "Manage a persisted todo list",
	"chat":    "Read and reply to chat threads",
}

func newDemoCommand(opts *RootOptions, demo string) *cobra.Command {
	return &cobra.Command{
		Use:           demo,
		Short:         demoShort[demo],
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startDemo(cmd, opts, demo)
		},
	}
}

func startDemo(cmd *cobra.Command, opts *RootOptions, demo string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runOpts := app.Options{
		ConfigPath: opts.ConfigPath,
		PrefsPath:  opts.PrefsPath,
		Demo:       demo,
		ThemeName:  opts.ThemeName,
	}
	// Only an explicit flag overrides the config file.
	if cmd.Flags().Changed("strict") {
		strict := opts.Strict
		runOpts.Strict = &strict
	}
	return runDemo(ctx, runOpts)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the statekit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "statekit %s\n", Version)
		},
	}
}
