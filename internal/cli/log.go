package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/statekit/internal/config"
	"github.com/five82/statekit/internal/logtail"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Lines    int
	Follow   bool
	Kind     string
	Type     string
	Plain    bool
	Interval time.Duration
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the mutation log",
		Long: `Show the mutation log written by the logger plugin.

Each entry is one committed mutation or dispatched action. --type matches
a full type, or a whole namespace when it ends in "/".

Examples:
  statekit log
  statekit log --lines 200 --kind mutation
  statekit log --type cart/ --follow`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 50, "lines to read from the end of the log (0 for all)")
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "keep printing entries as they are written")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show entries of this kind (mutation|action)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only show entries of this type or namespace")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "disable highlighting")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 500*time.Millisecond, "poll interval for --follow")

	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions) error {
	switch opts.Kind {
	case "", "mutation", "action":
	default:
		return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid kind %q: must be mutation or action", opts.Kind)}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	path := cfg.MutationLog
	out := cmd.OutOrStdout()
	filter := logtail.Filter{Kind: opts.Kind, Type: opts.Type}

	// Take the size first so nothing written between the read and the
	// follow is lost.
	offset := logtail.Size(path)
	lines, err := logtail.Read(path, opts.Lines)
	if err != nil {
		return WrapExitError(ExitCommandError, "read mutation log", err)
	}

	p := printer{out: out, plain: opts.Plain}
	for _, entry := range filter.Apply(logtail.Parse(lines)) {
		for _, line := range entry.Lines {
			p.line(line)
		}
	}
	if !opts.Follow {
		if len(lines) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "No entries in %s\n", path)
		}
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stream := &streamFilter{filter: filter}
	err = logtail.Follow(ctx, path, offset, opts.Interval, func(line string) {
		if stream.keep(line) {
			p.line(line)
		}
	})
	if err != nil {
		return WrapExitError(ExitFailure, "follow mutation log", err)
	}
	return nil
}

type printer struct {
	out   io.Writer
	plain bool
}

func (p printer) line(line string) {
	if !p.plain {
		line = logtail.Colorize(line)
	}
	fmt.Fprintln(p.out, line)
}

// streamFilter applies a Filter to lines one at a time: detail lines follow
// the decision made for their header.
type streamFilter struct {
	filter  logtail.Filter
	current bool
}

func (s *streamFilter) keep(line string) bool {
	entries := logtail.Parse([]string{line})
	if len(entries) == 1 {
		s.current = s.filter.Match(entries[0])
		return s.current
	}
	return s.current && line != ""
}
