package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/five82/statekit/internal/apps/chat"
	"github.com/five82/statekit/internal/config"
	"github.com/five82/statekit/internal/plugins/logger"
	"github.com/five82/statekit/internal/prefs"
	"github.com/five82/statekit/internal/ui"
)

// Options configure a statekit run. Zero values defer to the config file
// and preferences.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/statekit/prefs.toml
	Demo       string
	Strict     *bool
	ThemeName  string
}

// Run boots one demo's store and its TUI until the user quits or the
// context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Strict != nil {
		cfg.Strict = *opts.Strict
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	demo, err := resolveDemo(opts.Demo, userPrefs.LastDemo, cfg.Demo)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	rt, err := Build(cfg, demo, log)
	if err != nil {
		return fmt.Errorf("build %s store: %w", demo, err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("shutdown", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if demo == "chat" {
		StartPoller(ctx, cfg.Chat.PollInterval, log, func(ctx context.Context) error {
			_, err := chat.ReceiveMessage(ctx, rt.Store)
			return err
		})
	}

	if err := prefs.Remember(opts.PrefsPath, demo); err != nil {
		log.Warn("save prefs", "error", err)
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = userPrefs.Theme
	}

	log.Info("starting", "demo", demo, "strict", cfg.Strict, "mutation_log", cfg.MutationLog)
	return ui.Run(ui.Options{
		Context:   ctx,
		Demo:      demo,
		Store:     rt.Store,
		ThemeName: themeName,
		PrefsPath: opts.PrefsPath,
	})
}

// resolveDemo picks the demo named on the command line, then the last one
// run, then the configured default.
func resolveDemo(explicit, last, configured string) (string, error) {
	if explicit != "" {
		if err := config.ValidateDemo(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	if last != "" && config.ValidateDemo(last) == nil {
		return last, nil
	}
	return configured, nil
}
