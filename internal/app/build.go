package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/apps/cart"
	"github.com/five82/statekit/internal/apps/chat"
	"github.com/five82/statekit/internal/apps/counter"
	"github.com/five82/statekit/internal/apps/todo"
	"github.com/five82/statekit/internal/blob"
	"github.com/five82/statekit/internal/config"
	"github.com/five82/statekit/internal/plugins/logger"
	"github.com/five82/statekit/internal/plugins/persist"
	"github.com/five82/statekit/internal/store"
)

// Runtime is a built demo store and the resources it holds.
type Runtime struct {
	Store *store.Store

	closers []func() error
}

func (r *Runtime) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// Close releases resources in reverse order of acquisition, so the
// persistence writer drains before its blob store closes.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build constructs the store for demo with its plugins: the mutation
// logger for every demo, plus blob persistence for todo.
func Build(cfg config.Config, demo string, log *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}
	fail := func(err error) (*Runtime, error) {
		_ = rt.Close()
		return nil, err
	}

	mutations, err := logger.OpenFile(cfg.MutationLog)
	if err != nil {
		return fail(err)
	}
	rt.onClose(mutations.Close)

	plugins := []store.Plugin{logger.New(loggerOptions(cfg, demo, log, mutations))}

	var s *store.Store
	switch demo {
	case "counter":
		s, err = counter.New(counter.Deps{Plugins: plugins, Strict: cfg.Strict, Logger: log})

	case "cart":
		var shop api.Shop
		shop, err = newShop(cfg)
		if err != nil {
			return fail(err)
		}
		s, err = cart.New(cart.Deps{Shop: shop, Plugins: plugins, Strict: cfg.Strict, Logger: log})

	case "todo":
		var blobs *blob.SQLite
		blobs, err = blob.OpenSQLite(cfg.StoragePath)
		if err != nil {
			return fail(err)
		}
		rt.onClose(blobs.Close)
		plugin, writer := todo.Persistence(blobs, persist.WithLogger(log))
		rt.onClose(func() error { writer.Close(); return nil })
		s, err = todo.New(todo.Deps{
			Blobs:   blobs,
			Plugins: append(plugins, plugin),
			Strict:  cfg.Strict,
			Logger:  log,
		})

	case "chat":
		var mock *api.Mock
		mock, err = newMock(cfg)
		if err != nil {
			return fail(err)
		}
		s, err = chat.New(chat.Deps{Chat: mock, Plugins: plugins, Strict: cfg.Strict, Logger: log})

	default:
		err = config.ValidateDemo(demo)
	}
	if err != nil {
		return fail(err)
	}
	rt.Store = s
	return rt, nil
}

func loggerOptions(cfg config.Config, demo string, log *slog.Logger, sink io.Writer) logger.Options {
	opts := logger.Options{
		Logger:              log,
		Writer:              sink,
		Collapsed:           cfg.Logger.Collapsed,
		SkipActions:         !cfg.Logger.Actions,
		MutationTransformer: logger.JSON[store.MutationRecord],
		ActionTransformer:   logger.JSON[store.ActionRecord],
	}
	// The chat tree holds every message; log only what changed.
	if demo == "chat" {
		opts.Transformer = logger.Elide
	}
	return opts
}

func newShop(cfg config.Config) (api.Shop, error) {
	if cfg.API.BaseURL != "" {
		remote, err := api.NewRemote(cfg.API.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("init shop client: %w", err)
		}
		return remote, nil
	}
	return newMock(cfg)
}

func newMock(cfg config.Config) (*api.Mock, error) {
	mock, err := api.NewMock()
	if err != nil {
		return nil, fmt.Errorf("init mock api: %w", err)
	}
	mock.ShopLatency = cfg.API.ShopLatency
	mock.ChatLatency = cfg.API.ChatLatency
	mock.FailureRate = cfg.API.FailureRate
	return mock, nil
}
