package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/statekit/internal/apps/counter"
	"github.com/five82/statekit/internal/apps/todo"
	"github.com/five82/statekit/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.LogFile = filepath.Join(dir, "statekit.log")
	cfg.MutationLog = filepath.Join(dir, "mutations.log")
	cfg.StoragePath = filepath.Join(dir, "state.db")
	cfg.API.ShopLatency = 0
	cfg.API.ChatLatency = 0
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildCounterWritesMutationLog(t *testing.T) {
	cfg := testConfig(t)
	rt, err := Build(cfg, "counter", discard())
	require.NoError(t, err)

	require.NoError(t, counter.Increment(context.Background(), rt.Store))
	require.NoError(t, rt.Close())

	data, err := os.ReadFile(cfg.MutationLog)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "action increment @")
	assert.Contains(t, text, "mutation increment @")
	assert.Contains(t, text, `next={"count":1}`)
}

func TestBuildTodoPersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	rt, err := Build(cfg, "todo", discard())
	require.NoError(t, err)
	_, err = todo.Add(ctx, rt.Store, "ship it")
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	rt, err = Build(cfg, "todo", discard())
	require.NoError(t, err)
	defer rt.Close()
	require.NoError(t, todo.Load(ctx, rt.Store))

	todos := todo.Of(rt.Store.State()).Todos
	require.Len(t, todos, 1)
	assert.Equal(t, "ship it", todos[0].Text)
}

func TestBuildEveryDemo(t *testing.T) {
	for _, demo := range config.Demos {
		t.Run(demo, func(t *testing.T) {
			rt, err := Build(testConfig(t), demo, discard())
			require.NoError(t, err)
			assert.NotNil(t, rt.Store)
			assert.True(t, rt.Store.Strict())
			require.NoError(t, rt.Close())
		})
	}
}

func TestBuildUnknownDemo(t *testing.T) {
	_, err := Build(testConfig(t), "nope", discard())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown demo"))
}

func TestBuildCartRejectsBadBaseURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.BaseURL = "://bad"
	_, err := Build(cfg, "cart", discard())
	require.Error(t, err)
}

func TestResolveDemo(t *testing.T) {
	tests := []struct {
		name                     string
		explicit, last, fallback string
		want                     string
		wantErr                  bool
	}{
		{"explicit wins", "cart", "todo", "counter", "cart", false},
		{"last demo", "", "todo", "counter", "todo", false},
		{"stale last demo", "", "removed", "counter", "counter", false},
		{"configured", "", "", "chat", "chat", false},
		{"invalid explicit", "nope", "todo", "counter", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveDemo(tt.explicit, tt.last, tt.fallback)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
