package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Demos lists the example stores statekit can run.
var Demos = []string{"counter", "cart", "todo", "chat"}

// Config holds the resolved statekit settings.
type Config struct {
	Demo        string
	Strict      bool
	LogLevel    slog.Level
	LogFile     string
	MutationLog string
	StoragePath string

	Logger LoggerConfig
	API    APIConfig
	Chat   ChatConfig
}

// LoggerConfig tunes the mutation logger plugin.
type LoggerConfig struct {
	Collapsed bool
	Actions   bool
}

// APIConfig selects and tunes the shop and chat backends. An empty BaseURL
// uses the in-process mock.
type APIConfig struct {
	BaseURL     string
	ShopLatency time.Duration
	ChatLatency time.Duration
	FailureRate float64
}

// ChatConfig tunes the incoming-message poller.
type ChatConfig struct {
	PollInterval time.Duration
}

const (
	defaultConfigPath  = "~/.config/statekit/config.toml"
	defaultDataDir     = "~/.local/share/statekit"
	defaultDemo        = "counter"
	defaultShopLatency = 100 * time.Millisecond
	defaultChatLatency = 16 * time.Millisecond
	defaultFailureRate = 0.5
	defaultPoll        = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	dataDir := mustExpand(defaultDataDir)
	return Config{
		Demo:        defaultDemo,
		Strict:      true,
		LogLevel:    slog.LevelInfo,
		LogFile:     filepath.Join(dataDir, "statekit.log"),
		MutationLog: filepath.Join(dataDir, "mutations.log"),
		StoragePath: filepath.Join(dataDir, "state.db"),
		Logger:      LoggerConfig{Collapsed: true, Actions: true},
		API: APIConfig{
			ShopLatency: defaultShopLatency,
			ChatLatency: defaultChatLatency,
			FailureRate: defaultFailureRate,
		},
		Chat: ChatConfig{PollInterval: defaultPoll},
	}
}

type rawConfig struct {
	Demo        string   `toml:"demo"`
	Strict      *bool    `toml:"strict"`
	LogLevel    string   `toml:"log_level"`
	LogFile     string   `toml:"log_file"`
	MutationLog string   `toml:"mutation_log"`
	Storage     struct {
		Path string `toml:"path"`
	} `toml:"storage"`
	Logger struct {
		Collapsed *bool `toml:"collapsed"`
		Actions   *bool `toml:"actions"`
	} `toml:"logger"`
	API struct {
		BaseURL       string   `toml:"base_url"`
		ShopLatencyMS *int     `toml:"shop_latency_ms"`
		ChatLatencyMS *int     `toml:"chat_latency_ms"`
		FailureRate   *float64 `toml:"failure_rate"`
	} `toml:"api"`
	Chat struct {
		PollSeconds int `toml:"poll_seconds"`
	} `toml:"chat"`
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields Default.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	if demo := strings.TrimSpace(raw.Demo); demo != "" {
		c.Demo = demo
	}
	if err := ValidateDemo(c.Demo); err != nil {
		return err
	}
	if raw.Strict != nil {
		c.Strict = *raw.Strict
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		if err := c.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("parse log_level %q: %w", level, err)
		}
	}
	if p := strings.TrimSpace(raw.LogFile); p != "" {
		c.LogFile = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.MutationLog); p != "" {
		c.MutationLog = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.Storage.Path); p != "" {
		c.StoragePath = mustExpand(p)
	}
	if raw.Logger.Collapsed != nil {
		c.Logger.Collapsed = *raw.Logger.Collapsed
	}
	if raw.Logger.Actions != nil {
		c.Logger.Actions = *raw.Logger.Actions
	}

	c.API.BaseURL = strings.TrimSpace(raw.API.BaseURL)
	if ms := raw.API.ShopLatencyMS; ms != nil && *ms >= 0 {
		c.API.ShopLatency = time.Duration(*ms) * time.Millisecond
	}
	if ms := raw.API.ChatLatencyMS; ms != nil && *ms >= 0 {
		c.API.ChatLatency = time.Duration(*ms) * time.Millisecond
	}
	if rate := raw.API.FailureRate; rate != nil {
		if *rate < 0 || *rate > 1 {
			return fmt.Errorf("failure_rate %v outside [0, 1]", *rate)
		}
		c.API.FailureRate = *rate
	}
	if raw.Chat.PollSeconds > 0 {
		c.Chat.PollInterval = time.Duration(raw.Chat.PollSeconds) * time.Second
	}
	return nil
}

// ValidateDemo reports an error unless name is one of Demos.
func ValidateDemo(name string) error {
	if !slices.Contains(Demos, name) {
		return fmt.Errorf("unknown demo %q (want one of %s)", name, strings.Join(Demos, ", "))
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
