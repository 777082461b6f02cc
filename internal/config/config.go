// Package config loads the gobattle configuration.
//
// Values are layered: built-in defaults, then an optional YAML
// file, then GOBATTLE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/logging"
)

const EnvPrefix = "GOBATTLE_"

// The file that is read when no path is given
const DefaultFile = "gobattle.yaml"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Config struct {
	Library LibraryConfig `koanf:"library"`
	Store   StoreConfig   `koanf:"store"`
	Battle  BattleConfig  `koanf:"battle"`
	Logging LoggingConfig `koanf:"logging"`
}

type LibraryConfig struct {
	// The directory that is scanned for items
	Root string `koanf:"root"`

	// The media kinds that become items: image, audio, video
	Kinds []string `koanf:"kinds"`
}

type StoreConfig struct {
	// memory, badger or redis
	Backend string `koanf:"backend"`

	// Directory of the badger database. Relative paths
	// are resolved against the library root.
	Path string `koanf:"path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// Key prefix that separates battles in one database
	Prefix string `koanf:"prefix"`
}

type BattleConfig struct {
	// The strategy that is active when a battle is opened
	Strategy string `koanf:"strategy"`

	// Seed of the random strategies. Zero seeds from the clock.
	Seed int64 `koanf:"seed"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var (
	Backends = []string{"memory", "badger", "redis"}
	Kinds    = []string{"image", "audio", "video"}
)

func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Root:  ".",
			Kinds: []string{"image"},
		},
		Store: StoreConfig{
			Backend:   "badger",
			Path:      ".gobattle",
			RedisAddr: "localhost:6379",
			Prefix:    "gobattle:",
		},
		Battle: BattleConfig{
			Strategy: "winner-oriented",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration. An empty path reads DefaultFile
// when it exists. An explicit path has to exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// Comma separated lists from the environment
	if kinds, ok := k.Get("library.kinds").(string); ok {
		if err := k.Set("library.kinds", splitList(kinds)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var envKeys = map[string]string{
	"library_root":         "library.root",
	"library_kinds":        "library.kinds",
	"store_backend":        "store.backend",
	"store_path":           "store.path",
	"store_redis_addr":     "store.redis_addr",
	"store_redis_password": "store.redis_password",
	"store_redis_db":       "store.redis_db",
	"store_prefix":         "store.prefix",
	"battle_strategy":      "battle.strategy",
	"battle_seed":          "battle.seed",
	"logging_level":        "logging.level",
	"logging_format":       "logging.format",
}

// Maps GOBATTLE_STORE_REDIS_ADDR to store.redis_addr.
// Unknown variables are skipped.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			list = append(list, part)
		}
	}
	return list
}

func (c *Config) Validate() error {
	if c.Library.Root == "" {
		return fmt.Errorf("%w: library.root is empty", ErrInvalidConfig)
	}
	if len(c.Library.Kinds) == 0 {
		return fmt.Errorf("%w: library.kinds is empty", ErrInvalidConfig)
	}
	for _, kind := range c.Library.Kinds {
		if !slices.Contains(Kinds, kind) {
			return fmt.Errorf("%w: unknown media kind %q", ErrInvalidConfig, kind)
		}
	}

	if !slices.Contains(Backends, c.Store.Backend) {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.Backend == "badger" && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required for badger", ErrInvalidConfig)
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		return fmt.Errorf("%w: store.redis_addr is required for redis", ErrInvalidConfig)
	}

	if !slices.Contains(core.StrategyNames(), c.Battle.Strategy) {
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, core.ErrUnknownStrategy, c.Battle.Strategy)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// LoggerConfig returns the configuration of the logger
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	}
}
