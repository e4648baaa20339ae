// Package config reads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/elipaulman/hack-ohio-2025/builder"
	"github.com/elipaulman/hack-ohio-2025/logger"
	"github.com/elipaulman/hack-ohio-2025/query"
)

// Environment variable names.
const (
	EnvAddr            = "WAYFIND_ADDR"
	EnvManifest        = "WAYFIND_MANIFEST"
	EnvStairs          = "WAYFIND_STAIRS"
	EnvSpatialIndex    = "WAYFIND_SPATIAL_INDEX"
	EnvLogLevel        = "WAYFIND_LOG_LEVEL"
	EnvRouteTimeout    = "WAYFIND_ROUTE_TIMEOUT"
	EnvCacheSize       = "WAYFIND_CACHE_SIZE"
	EnvLoadParallelism = "WAYFIND_LOAD_PARALLELISM"
	EnvMaxIterations   = "WAYFIND_MAX_ITERATIONS"
)

// Config holds the server settings.
type Config struct {
	Addr            string
	Manifest        string
	Stairs          string // empty means the embedded table
	SpatialIndex    builder.IndexKind
	LogLevel        slog.Level
	RouteTimeout    time.Duration
	CacheSize       int
	LoadParallelism int
	MaxIterations   int // A* expansion bound per search, 0 for none
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		Manifest:        "data/floors.json",
		SpatialIndex:    builder.IndexLinear,
		LogLevel:        slog.LevelInfo,
		RouteTimeout:    5 * time.Second,
		CacheSize:       256,
		LoadParallelism: 4,
	}
}

// Load reads envFiles (".env" when none are given) into the environment,
// without overriding variables that are already set, then parses the
// WAYFIND_* variables. Missing env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: %s: %w", f, err)
		}
		logger.Logger().Debug("loaded env file", "file", f)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv parses settings through lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup(EnvManifest); ok && v != "" {
		cfg.Manifest = v
	}
	if v, ok := lookup(EnvStairs); ok {
		cfg.Stairs = v
	}
	if v, ok := lookup(EnvSpatialIndex); ok {
		kind, err := builder.ParseIndexKind(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvSpatialIndex, err)
		}
		cfg.SpatialIndex = kind
	}
	if v, ok := lookup(EnvLogLevel); ok {
		level, valid := logger.ParseLevel(v)
		if !valid {
			return Config{}, fmt.Errorf("config: %s: unknown level %q", EnvLogLevel, v)
		}
		cfg.LogLevel = level
	}
	if v, ok := lookup(EnvRouteTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvRouteTimeout, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("config: %s must be positive, got %s", EnvRouteTimeout, d)
		}
		cfg.RouteTimeout = d
	}

	var err error
	if cfg.CacheSize, err = intVar(lookup, EnvCacheSize, cfg.CacheSize, 0); err != nil {
		return Config{}, err
	}
	if cfg.LoadParallelism, err = intVar(lookup, EnvLoadParallelism, cfg.LoadParallelism, 1); err != nil {
		return Config{}, err
	}
	if cfg.MaxIterations, err = intVar(lookup, EnvMaxIterations, cfg.MaxIterations, 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func intVar(lookup func(string) (string, bool), name string, def, min int) (int, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s not an integer: %q", name, v)
	}
	if n < min {
		return 0, fmt.Errorf("config: %s must be >= %d, got %d", name, min, n)
	}
	return n, nil
}

// BuildOptions returns the graph construction options for cfg.
func (c Config) BuildOptions() builder.Options {
	opts := builder.DefaultOptions()
	opts.Index = c.SpatialIndex
	return opts
}

// QueryOptions returns the per-floor query options for cfg.
func (c Config) QueryOptions() query.Options {
	return query.Options{
		CacheSize:     c.CacheSize,
		MaxIterations: c.MaxIterations,
	}
}
