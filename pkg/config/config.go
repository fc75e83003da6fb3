// Package config loads Mindflow configuration from TOML files.
//
// Configuration is optional: every field has a working default, a config
// file only overrides what it sets. The CLI looks for mindflow.toml in the
// working directory and the server accepts an explicit path.
package config

import (
	"context"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/YIFUNLIN/mindflow/pkg/cache"
	"github.com/YIFUNLIN/mindflow/pkg/errors"
	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
)

// Cache backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the full application configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig controls the radial placement geometry.
type LayoutConfig struct {
	OriginX         float64 `toml:"origin_x"`
	OriginY         float64 `toml:"origin_y"`
	PrimaryRadius   float64 `toml:"primary_radius"`
	SecondaryRadius float64 `toml:"secondary_radius"`
	SpreadDegrees   float64 `toml:"spread_degrees"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // none, file or redis
	Dir     string      `toml:"dir"`     // file backend, empty means the default cache dir
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds redis backend settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Duration lets TOML files write timeouts as "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	geom := mindmap.DefaultGeometry()
	return Config{
		Layout: LayoutConfig{
			OriginX:         geom.OriginX,
			OriginY:         geom.OriginY,
			PrimaryRadius:   geom.PrimaryRadius,
			SecondaryRadius: geom.SecondaryRadius,
			SpreadDegrees:   geom.SpreadDegrees,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Load reads a TOML config file on top of the defaults. A missing file is
// not an error if path is empty; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline would reject.
func (c *Config) Validate() error {
	if err := c.Geometry().Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache backend: %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server addr must not be empty")
	}
	return nil
}

// Geometry returns the configured layout geometry.
func (c *Config) Geometry() mindmap.Geometry {
	return mindmap.Geometry{
		OriginX:         c.Layout.OriginX,
		OriginY:         c.Layout.OriginY,
		PrimaryRadius:   c.Layout.PrimaryRadius,
		SecondaryRadius: c.Layout.SecondaryRadius,
		SpreadDegrees:   c.Layout.SpreadDegrees,
	}
}

// OpenCache constructs the configured cache backend. defaultDir is used for
// the file backend when no directory is configured. The context bounds the
// redis connectivity check.
func (c *Config) OpenCache(ctx context.Context, defaultDir string) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		})
	default:
		dir := c.Cache.Dir
		if dir == "" {
			dir = defaultDir
		}
		return cache.NewFileCache(dir)
	}
}
