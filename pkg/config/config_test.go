package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mindflow.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Layout.PrimaryRadius != 200 {
		t.Errorf("PrimaryRadius = %v, want 200", cfg.Layout.PrimaryRadius)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want the default", cfg.Server.Addr)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
primary_radius = 150.0

[server]
addr = ":9090"
read_timeout = "5s"

[cache]
backend = "redis"

[cache.redis]
addr = "redis.internal:6379"
db = 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.PrimaryRadius != 150 {
		t.Errorf("PrimaryRadius = %v, want 150", cfg.Layout.PrimaryRadius)
	}
	// Unset fields keep their defaults.
	if cfg.Layout.SecondaryRadius != 100 {
		t.Errorf("SecondaryRadius = %v, want default 100", cfg.Layout.SecondaryRadius)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if time.Duration(cfg.Server.ReadTimeout) != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", time.Duration(cfg.Server.ReadTimeout))
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.Redis.Addr != "redis.internal:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Cache.Redis)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("explicit missing file should fail")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %q, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"BadTOML", `[layout` + "\n"},
		{"BadBackend", "[cache]\nbackend = \"memcached\"\n"},
		{"BadGeometry", "[layout]\nprimary_radius = -10.0\n"},
		{"EmptyAddr", "[server]\naddr = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Errorf("Load should reject:\n%s", tt.content)
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	cfg := Default()
	cfg.Layout.SpreadDegrees = 45
	g := cfg.Geometry()
	if g.SpreadDegrees != 45 || g.OriginX != 400 {
		t.Errorf("Geometry() = %+v", g)
	}
}

func TestOpenCacheFile(t *testing.T) {
	cfg := Default()
	c, err := cfg.OpenCache(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()
}

func TestOpenCacheNone(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = BackendNone
	c, err := cfg.OpenCache(context.Background(), "")
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()
}
