package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/routetrace/pkg/errors"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routetrace.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Routing.SnapRadiusKm != 0.5 || cfg.Routing.LinkRadiusKm != 2 || cfg.Routing.WalkingKmh != 5 {
		t.Errorf("routing defaults = %+v", cfg.Routing)
	}
	if cfg.Server.Addr != ":8080" || cfg.Cache.Backend != CacheFile || cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("defaults = %+v %+v", cfg.Server, cfg.Cache)
	}
	if cfg.NATS.SubjectPrefix != "routetrace.trace" || cfg.NATS.URL != "" {
		t.Errorf("nats defaults = %+v", cfg.NATS)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Source != SourceJSON {
		t.Errorf("source = %q", cfg.Data.Source)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[data]
source = "sqlite"
dsn = "file:network.db"

[routing]
snap_radius_km = 0.25
walking_kmh = 4.5
search_timeout = "3s"

[server]
allowed_origins = ["http://localhost:5173"]

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "12h"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Data.Source != SourceSQLite || cfg.Data.DSN != "file:network.db" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Routing.SnapRadiusKm != 0.25 || cfg.Routing.WalkingKmh != 4.5 || cfg.Routing.SearchTimeout != 3*time.Second {
		t.Errorf("routing = %+v", cfg.Routing)
	}
	if cfg.Routing.LinkRadiusKm != 2 {
		t.Errorf("unset key should keep default, got %v", cfg.Routing.LinkRadiusKm)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != 12*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "[routing]\nsnap_radius_km = 0.25\n")
	t.Setenv("ROUTETRACE_SNAP_RADIUS_KM", "0.75")
	t.Setenv("ROUTETRACE_ADDR", ":9090")
	t.Setenv("ROUTETRACE_CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("ROUTETRACE_CACHE_TTL", "90m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Routing.SnapRadiusKm != 0.75 {
		t.Errorf("env should override file: snap = %v", cfg.Routing.SnapRadiusKm)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("fallback NATS_URL not applied: %q", cfg.NATS.URL)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://generic:6379")
	t.Setenv("ROUTETRACE_REDIS_URL", "redis://specific:6379")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.RedisURL != "redis://specific:6379" {
		t.Errorf("redis url = %q", cfg.Cache.RedisURL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		env      map[string]string
		wantCode errs.Code
	}{
		{
			name:     "MissingExplicitFile",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") },
			wantCode: errs.ErrCodeFileNotFound,
		},
		{
			name:     "MalformedFile",
			path:     func(t *testing.T) string { return writeFile(t, "[routing\n") },
			wantCode: errs.ErrCodeInvalidFormat,
		},
		{
			name:     "BadFloat",
			path:     func(*testing.T) string { return "" },
			env:      map[string]string{"ROUTETRACE_WALKING_KMH": "fast"},
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:     "BadDuration",
			path:     func(*testing.T) string { return "" },
			env:      map[string]string{"ROUTETRACE_SEARCH_TIMEOUT": "soon"},
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:     "InvalidAfterOverride",
			path:     func(*testing.T) string { return "" },
			env:      map[string]string{"ROUTETRACE_CACHE_BACKEND": "memcached"},
			wantCode: errs.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path(t))
			if !errs.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"Default", func(*Config) {}, true},
		{"PostgresNeedsDSN", func(c *Config) { c.Data.Source = SourcePostgres }, false},
		{"PostgresWithDSN", func(c *Config) {
			c.Data.Source = SourcePostgres
			c.Data.DSN = "postgres://localhost/transit"
		}, true},
		{"MongoNeedsURI", func(c *Config) { c.Data.Source = SourceMongo }, false},
		{"UnknownSource", func(c *Config) { c.Data.Source = "csv" }, false},
		{"ZeroSnap", func(c *Config) { c.Routing.SnapRadiusKm = 0 }, false},
		{"NegativeWalk", func(c *Config) { c.Routing.WalkingKmh = -1 }, false},
		{"ZeroWalkAllowed", func(c *Config) { c.Routing.WalkingKmh = 0 }, true},
		{"RedisNeedsURL", func(c *Config) { c.Cache.Backend = CacheRedis }, false},
		{"NoCache", func(c *Config) { c.Cache.Backend = CacheNone }, true},
		{"NATSNeedsPrefix", func(c *Config) {
			c.NATS.URL = "nats://localhost"
			c.NATS.SubjectPrefix = ""
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
