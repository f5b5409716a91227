// Package config loads routetrace settings.
//
// Settings are resolved in order, later steps overriding earlier ones:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file (routetrace.toml in the working directory, optional)
//  3. A .env file in the working directory, if present
//  4. ROUTETRACE_* environment variables
//
// An example file:
//
//	[data]
//	source = "sqlite"
//	dsn = "file:network.db"
//
//	[routing]
//	snap_radius_km = 0.5
//	walking_kmh = 4.5
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "12h"
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/routetrace/pkg/errors"
)

// DefaultFile is read when Load is called without a path.
const DefaultFile = "routetrace.toml"

// Network sources.
const (
	SourceJSON     = "json"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
	SourceMongo    = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete application configuration.
type Config struct {
	Data    DataConfig    `toml:"data"`
	Routing RoutingConfig `toml:"routing"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	NATS    NATSConfig    `toml:"nats"`
}

// DataConfig selects where the network is loaded from.
type DataConfig struct {
	Source string `toml:"source"`
	// StationsFile and SegmentsFile may be local paths or http(s) URLs.
	StationsFile  string `toml:"stations_file"`
	SegmentsFile  string `toml:"segments_file"`
	DSN           string `toml:"dsn"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	// MirrorDir, when set, keeps the last download of each URL so a
	// restart survives the remote being down.
	MirrorDir string        `toml:"mirror_dir"`
	MirrorTTL time.Duration `toml:"mirror_ttl"`
}

type RoutingConfig struct {
	// SnapRadiusKm is how close a coordinate must be to a station to start
	// or end there instead of at an ad hoc point.
	SnapRadiusKm float64 `toml:"snap_radius_km"`
	// LinkRadiusKm bounds the walking links of an ad hoc point.
	LinkRadiusKm  float64       `toml:"link_radius_km"`
	WalkingKmh    float64       `toml:"walking_kmh"`
	SearchTimeout time.Duration `toml:"search_timeout"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// NATSConfig enables trace streaming when URL is set.
type NATSConfig struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
	ClientName    string `toml:"client_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Source:        SourceJSON,
			StationsFile:  "data/StopsAndStations.json",
			SegmentsFile:  "data/Transports.json",
			MongoDatabase: "routetrace",
			MirrorTTL:     time.Hour,
		},
		Routing: RoutingConfig{
			SnapRadiusKm:  0.5,
			LinkRadiusKm:  2,
			WalkingKmh:    5,
			SearchTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     24 * time.Hour,
		},
		NATS: NATSConfig{
			SubjectPrefix: "routetrace.trace",
			ClientName:    "routetrace",
		},
	}
}

// Load resolves the configuration. An empty path reads DefaultFile if it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		switch {
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		default:
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "config file %s", path)
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}
	str := func(dst *string, keys ...string) {
		if v, ok := get(keys...); ok {
			*dst = v
		}
	}
	float := func(dst *float64, key string) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "invalid %s: %q", key, v)
		}
		*dst = f
		return nil
	}
	duration := func(dst *time.Duration, key string) error {
		v, ok := get(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "invalid %s: %q", key, v)
		}
		*dst = d
		return nil
	}

	str(&c.Data.Source, "ROUTETRACE_DATA_SOURCE")
	str(&c.Data.StationsFile, "ROUTETRACE_STATIONS_FILE")
	str(&c.Data.SegmentsFile, "ROUTETRACE_SEGMENTS_FILE")
	str(&c.Data.DSN, "ROUTETRACE_DATABASE_URL", "DATABASE_URL")
	str(&c.Data.MongoURI, "ROUTETRACE_MONGO_URI", "MONGO_URI")
	str(&c.Data.MongoDatabase, "ROUTETRACE_MONGO_DATABASE")
	str(&c.Data.MirrorDir, "ROUTETRACE_MIRROR_DIR")
	str(&c.Server.Addr, "ROUTETRACE_ADDR")
	str(&c.Cache.Backend, "ROUTETRACE_CACHE_BACKEND")
	str(&c.Cache.Dir, "ROUTETRACE_CACHE_DIR")
	str(&c.Cache.RedisURL, "ROUTETRACE_REDIS_URL", "REDIS_URL")
	str(&c.NATS.URL, "ROUTETRACE_NATS_URL", "NATS_URL")
	str(&c.NATS.SubjectPrefix, "ROUTETRACE_NATS_SUBJECT_PREFIX")

	if v, ok := get("ROUTETRACE_CORS_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}

	for _, f := range []struct {
		dst *float64
		key string
	}{
		{&c.Routing.SnapRadiusKm, "ROUTETRACE_SNAP_RADIUS_KM"},
		{&c.Routing.LinkRadiusKm, "ROUTETRACE_LINK_RADIUS_KM"},
		{&c.Routing.WalkingKmh, "ROUTETRACE_WALKING_KMH"},
	} {
		if err := float(f.dst, f.key); err != nil {
			return err
		}
	}
	if err := duration(&c.Routing.SearchTimeout, "ROUTETRACE_SEARCH_TIMEOUT"); err != nil {
		return err
	}
	if err := duration(&c.Data.MirrorTTL, "ROUTETRACE_MIRROR_TTL"); err != nil {
		return err
	}
	return duration(&c.Cache.TTL, "ROUTETRACE_CACHE_TTL")
}

// Validate checks value ranges and that each selected backend has what it
// needs to connect.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceJSON:
		if c.Data.StationsFile == "" || c.Data.SegmentsFile == "" {
			return errs.New(errs.ErrCodeInvalidInput, "data: json source needs stations_file and segments_file")
		}
	case SourcePostgres, SourceSQLite:
		if c.Data.DSN == "" {
			return errs.New(errs.ErrCodeInvalidInput, "data: %s source needs dsn", c.Data.Source)
		}
	case SourceMongo:
		if c.Data.MongoURI == "" || c.Data.MongoDatabase == "" {
			return errs.New(errs.ErrCodeInvalidInput, "data: mongo source needs mongo_uri and mongo_database")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "data: unknown source %q", c.Data.Source)
	}

	if c.Routing.SnapRadiusKm <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "routing: snap_radius_km must be positive")
	}
	if c.Routing.LinkRadiusKm <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "routing: link_radius_km must be positive")
	}
	if c.Routing.WalkingKmh < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "routing: walking_kmh cannot be negative")
	}
	if c.Routing.SearchTimeout < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "routing: search_timeout cannot be negative")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache: redis backend needs redis_url")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "cache: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache: ttl cannot be negative")
	}

	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		return errs.New(errs.ErrCodeInvalidInput, "nats: subject_prefix cannot be empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
