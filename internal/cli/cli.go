// Package cli implements the routetrace command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routetrace/pkg/buildinfo"
	"github.com/matzehuels/routetrace/pkg/cache"
	"github.com/matzehuels/routetrace/pkg/config"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "routetrace"

	// artifactKeyType labels artifact cache metrics.
	artifactKeyType = "artifact"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Routetrace finds shortest transit routes and shows how the search got there",
		Long:         `Routetrace plans shortest routes through a multi-modal transit network (walking, bus, metro, train, taxi) and records the order in which the search explored stations, for step-by-step visualization.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultFile+" if present)")

	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.dbCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Planner Factory
// =============================================================================

// loadNetwork reads the configured source.
func (c *CLI) loadNetwork(ctx context.Context) (*source.Network, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	prog := newProgress(c.Logger)
	src, err := source.Open(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	net, err := source.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if net.Report.Skipped > 0 {
		c.Logger.Warn("segments reference unknown stations", "skipped", net.Report.Skipped)
	}
	prog.done("Loaded network from " + src.Name())
	c.Logger.Debug("network", "stations", net.Report.Stations, "edges", net.Report.Edges, "hash", net.Hash)
	return net, nil
}

// newPlanner loads the network and wraps it in a planner.
func (c *CLI) newPlanner(ctx context.Context) (*planner.Planner, error) {
	net, err := c.loadNetwork(ctx)
	if err != nil {
		return nil, err
	}
	cfg, _ := c.config()
	return planner.New(net.Graph, net.Catalog, plannerOptions(cfg), c.Logger), nil
}

func plannerOptions(cfg *config.Config) planner.Options {
	return planner.Options{
		SnapRadiusKm: cfg.Routing.SnapRadiusKm,
		Link: network.LinkOptions{
			RadiusKm:   cfg.Routing.LinkRadiusKm,
			WalkingKmh: cfg.Routing.WalkingKmh,
		},
		SearchTimeout: cfg.Routing.SearchTimeout,
	}
}

// newCache builds the configured artifact cache.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc, artifactKeyType), nil
	case config.CacheFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc, artifactKeyType), nil
	}
	return cache.NewNullCache(), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/routetrace/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
