package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/routetrace/internal/metrics"
	"github.com/matzehuels/routetrace/internal/server"
	"github.com/matzehuels/routetrace/pkg/cache"
	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/publish"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map API over HTTP",
		Long: `Serve the map API. Send SIGHUP to reload the network from its source
without restarting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			collector := metrics.NewCollector()
			collector.Register()

			p, err := c.newPlanner(ctx)
			if err != nil {
				return err
			}

			store, err := newCache(ctx, cfg.Cache, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := server.Options{
				Planner:        p,
				Cache:          store,
				Keyer:          cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName),
				CacheTTL:       cfg.Cache.TTL,
				Metrics:        collector,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Logger:         c.Logger,
			}
			if cfg.NATS.URL != "" {
				pub, err := publish.NewNATSPublisher(publish.Options{
					URL:           cfg.NATS.URL,
					ClientName:    cfg.NATS.ClientName,
					SubjectPrefix: cfg.NATS.SubjectPrefix,
					Metrics:       collector,
					Logger:        c.Logger,
				})
				if err != nil {
					return err
				}
				defer pub.Close()
				opts.Publisher = pub
			}

			go c.reloadOnHangup(ctx, p)
			return server.New(opts).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

// reloadOnHangup reloads the network into p on every SIGHUP until ctx ends.
// A failed reload keeps the current network.
func (c *CLI) reloadOnHangup(ctx context.Context, p *planner.Planner) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			net, err := c.loadNetwork(ctx)
			if err != nil {
				c.Logger.Error("reload failed", "err", err)
				continue
			}
			p.Replace(net.Graph, net.Catalog)
		}
	}
}
