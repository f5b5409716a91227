package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/geo"
	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/publish"
)

// nodesCommand lists the stations of the network.
func (c *CLI) nodesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.newPlanner(cmd.Context())
			if err != nil {
				return err
			}
			nodes := p.Stations()
			if asJSON {
				return writeJSON(cmd, nodes)
			}
			printStations(nodes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stations as JSON")
	return cmd
}

type routeOpts struct {
	from, to string
	asJSON   bool
	publish  bool
}

// routeCommand plans a route between two stations or two coordinates.
func (c *CLI) routeCommand() *cobra.Command {
	var opts routeOpts
	cmd := &cobra.Command{
		Use:   "route [start end]",
		Short: "Find the shortest route between two stations or coordinates",
		Long: `Find the shortest route between two stations, given by name, or between
two coordinates given as --from and --to "lat,lon". Coordinates close to a
station start or end there; others are linked to nearby stations on foot.`,
		Example: `  routetrace route Taksim Kadikoy
  routetrace route --from 41.0369,28.9850 --to 40.9906,29.0290 --json`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := c.planQuery(cmd.Context(), args, opts.from, opts.to)
			if err != nil {
				return err
			}
			if opts.publish {
				if err := c.publishPlan(cmd.Context(), plan); err != nil {
					return err
				}
			}
			if opts.asJSON {
				return writeJSON(cmd, plan)
			}
			printPlan(plan)
			if plan.Found() && len(args) == 2 {
				fmt.Fprintln(stdout)
				printNextStep("Step through the search", fmt.Sprintf("%s trace %q %q", appName, args[0], args[1]))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "start coordinate as lat,lon")
	cmd.Flags().StringVar(&opts.to, "to", "", "end coordinate as lat,lon")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "stream the trace to NATS")
	return cmd
}

// checkQuery validates route arguments: either two station names or both
// coordinates.
func checkQuery(args []string, from, to string) error {
	byPoints := from != "" || to != ""
	switch {
	case byPoints && len(args) > 0:
		return errs.New(errs.ErrCodeInvalidInput, "give either two stations or --from and --to, not both")
	case byPoints && (from == "" || to == ""):
		return errs.New(errs.ErrCodeInvalidInput, "--from and --to must be given together")
	case !byPoints && len(args) != 2:
		return errs.New(errs.ErrCodeInvalidInput, "need a start and an end station")
	}
	return nil
}

// plan answers a query checked by checkQuery.
func (c *CLI) plan(ctx context.Context, p *planner.Planner, args []string, from, to string) (*planner.Plan, error) {
	if err := checkQuery(args, from, to); err != nil {
		return nil, err
	}
	if len(args) == 2 {
		return p.Route(ctx, args[0], args[1])
	}

	a, err := parsePoint("--from", from)
	if err != nil {
		return nil, err
	}
	b, err := parsePoint("--to", to)
	if err != nil {
		return nil, err
	}
	return p.RouteBetween(ctx, a, b)
}

// planQuery checks the query, loads the network and plans.
func (c *CLI) planQuery(ctx context.Context, args []string, from, to string) (*planner.Plan, error) {
	if err := checkQuery(args, from, to); err != nil {
		return nil, err
	}
	p, err := c.newPlanner(ctx)
	if err != nil {
		return nil, err
	}
	return c.plan(ctx, p, args, from, to)
}

func (c *CLI) publishPlan(ctx context.Context, plan *planner.Plan) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if cfg.NATS.URL == "" {
		return errs.New(errs.ErrCodeInvalidInput, "--publish needs a NATS URL (nats.url or ROUTETRACE_NATS_URL)")
	}
	pub, err := publish.NewNATSPublisher(publish.Options{
		URL:           cfg.NATS.URL,
		ClientName:    cfg.NATS.ClientName,
		SubjectPrefix: cfg.NATS.SubjectPrefix,
		Logger:        c.Logger,
	})
	if err != nil {
		return err
	}
	defer pub.Close()

	if err := pub.PublishTrace(ctx, plan); err != nil {
		return err
	}
	printSuccess("Published %d frames to %s", len(plan.Frames()), pub.Subject(plan.ID.String()))
	return nil
}

// parsePoint parses "lat,lon".
func parsePoint(flag, s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, errs.New(errs.ErrCodeInvalidCoordinate, "%s must be lat,lon", flag)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return geo.Point{}, errs.New(errs.ErrCodeInvalidCoordinate, "%s must be lat,lon", flag)
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
