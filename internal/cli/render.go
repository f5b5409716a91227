package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/routetrace/pkg/cache"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/render"
	"github.com/matzehuels/routetrace/pkg/route"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path, or base path when several files are written
	formats  []string // svg, dot, png, pdf
	from, to string   // coordinates instead of station names
	step     int      // single frame to draw; -1 draws the whole search
	frames   bool     // write every frame
	noCache  bool
}

// renderCommand draws the network, a route, or frames of its search.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{step: -1}

	cmd := &cobra.Command{
		Use:   "render [start end]",
		Short: "Draw the network or a route search",
		Long: `Draw the network with Graphviz. With a start and end, the drawing marks the
stations the search visited and the route it found; --step draws a single
frame of the search and --frames writes all of them.`,
		Example: `  routetrace render -o network.svg
  routetrace render Taksim Kadikoy -o route.svg
  routetrace render Taksim Kadikoy --frames -o frames/route -f svg`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := errs.ValidateFormat(f, render.Formats...); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: network.<format> or route.<format>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats, comma separated: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVar(&opts.from, "from", "", "start coordinate as lat,lon")
	cmd.Flags().StringVar(&opts.to, "to", "", "end coordinate as lat,lon")
	cmd.Flags().IntVar(&opts.step, "step", -1, "draw only this frame of the search (0-based)")
	cmd.Flags().BoolVar(&opts.frames, "frames", false, "write every frame of the search")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

// drawing is one picture to write.
type drawing struct {
	name   string
	suffix string // distinguishes frames sharing one output path
	key    cache.ArtifactKeyOpts
	dot    func(g *network.Graph) string
}

func (c *CLI) runRender(ctx context.Context, args []string, opts renderOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	store, err := newCache(ctx, cfg.Cache, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	pl, err := c.newPlanner(ctx)
	if err != nil {
		return err
	}

	var p *planner.Plan
	drawings := []drawing{{
		name: "network",
		key:  cache.ArtifactKeyOpts{Kind: cache.ArtifactNetwork},
		dot: func(g *network.Graph) string {
			return render.ToDOT(g, render.Highlight{})
		},
	}}
	if len(args) > 0 || opts.from != "" || opts.to != "" {
		if p, err = c.plan(ctx, pl, args, opts.from, opts.to); err != nil {
			return err
		}
		if drawings, err = routeDrawings(p, opts); err != nil {
			return err
		}
	}

	// Coordinate plans may carry a private graph with ad hoc points. Those
	// drawings are not cached.
	private := p != nil && p.Graph != nil
	version := ""
	if !private {
		version = pl.Version()
	}
	view := func(fn func(*network.Graph) string) string {
		if private {
			return fn(p.Graph)
		}
		var out string
		_ = pl.View(func(g *network.Graph) error {
			out = fn(g)
			return nil
		})
		return out
	}

	keyer := cache.NewDefaultKeyer()
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	defer spinner.Stop()

	for _, d := range drawings {
		for _, format := range opts.formats {
			path := outputPath(opts.output, d, format, len(opts.formats) > 1)
			d.key.Format = format

			var data []byte
			var cached bool
			if version != "" {
				data, cached, _ = store.Get(ctx, keyer.ArtifactKey(version, d.key))
			}
			if !cached {
				if data, err = render.Render(ctx, view(d.dot), format); err != nil {
					return err
				}
				if version != "" {
					if err := store.Set(ctx, keyer.ArtifactKey(version, d.key), data, cfg.Cache.TTL); err != nil {
						c.Logger.Warn("cache write failed", "err", err)
					}
				}
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			spinner.Stop()
			printFile(path, cached)
		}
	}
	return nil
}

// routeDrawings picks the drawings a route render produces.
func routeDrawings(p *planner.Plan, opts renderOpts) ([]drawing, error) {
	base := cache.ArtifactKeyOpts{Start: p.Start.Key, End: p.End.Key}
	frames := p.Frames()

	frameDrawing := func(f route.Frame) drawing {
		key := base
		key.Kind = cache.ArtifactTrace
		key.Step = f.Index
		return drawing{
			name:   "route",
			suffix: fmt.Sprintf("-%03d", f.Index),
			key:    key,
			dot:    func(g *network.Graph) string { return render.FrameDOT(g, f) },
		}
	}

	switch {
	case opts.frames:
		if len(frames) == 0 {
			return nil, errs.New(errs.ErrCodeNotFound, "search has no frames")
		}
		ds := make([]drawing, len(frames))
		for i, f := range frames {
			ds[i] = frameDrawing(f)
		}
		return ds, nil
	case opts.step >= 0:
		if opts.step >= len(frames) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "step %d out of range (%d frames)", opts.step, len(frames))
		}
		return []drawing{frameDrawing(frames[opts.step])}, nil
	}

	key := base
	key.Kind = cache.ArtifactPath
	h := render.Highlight{Visited: p.Visited, Path: p.Path}
	return []drawing{{
		name: "route",
		key:  key,
		dot:  func(g *network.Graph) string { return render.ToDOT(g, h) },
	}}, nil
}

// outputPath names an output file. A plain -o value is used as is; with
// several formats or frames it is a base path that gets the frame suffix
// and format extension appended.
func outputPath(output string, d drawing, format string, manyFormats bool) string {
	if output != "" && d.suffix == "" && !manyFormats {
		return output
	}
	base := d.name
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return base + d.suffix + "." + format
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
