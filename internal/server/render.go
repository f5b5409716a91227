package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/matzehuels/routetrace/pkg/cache"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/render"
	"github.com/matzehuels/routetrace/pkg/route"
)

var contentTypes = map[string]string{
	render.FormatSVG: "image/svg+xml",
	render.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	render.FormatPNG: "image/png",
	render.FormatPDF: "application/pdf",
}

// renderNetwork draws the whole network.
func (s *Server) renderNetwork(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := cache.ArtifactKeyOpts{Kind: cache.ArtifactNetwork, Format: format}
	s.serveArtifact(w, r, opts, func(ctx context.Context) ([]byte, error) {
		var dot string
		_ = s.planner.View(func(g *network.Graph) error {
			dot = render.ToDOT(g, render.Highlight{})
			return nil
		})
		return render.Render(ctx, dot, format)
	})
}

// renderRoute draws a search. Without step the drawing shows every visited
// station and the path; with step it shows that frame of the animation,
// where the last frame is the path.
func (s *Server) renderRoute(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	startKey, endKey := q.Get("startNodeId"), q.Get("endNodeId")

	opts := cache.ArtifactKeyOpts{Kind: cache.ArtifactPath, Start: startKey, End: endKey, Format: format}
	step := -1
	if raw := q.Get("step"); raw != "" {
		step, err = strconv.Atoi(raw)
		if err != nil || step < 0 {
			s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "step must be a non-negative integer"))
			return
		}
		opts.Kind = cache.ArtifactTrace
		opts.Step = step
	}

	s.serveArtifact(w, r, opts, func(ctx context.Context) ([]byte, error) {
		plan, err := s.planner.Route(ctx, startKey, endKey)
		if err != nil {
			return nil, err
		}
		h := render.Highlight{Visited: plan.Visited, Path: plan.Path}
		var frame *route.Frame
		if step >= 0 {
			frames := plan.Frames()
			if step >= len(frames) {
				return nil, errs.New(errs.ErrCodeInvalidInput, "step %d out of range (%d frames)", step, len(frames))
			}
			frame = &frames[step]
		}

		var dot string
		_ = s.planner.View(func(g *network.Graph) error {
			if frame != nil {
				dot = render.FrameDOT(g, *frame)
			} else {
				dot = render.ToDOT(g, h)
			}
			return nil
		})
		return render.Render(ctx, dot, format)
	})
}

// serveArtifact answers from the cache when possible and otherwise builds,
// stores and writes the artifact. Cache failures are logged, not returned.
func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, opts cache.ArtifactKeyOpts, build func(context.Context) ([]byte, error)) {
	ctx := r.Context()
	key := s.keyer.ArtifactKey(s.planner.Version(), opts)

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
	}
	status := "HIT"
	if !ok {
		status = "MISS"
		data, err = build(ctx)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}

	w.Header().Set("Content-Type", contentTypes[opts.Format])
	w.Header().Set("X-Cache", status)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func formatParam(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return render.FormatSVG, nil
	}
	if err := errs.ValidateFormat(format, render.Formats...); err != nil {
		return "", err
	}
	return format, nil
}
