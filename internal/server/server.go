// Package server exposes the planner over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /metrics
//	GET  /api/map/nodes
//	POST /api/map/nodes
//	POST /api/map/segments
//	GET  /api/map/route?startNodeId=&endNodeId=
//	GET  /api/map/route/points?fromLat=&fromLon=&toLat=&toLon=
//	GET  /api/map/plan?startNodeId=&endNodeId=
//	GET  /api/map/route/svg?startNodeId=&endNodeId=&step=&format=
//	GET  /api/map/svg?format=
//
// The route endpoints answer with the list of resolved segments; the plan
// endpoint answers with the full plan including the exploration order.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/routetrace/internal/metrics"
	"github.com/matzehuels/routetrace/pkg/cache"
	"github.com/matzehuels/routetrace/pkg/planner"
)

// Publisher streams a plan's trace to subscribers.
type Publisher interface {
	PublishTrace(ctx context.Context, plan *planner.Plan) error
}

// Options configures a Server. Only Planner is required.
type Options struct {
	Planner        *planner.Planner
	Cache          cache.Cache
	Keyer          cache.Keyer
	CacheTTL       time.Duration
	Publisher      Publisher
	Metrics        *metrics.Collector
	AllowedOrigins []string
	Logger         *log.Logger
}

// Server serves the map API.
type Server struct {
	planner   *planner.Planner
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	publisher Publisher
	metrics   *metrics.Collector
	origins   []string
	logger    *log.Logger

	publishTimeout time.Duration
}

func New(opts Options) *Server {
	if opts.Planner == nil {
		panic("server: nil planner")
	}
	s := &Server{
		planner:        opts.Planner,
		cache:          opts.Cache,
		keyer:          opts.Keyer,
		ttl:            opts.CacheTTL,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		origins:        opts.AllowedOrigins,
		logger:         opts.Logger,
		publishTimeout: 5 * time.Second,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Plan-ID", "X-Cache"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/map", func(r chi.Router) {
		r.Get("/nodes", s.listNodes)
		r.Post("/nodes", s.addNode)
		r.Post("/segments", s.addSegment)
		r.Get("/route", s.routeByKey)
		r.Get("/route/points", s.routeByPoints)
		r.Get("/route/svg", s.renderRoute)
		r.Get("/plan", s.planByKey)
		r.Get("/svg", s.renderNetwork)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe logs each request and records it under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)
		d := time.Since(began)

		pattern := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(pattern, status, d)
		}
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// publish streams plan in the background so clients are not held up by
// the broker.
func (s *Server) publish(ctx context.Context, plan *planner.Plan) {
	if s.publisher == nil || !plan.Found() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	go func() {
		defer cancel()
		if err := s.publisher.PublishTrace(ctx, plan); err != nil {
			s.logger.Warn("publish trace failed", "id", plan.ID, "err", err)
		}
	}()
}
