package pipeline

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the pipeline's state and run stats over HTTP. It is only
// started in daemon mode.
type Server struct {
	logger   *zap.Logger
	pipeline *Pipeline
}

type Info struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Stats Stats  `json:"stats"`
}

func NewServer(p *Pipeline, logger *zap.Logger) *Server {
	return &Server{
		logger:   logger,
		pipeline: p,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/pipeline", func(r chi.Router) {
		r.Get("/", s.getPipeline)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getPipeline(w http.ResponseWriter, r *http.Request) {
	info := Info{
		Name:  s.pipeline.Name(),
		State: s.pipeline.State.Current(),
		Stats: s.pipeline.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	s.logger.Info("starting pipeline server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down pipeline server")
		srv.Shutdown(context.Background())
	}()

	return srv.ListenAndServe()
}
