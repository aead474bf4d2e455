package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"img2text/internal/config"
	"img2text/internal/extract"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, extractor *extract.Extractor, engineName string) *Server {
	h := NewExtractHandler(extractor, cfg, engineName)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Run-ID"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.Health)
		api.Post("/extract", h.Extract)
		api.Post("/preview", h.Preview)
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv, router: r}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
