// Package server exposes the OpenAI-compatible HTTP surface, the project
// context endpoints, and the model management endpoints over chi.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/ollamachat/internal/relay"
)

// Config holds server configuration.
type Config struct {
	Host      string
	Port      int
	StaticDir string // directory containing the frontend; empty disables it
	AllowAll  bool   // allow all CORS origins (dev mode)

	// Context assembly bounds for the /api/context endpoints.
	TreeDepth   int
	ScanDepth   int
	MaxFileSize int64
	Ignore      []string
}

// Server hosts the relay over HTTP.
type Server struct {
	cfg        Config
	relay      *relay.Relay
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server wired to the given relay.
func New(cfg Config, rly *relay.Relay) *Server {
	s := &Server{
		cfg:   cfg,
		relay: rly,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware. No request timeout here: streaming completions and model
	// pulls hold the response open for as long as generation runs.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// OpenAI-compatible surface.
	r.Get("/v1/models", s.handleListModels)
	r.Post("/v1/chat/completions", s.handleChatCompletions)

	// Project context.
	r.Route("/api/context", func(r chi.Router) {
		r.Get("/tree", s.handleContextTree)
		r.Get("/readme", s.handleContextReadme)
		r.Post("/files", s.handleContextFiles)
	})

	// Model management.
	r.Route("/api/models", func(r chi.Router) {
		r.Post("/pull", s.handlePullModel)
		r.Get("/check/*", s.handleCheckModel)
		r.Get("/recommended", s.handleRecommendedModels)
		r.Get("/search", s.handleSearchModels)
	})

	// Streaming chat for the bundled frontend.
	r.Get("/ws/chat", s.handleChatSocket)

	s.mountStatic(r)

	return r
}

// mountStatic serves the bundled frontend when the static directory exists.
func (s *Server) mountStatic(r chi.Router) {
	// Browser probes that would otherwise 404.
	noContent := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
	r.Get("/favicon.ico", noContent)
	r.Get("/.well-known/appspecific/com.chrome.devtools.json", noContent)

	staticDir := s.cfg.StaticDir
	if staticDir == "" {
		return
	}

	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
		r.Handle("/static/*", fs)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<h1>ollamachat</h1><p>Frontend not found. Please check static/index.html</p>"))
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured host and port.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ollamachat server listening on http://%s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
