// Package api provides the HTTP surface for the media kit service.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/analytics"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/config"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

// Server wires the analytics pipeline and store behind the REST routes.
type Server struct {
	pipeline *analytics.Pipeline
	store    database.Store
	cfg      config.ServerConfig
}

func NewServer(pipeline *analytics.Pipeline, store database.Store, cfg config.ServerConfig) *Server {
	return &Server{pipeline: pipeline, store: store, cfg: cfg}
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/influencers", s.handleListInfluencers)
	r.Get("/api/influencers/{username}", s.handleGetInfluencer)
	r.Get("/api/health", s.handleHealth)

	return r
}

// ListenAndServe blocks serving HTTP until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("INFO: HTTP server listening on %s", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("INFO: Shutting down HTTP server.")
		return srv.Shutdown(context.Background())
	}
}

// requestID stamps every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode JSON response: %v", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}
