// Package server provides the HTTP server for the Mudra gesture classifier.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Pipeline  *api.Pipeline
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	p := s.config.Pipeline
	if p == nil {
		return
	}

	s.mux.Handle("/api/samples", api.NewSamplesHandler(p))
	s.mux.Handle("/api/train", api.NewTrainHandler(p))
	s.mux.Handle("/api/predict", api.NewPredictHandler(p))
	s.mux.Handle("/api/dataset", api.NewDatasetHandler(p))
	s.mux.Handle("/api/model-info", api.NewModelInfoHandler(p))

	if p.Detector != nil {
		s.mux.Handle("/api/detect", api.NewDetectHandler(p))
		s.mux.Handle("/api/classify", NewClassifyStreamHandler(p))
	}

	if p.Registry != nil {
		gestureHandler := api.NewGestureHandler(p.Registry)
		s.mux.Handle("/api/gestures", gestureHandler)
		s.mux.Handle("/api/gestures/", gestureHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	modelLoaded := false
	if s.config.Pipeline != nil && s.config.Pipeline.Engine != nil {
		if _, err := s.config.Pipeline.Engine.Model(); err == nil {
			modelLoaded = true
		}
	}

	response := map[string]interface{}{
		"status":       "ok",
		"uptime":       time.Since(s.start).String(),
		"model_loaded": modelLoaded,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
