// Package server exposes the mudra service over HTTP and websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/monitoring"
	"github.com/ayusman/mudra/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	// App is the running gesture service. Without it only the health
	// endpoint is served.
	App       *app.App
	StaticDir string
}

// Server is the HTTP front end of the mudra service.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	stream *StreamHandler
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

	if a := s.config.App; a != nil {
		templates := api.NewTemplateHandler(a.Recognizer(), gesture.NewTrainer(a.Config().GetPointsPerStroke()))
		s.mux.Handle("/api/templates", templates)
		s.mux.Handle("/api/templates/", templates)
		s.mux.Handle("/api/recognize", api.NewRecognizeHandler(a.Recognizer()))
		s.mux.Handle("/api/preview/", NewPreviewHandler(a.Recognizer()))
		s.mux.HandleFunc("/api/status", s.handleStatus)

		if a.Store() != nil {
			recognitions := api.NewRecognitionHandler(a.Store())
			s.mux.Handle("/api/recognitions", recognitions)
			s.mux.Handle("/api/recognitions/", recognitions)
		}

		s.stream = NewStreamHandler(a)
		s.mux.Handle("/api/stream", s.stream)
	}

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

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	})
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, struct {
		app.Status
		Clients int `json:"clients"`
	}{
		Status:  s.config.App.Status(),
		Clients: s.stream.Clients(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes the websocket clients.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.stream != nil {
		s.stream.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
