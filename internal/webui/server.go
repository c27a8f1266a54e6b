package webui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"festive/internal/config"
	"festive/internal/logging"
	"festive/internal/mediajob"
	"festive/internal/services"
)

const maxUploadBytes = 32 << 20

// Server serves the controller API.
type Server struct {
	bind      string
	token     string
	outputDir string
	ctrl      *mediajob.Controller
	logger    *slog.Logger
	events    *broadcaster

	mu       sync.Mutex
	jobCtx   context.Context
	lastErr  string
	listener net.Listener
	server   *http.Server
	jobs     sync.WaitGroup
}

// New builds a server around ctrl. The server subscribes to the controller
// for its whole lifetime.
func New(cfg *config.Config, ctrl *mediajob.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		bind:      cfg.Server.Bind,
		token:     cfg.Server.APIToken,
		outputDir: cfg.Paths.OutputDir,
		ctrl:      ctrl,
		logger:    logging.NewComponentLogger(logger, "webui"),
		events:    newBroadcaster(),
		jobCtx:    context.Background(),
	}
	ctrl.Subscribe(mediajob.ListenerFunc(s.onStateChange))
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, s.correlate)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Post("/upload", s.handleUpload)
		r.Post("/generate", s.handleGenerate)
		r.Post("/download", s.handleDownload)
		r.Post("/reset", s.handleReset)
	})
	return r
}

// Start listens on the configured bind address and serves until ctx is
// cancelled. Background generation stops with ctx as well.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.bind, err)
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.jobCtx = ctx
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server stopped", logging.Error(err),
				logging.String(logging.FieldEventType, "server_failed"))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("web server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.token != ""),
		logging.String(logging.FieldEventType, "server_started"))
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and waits for background jobs to return.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.mu.Unlock()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	s.events.close()
	s.jobs.Wait()
}

// Wait blocks until background generation started by the server returns.
func (s *Server) Wait() {
	s.jobs.Wait()
}

func (s *Server) onStateChange(event mediajob.Event) {
	s.mu.Lock()
	switch {
	case event.Err != nil:
		s.lastErr = event.Err.Error()
	case !event.State.Terminal():
		s.lastErr = ""
	}
	s.mu.Unlock()
	s.events.publish(event)
}

func (s *Server) lastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Server) backgroundContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobCtx
}

func (s *Server) correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
			r = r.WithContext(services.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
