package web

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/solenne/spotify-top-sync/internal/config"
	"github.com/solenne/spotify-top-sync/internal/spotify"
	"github.com/solenne/spotify-top-sync/internal/syncer"
)

// ServerConfig holds server construction inputs.
type ServerConfig struct {
	Cfg         *config.Config
	Logger      *zap.Logger
	TemplatesFS fs.FS
	StaticFS    fs.FS
}

// Server is the HTTP server for the application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   *zap.Logger
}

// NewServer creates a new web server.
func NewServer(sc ServerConfig) (*Server, error) {
	tokens := spotify.NewTokenManager(sc.Cfg.ClientID, sc.Cfg.ClientSecret, sc.Cfg.RedirectURI)

	templates, err := NewTemplates(sc.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	sessions := NewSessionStore()
	syncService := syncer.New(sc.Logger)
	handlers := NewHandlers(tokens, sessions, templates, syncService, sc.Cfg.PlaylistName, sc.Logger)

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: handlers,
		logger:   sc.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes(sc.StaticFS)

	s.server = &http.Server{
		Addr:         sc.Cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(staticFS fs.FS) {
	fileServer := http.FileServer(http.FS(staticFS))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Get("/", s.handlers.Home)
	s.router.Get("/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Get("/sync", s.handlers.Sync)
	s.router.Get("/success", s.handlers.Success)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
