// Package server is the composition root: it opens the store, builds the
// services and handlers, mounts the routes and runs the HTTP server with a
// graceful shutdown.
//
// DEPENDENCY FLOW:
//
//	config.Config → repository.Store (mongodb | sqlite)
//	             → auth.Providers, auth.Client, auth.SessionService
//	             → services → handlers → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/config"
	"github.com/rejaka/portfolio/internal/handler"
	"github.com/rejaka/portfolio/internal/middleware"
	"github.com/rejaka/portfolio/internal/repository"
	"github.com/rejaka/portfolio/internal/repository/mongodb"
	sqliteRepo "github.com/rejaka/portfolio/internal/repository/sqlite"
	"github.com/rejaka/portfolio/internal/service"
)

// Server owns the router and the store. The store is closed when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// Options overrides pieces of the wiring, mainly for tests.
type Options struct {
	// HTTPClient makes the calls to the OAuth providers. Nil means a client
	// with a 10s timeout.
	HTTPClient *http.Client
	// Providers replaces the built-in Discord, GitHub and Google table.
	Providers *auth.Providers
}

// New opens the store selected by cfg.Store and builds the server.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s, err := NewWithStore(cfg, store, logger, Options{})
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds the server around an already opened store.
func NewWithStore(cfg config.Config, store repository.Store, logger *slog.Logger, opts Options) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	if err := s.setupRoutes(opts); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("opening mongodb store: %w", err)
		}
		logger.Info("store ready", slog.String("kind", "mongo"), slog.String("database", cfg.MongoDB))
		return store, nil

	default:
		if cfg.DBPath != ":memory:" {
			// mkdir -p for the database file's directory
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		store, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("store ready", slog.String("kind", "sqlite"), slog.String("path", cfg.DBPath))
		return store, nil
	}
}

// setupRoutes mounts the middleware chain and the API.
//
// ROUTES:
//
//	GET    /healthz
//	GET    /api/auth/session                  → current session or 401
//	GET    /api/auth/logout                   → clear cookie, redirect
//	POST   /api/auth/logout                   → clear cookie, JSON
//	GET    /api/auth/{provider}               → OAuth start / callback
//	GET    /api/guestbook                     → list entries
//	POST   /api/guestbook                     → sign          (session)
//	DELETE /api/guestbook/{id}                → delete own    (session)
//	GET    /api/posts/{slug}/comments         → list comments
//	POST   /api/posts/{slug}/comments         → comment       (session)
//	DELETE /api/posts/{slug}/comments/{id}    → delete own    (session)
//	GET    /api/posts/{slug}/likes            → {count, liked}
//	POST   /api/posts/{slug}/likes            → toggle        (session)
//	POST   /api/seminar/registrations         → register
//	GET    /api/seminar/registrations/{code}  → look up
//
// MIDDLEWARE ORDER:
//  1. RequestID, RealIP: request metadata the logger reads
//  2. Logger
//  3. Recoverer: a panic becomes a 500
//  4. CORS: the static front-end may live on another origin
func (s *Server) setupRoutes(opts Options) error {
	key, err := auth.DeriveKey(s.config.SessionSecret)
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessionService(key, s.config.Production())
	if err != nil {
		return err
	}

	providers := opts.Providers
	if providers == nil {
		creds := make(map[string]auth.Credentials)
		for name, c := range s.config.Credentials() {
			creds[name] = auth.Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
		}
		providers = auth.NewProviders(s.config.BaseURL(), creds)
	}

	filter := service.NewProfanityFilter()
	redirects := auth.NewRedirectSanitizer(s.config.RedirectAllowedHosts)

	authService := service.NewAuthService(s.store, auth.NewClient(opts.HTTPClient), s.logger)
	guestbookService := service.NewGuestbookService(s.store, filter, s.logger)
	postService := service.NewPostService(s.store, s.store, filter, s.logger)
	seminarService := service.NewSeminarService(s.store, s.logger)

	authHandler := handler.NewAuthHandler(providers, authService, sessions, redirects, s.logger)
	guestbookHandler := handler.NewGuestbookHandler(guestbookService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	seminarHandler := handler.NewSeminarHandler(seminarService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	requireSession := auth.RequireSession(sessions)
	optionalSession := auth.OptionalSession(sessions)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Static segments win over {provider} in chi's radix tree.
			r.Get("/session", authHandler.HandleSession)
			r.Get("/logout", authHandler.HandleLogout)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/{provider}", authHandler.HandleAuth)
		})

		r.Route("/guestbook", func(r chi.Router) {
			r.Get("/", guestbookHandler.HandleList)
			r.With(requireSession).Post("/", guestbookHandler.HandleSign)
			r.With(requireSession).Delete("/{id}", guestbookHandler.HandleDelete)
		})

		r.Route("/posts/{slug}", func(r chi.Router) {
			r.Get("/comments", postHandler.HandleListComments)
			r.With(requireSession).Post("/comments", postHandler.HandleAddComment)
			r.With(requireSession).Delete("/comments/{id}", postHandler.HandleDeleteComment)
			r.With(optionalSession).Get("/likes", postHandler.HandleLikes)
			r.With(requireSession).Post("/likes", postHandler.HandleToggleLike)
		})

		r.Route("/seminar/registrations", func(r chi.Router) {
			r.Post("/", seminarHandler.HandleRegister)
			r.Get("/{code}", seminarHandler.HandleLookup)
		})
	})

	return nil
}

func (s *Server) corsOrigins() []string {
	if len(s.config.CORSAllowedOrigins) > 0 {
		return s.config.CORSAllowedOrigins
	}
	return []string{s.config.BaseURL()}
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// The OAuth callback makes two provider round trips before it writes.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.AppEnv),
			slog.String("publicUrl", s.config.BaseURL()),
			slog.String("store", s.config.Store),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
