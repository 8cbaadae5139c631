// Package server wires the router, middleware, and handlers, and owns the
// HTTP listener lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/config"
	"github.com/nhollis/inkwell/internal/handler"
	"github.com/nhollis/inkwell/internal/mail"
	"github.com/nhollis/inkwell/internal/middleware"
	"github.com/nhollis/inkwell/internal/service"
	"github.com/nhollis/inkwell/internal/store"
)

// Server bundles the router with the resources it owns. The store is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
}

// New assembles the full dependency graph: store, auth services, mailer,
// resource services, handlers, routes.
func New(cfg config.Config, logger *slog.Logger, mailer mail.Mailer) (*Server, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.TokenSecret)
	if err != nil {
		st.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		store:  st,
	}

	passwords := auth.NewPasswordService()
	accounts := service.NewAccountService(st, passwords, tokens, mailer, logger)
	posts := service.NewPostService(st, passwords, logger)
	pages := service.NewPageService(st, passwords, logger)

	accountHandler := handler.NewAccountHandler(accounts, logger)
	sessionHandler := handler.NewSessionHandler(accounts, logger)
	postHandler := handler.NewPostHandler(posts, logger)
	pageHandler := handler.NewPageHandler(pages, logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(auth.SessionFromHeader(tokens))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/sessions", sessionHandler.HandleCreate)

		r.Post("/accounts", accountHandler.HandleCreate)
		r.Get("/accounts", accountHandler.HandleSearch)
		r.Get("/accounts/{id}", accountHandler.HandleGet)
		r.Put("/accounts", accountHandler.HandleUpdate)
		r.Put("/accounts/{id}", accountHandler.HandleUpdate)

		r.Post("/posts", postHandler.HandleCreate)
		r.Get("/posts", postHandler.HandleSearch)
		r.Get("/posts/{id}", postHandler.HandleGet)
		r.Put("/posts/{id}", postHandler.HandleUpdate)

		r.Post("/pages", pageHandler.HandleCreate)
		r.Get("/pages", pageHandler.HandleList)
		r.Get("/pages/{id}", pageHandler.HandleGet)
		r.Put("/pages/{id}", pageHandler.HandleUpdate)
	})

	return s, nil
}

// Start runs the listener until SIGINT/SIGTERM, then drains in-flight
// requests and closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
