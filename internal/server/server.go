// Package server is the composition root: it opens the database, builds the
// services and handlers, and mounts them on a chi router.
//
// DEPENDENCY FLOW:
//
//	config.Config → sqlite.DB ─┬→ AuthService    → AuthHandler
//	                           ├→ BoardService   → BoardHandler
//	search.PinIndex ───────────┼→ PinService     → PinHandler
//	                           ├→ StreamService  → StreamHandler
//	                           ├→ FriendService  → FriendHandler
//	                           └→ CommentService → CommentHandler
//
// Handlers get services, services get repository interfaces, and only this
// package knows the concrete types.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/pinboard/internal/auth"
	"github.com/sakif/pinboard/internal/config"
	"github.com/sakif/pinboard/internal/handler"
	"github.com/sakif/pinboard/internal/middleware"
	sqliteRepo "github.com/sakif/pinboard/internal/repository/sqlite"
	"github.com/sakif/pinboard/internal/search"
	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// Server owns the router and the resources closed on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	index  *search.PinIndex
}

// New opens the database, seeds the search index and wires every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	index, err := search.NewPinIndex(logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		index:  index,
	}

	if err := s.seedIndex(context.Background()); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// seedIndex loads every pin into the search index. The index lives only in
// memory, so this runs on every start.
func (s *Server) seedIndex(ctx context.Context) error {
	pins, err := s.db.ListAllPins(ctx)
	if err != nil {
		return fmt.Errorf("loading pins for search index: %w", err)
	}
	return s.index.Rebuild(pins)
}

// setupRoutes mounts the API.
//
//	/api/auth/register, /api/auth/login      rate limited per client IP
//	/api/auth/logout
//	/auth/github/login, /auth/github/callback only when GitHub is configured
//	/api/...                                  JSON API, trailing slash optional
//
// Reads of boards, pins, comments and search are public; everything that acts on
// the caller's data requires a token.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHub.ClientID,
			s.config.GitHub.ClientSecret,
			s.config.GitHub.CallbackURL,
		)
	}

	v := validation.New()

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	boardService := service.NewBoardService(s.db, s.db, s.logger)
	pinService := service.NewPinService(s.db, s.db, s.index, s.logger)
	streamService := service.NewStreamService(s.db, s.db, s.logger)
	friendService := service.NewFriendService(s.db, s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, v, s.config.Auth.TokenTTL, s.logger)
	boardHandler := handler.NewBoardHandler(boardService, v, s.logger)
	pinHandler := handler.NewPinHandler(pinService, v, s.logger)
	streamHandler := handler.NewStreamHandler(streamService, v, s.logger)
	friendHandler := handler.NewFriendHandler(friendService, v, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, v, s.logger)

	loginLimiter := middleware.NewKeyedRateLimiter(s.config.RateLimit.LoginPerSecond, s.config.RateLimit.LoginBurst)

	// === Global middleware, in order ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.StripSlashes)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(loginLimiter, s.logger))
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
		})
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Public reads.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/boards/{id}", boardHandler.HandleGet)
			r.Get("/boards/{id}/pins", boardHandler.HandleListPins)
			r.Get("/users/{id}/boards", boardHandler.HandleListByUser)
			r.Get("/pins/{id}", pinHandler.HandleGet)
			r.Get("/pins/{id}/comments", commentHandler.HandleList)
			r.Get("/search/pins", pinHandler.HandleSearch)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/users/me", authHandler.HandleMe)
			r.Put("/users/me", authHandler.HandleUpdateMe)
			r.Patch("/users/me", authHandler.HandleUpdateMe)

			r.Get("/boards", boardHandler.HandleListMine)
			r.Post("/boards", boardHandler.HandleCreate)
			r.Put("/boards/{id}", boardHandler.HandleUpdate)
			r.Delete("/boards/{id}", boardHandler.HandleDelete)

			r.Post("/boards/{id}/follow", streamHandler.HandleFollow)
			r.Delete("/boards/{id}/unfollow", streamHandler.HandleUnfollow)
			r.Get("/boards/{id}/follow_status", streamHandler.HandleFollowStatus)

			r.Post("/pins", pinHandler.HandleCreate)
			r.Delete("/pins/{id}", pinHandler.HandleDelete)
			r.Post("/pins/{id}/repin", pinHandler.HandleRepin)
			r.Post("/pins/{id}/like", pinHandler.HandleLike)
			r.Delete("/pins/{id}/like", pinHandler.HandleUnlike)
			r.Post("/pins/{id}/comments", commentHandler.HandleAdd)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Get("/friends", friendHandler.HandleListFriends)
			r.Delete("/friends/{id}", friendHandler.HandleUnfriend)
			r.Get("/friend-requests", friendHandler.HandleListRequests)
			r.Post("/friend-requests", friendHandler.HandleSend)
			r.Post("/friend-requests/{id}/accept", friendHandler.HandleAccept)
			r.Post("/friend-requests/{id}/reject", friendHandler.HandleReject)

			r.Get("/follow-streams", streamHandler.HandleList)
			r.Post("/follow-streams", streamHandler.HandleCreate)
			r.Get("/follow-streams/{id}", streamHandler.HandleGet)
			r.Put("/follow-streams/{id}", streamHandler.HandleRename)
			r.Delete("/follow-streams/{id}", streamHandler.HandleDelete)
			r.Get("/follow-streams/{id}/boards", streamHandler.HandleListBoards)
			r.Post("/follow-streams/{id}/boards", streamHandler.HandleAddBoard)
			r.Delete("/follow-streams/{id}/boards/{board_id}", streamHandler.HandleRemoveBoard)
			r.Get("/follow-streams/{id}/pins", streamHandler.HandleListPins)
		})
	})

	return nil
}

// Handler exposes the router, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the search index and the database.
func (s *Server) Close() error {
	return errors.Join(s.index.Close(), s.db.Close())
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to ShutdownTimeout and closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Database.Path),
			slog.Bool("github_login", s.config.GitHub.Enabled()),
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

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
