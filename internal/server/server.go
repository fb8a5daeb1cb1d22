package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskdesk/apiserver/config"
	"github.com/taskdesk/apiserver/internal/auth"
	"github.com/taskdesk/apiserver/internal/db"
	"github.com/taskdesk/apiserver/internal/handlers"
	"github.com/taskdesk/apiserver/internal/logger"
	"github.com/taskdesk/apiserver/internal/mq"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/internal/store/gormstore"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Server wraps the HTTP server, router and the resources it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *zap.Logger
	closers    []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

type repositories struct {
	users services.UserRepository
	tasks services.TaskRepository
}

// New opens the configured store and broker and wires the HTTP routes.
// An unreachable database or broker is logged and the server still starts.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{log: log}

	repos, err := s.openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	backend, err := mq.NewBackend(ctx, cfg.MQ)
	switch {
	case err != nil:
		log.Error("message broker unavailable, task events disabled", zap.String("backend", cfg.MQ.Backend), zap.Error(err))
	case backend != nil:
		s.closers = append(s.closers, namedCloser{"mq", backend.Close})
		publisher = mq.NewTaskEventPublisher(backend, cfg.MQ.TaskChannel)
	}

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	userService := services.NewUserService(repos.users, auth.NewBcryptHasher())
	taskService := services.NewTaskService(repos.tasks, publisher, log.Named("tasks"))

	authHandler := handlers.NewAuthHandler(userService, tokens, log.Named("auth"))
	taskHandler := handlers.NewTaskHandler(taskService, log.Named("tasks"))

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logger.HTTPMiddleware(log.Named("http")),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		middleware.Timeout(requestTimeout),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler)
	})
	router.Route("/api/tasks", func(r chi.Router) {
		handlers.TaskRouter(r, taskHandler, authHandler.RequireAuth)
	})

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context, cfg config.DatabaseConfig) (repositories, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		gdb, err := db.OpenGorm(cfg.URL)
		if err != nil {
			return repositories{}, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return repositories{}, err
		}
		s.closers = append(s.closers, namedCloser{"sqlite", sqlDB.Close})
		return repositories{
			users: gormstore.NewUserRepository(gdb),
			tasks: gormstore.NewTaskRepository(gdb),
		}, nil
	default:
		dbConn, err := db.Open(ctx, cfg)
		if dbConn == nil {
			return repositories{}, err
		}
		if err != nil {
			s.log.Error("database unavailable, serving anyway", zap.Error(err))
		}
		s.closers = append(s.closers, namedCloser{"postgres", dbConn.Close})
		return repositories{
			users: store.NewUserRepository(dbConn),
			tasks: store.NewTaskRepository(dbConn),
		}, nil
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	errs := []error{s.httpServer.Shutdown(ctx)}
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}
