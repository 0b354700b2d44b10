// Package httpapi exposes the service operations over an HTTP JSON API and
// handles bearer-token authentication for protected routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/services"
)

type Server struct {
	address         string
	logger          logging.Logger
	users           *services.UserService
	messages        *services.MessageService
	jwtSecret       []byte
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ms *services.MessageService) *Server {
	return &Server{
		address:         cfg.EndpointAddrHTTP,
		logger:          l.With("module", "http_server"),
		users:           us,
		messages:        ms,
		jwtSecret:       []byte(cfg.SecretKey),
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Handler mounts all routes on a ServeMux. Protected routes go through the
// bearer-token middleware; login and registration do not.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.Handle("GET /users", s.requireAuth(s.handleListUsers))
	mux.Handle("GET /users/{username}", s.requireAuth(s.handleGetUser))
	mux.Handle("GET /users/{username}/messages/to", s.requireAuth(s.handleListReceived))
	mux.Handle("GET /users/{username}/messages/from", s.requireAuth(s.handleListSent))

	mux.Handle("POST /messages", s.requireAuth(s.handleCreateMessage))
	mux.Handle("GET /messages/{id}", s.requireAuth(s.handleGetMessage))
	mux.Handle("POST /messages/{id}/read", s.requireAuth(s.handleMarkRead))

	return s.loggingMiddleware(mux)
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
