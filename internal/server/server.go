// Package server exposes task generation, answer checking, accounts and
// the leaderboard as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/abhisek/mathgym/internal/account"
	"github.com/abhisek/mathgym/internal/store"
	"github.com/abhisek/mathgym/internal/taskgen"
)

// TaskSource hands out validated tasks. *taskgen.Dispatcher implements it.
type TaskSource interface {
	Next() (*taskgen.Task, error)
	NextOf(category taskgen.Category) (*taskgen.Task, error)
}

// Options configures a Server.
type Options struct {
	Addr             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSOrigins      []string
	LeaderboardLimit int
}

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	opts     Options
	tasks    TaskSource
	accounts *account.Service
	users    store.UserRepo
	scores   store.ScoreRepo
	logger   *slog.Logger
}

func New(opts Options, tasks TaskSource, accounts *account.Service, users store.UserRepo, scores store.ScoreRepo, logger *slog.Logger) *Server {
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = 50
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		opts:     opts,
		tasks:    tasks,
		accounts: accounts,
		users:    users,
		scores:   scores,
		logger:   logger,
	}
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/task", s.handleTask)
	mux.HandleFunc("POST /api/check", s.handleCheck)
	mux.HandleFunc("GET /api/modes", s.handleModes)
	mux.HandleFunc("GET /api/modes/{name}", s.handleMode)

	mux.Handle("GET /api/me", s.requireUser(s.handleMe))
	mux.Handle("POST /api/update_stars", s.requireUser(s.handleUpdateStars))
	mux.Handle("POST /api/delete_user", s.requireUser(s.handleDeleteUser))
	mux.Handle("GET /api/rating", s.requireUser(s.handleRating))

	var h http.Handler = mux
	h = withRecover(s.logger, h)
	h = withAccessLog(s.logger, h)
	h = withTracing(h)
	h = withRequestID(h)
	h = withCORS(s.opts.CORSOrigins, h)
	return h
}

// Run serves HTTP/1.1 and cleartext HTTP/2 on the configured address until
// ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
