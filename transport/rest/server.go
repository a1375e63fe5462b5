package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type uGame interface {
	StartSession(ctx context.Context) (*usecase.Outcome, error)
	GetSession(ctx context.Context, id string) (*usecase.Outcome, error)
	EndSession(ctx context.Context, id string) error

	MakeMove(ctx context.Context, id string, cell int) (*usecase.Outcome, error)
	JumpTo(ctx context.Context, id string, step int) (*usecase.Outcome, error)
	ToggleSort(ctx context.Context, id string) (*usecase.Outcome, error)
}

type Server struct {
	logger *slog.Logger
	uGame  uGame

	highlightDuration time.Duration
}

func New(logger *slog.Logger, uGame uGame, highlightDuration time.Duration) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		uGame:  uGame,

		highlightDuration: highlightDuration,
	}
}

// Handler returns the routes of the HTTP API.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", pingHandler)

	mux.HandleFunc("POST /sessions", that.handleStartSession)
	mux.HandleFunc("GET /sessions/{id}", that.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", that.handleEndSession)
	mux.HandleFunc("POST /sessions/{id}/moves", that.handleMove)
	mux.HandleFunc("POST /sessions/{id}/jump", that.handleJump)
	mux.HandleFunc("POST /sessions/{id}/sort", that.handleSort)

	return mux
}

// Start - runs the HTTP server until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-shutdownDone

	return nil
}
