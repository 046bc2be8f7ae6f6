package debugapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/udisondev/cullgo/internal/sim"
)

const shutdownTimeout = 5 * time.Second

// Server serves the debug API until its context is done.
type Server struct {
	addr string
	srv  *http.Server
	quit chan struct{}
}

// NewServer creates a debug API server for src listening on addr.
func NewServer(addr string, src sim.SnapshotSource, streamInterval time.Duration) *Server {
	quit := make(chan struct{})
	return &Server{
		addr: addr,
		quit: quit,
		srv: &http.Server{
			Handler:           NewRouter(src, streamInterval, quit),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start listens on the configured address and serves until ctx is done, then
// shuts down gracefully. Returns ctx.Err() after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	slog.Info("debug api listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		close(s.quit)
		return fmt.Errorf("serving debug api: %w", err)
	case <-ctx.Done():
	}

	close(s.quit)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down debug api: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving debug api: %w", err)
	}

	slog.Info("debug api stopped")
	return ctx.Err()
}
