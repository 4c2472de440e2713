package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// shutdownGrace bounds how long in-flight requests may run after Run's
// context is cancelled.
const shutdownGrace = 5 * time.Second

// Server serves the sink API on a TCP address.
type Server struct {
	opts Options
	addr string
}

// New constructs a server listening on addr.
func New(addr string, fns ...OptionFn) *Server {
	return &Server{opts: NewOptions(fns...), addr: addr}
}

// Options returns a copy of the server configuration.
func (s *Server) Options() Options {
	if s == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = s.opts })
}

// Handler returns the root handler: the sink API mounted on a fresh mux.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if _, err := RegisterRoutesWithOptions(mux, "", s.opts); err != nil {
		return nil, err
	}
	return mux, nil
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("sink api listening", zap.String("addr", ln.Addr().String()))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.opts.Logger.Info("sink api stopped")
	return nil
}
