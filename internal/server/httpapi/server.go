// Package httpapi is the bridge's inbound JSON surface: it decodes and
// validates form payloads, resolves the request's session, runs the
// matching action and renders its Result.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/actions"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	"github.com/dmitrijs2005/authbridge/internal/server/metrics"
	"github.com/dmitrijs2005/authbridge/internal/session"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer serves the bridge endpoints on one address.
type HTTPServer struct {
	address  string
	actions  *actions.Actions
	sessions *session.Manager
	metrics  *metrics.Registry
	logger   logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, a *actions.Actions, sm *session.Manager, m *metrics.Registry) *HTTPServer {
	return &HTTPServer{
		address:  address,
		actions:  a,
		sessions: sm,
		metrics:  m,
		logger:   l.With("module", "http_server"),
	}
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
