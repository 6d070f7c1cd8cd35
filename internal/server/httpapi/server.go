// Package httpapi exposes the account, session, profile picture and note
// operations as a JSON over HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Address        string
	CORSOrigin     string
	LoginRateLimit int // requests per minute per client IP; 0 disables
	MaxImageBytes  int64
	// Assets serves signed asset URLs. Nil unless the local broker is used.
	Assets http.Handler
}

type HTTPServer struct {
	opts     Options
	accounts *services.AccountService
	notes    *services.NoteService
	gate     *auth.Gate
	db       Pinger
	logger   logging.Logger
}

func NewHTTPServer(
	opts Options,
	accounts *services.AccountService,
	notes *services.NoteService,
	gate *auth.Gate,
	db Pinger,
	logger logging.Logger,
) *HTTPServer {
	return &HTTPServer{
		opts:     opts,
		accounts: accounts,
		notes:    notes,
		gate:     gate,
		db:       db,
		logger:   logger.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then stops accepting connections and
// waits up to shutdownTimeout for in-flight requests to finish.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// in-flight requests outlive ctx; Shutdown drains them
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
