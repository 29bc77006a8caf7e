// package server runs the short-lived loopback listener that captures the OAuth redirect
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/epx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// ListenerOptions configures a [Listener].
type ListenerOptions struct {
	// RedirectURI is the registered redirect, e.g. http://127.0.0.1:8888/callback.
	RedirectURI string
	// State is the value the callback must echo back. Empty disables the check.
	State  string
	Logger *log.Logger
}

// Listener serves the redirect URI for exactly one authorization attempt.
type Listener struct {
	addr    string
	handler *CallbackHandler
	server  *http.Server
	logger  *log.Logger

	mu       sync.Mutex
	listener net.Listener
	group    *errgroup.Group
	groupCtx context.Context
	stopped  bool
}

// NewListener prepares a listener for the host, port and path of the redirect URI.
func NewListener(opts ListenerOptions) (*Listener, error) {
	u, err := url.Parse(opts.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %v", shared.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: redirect uri must be an http loopback url, got %q", shared.ErrInvalidConfig, opts.RedirectURI)
	}

	port := u.Port()
	if port == "" {
		port = "80"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "listener")

	handler := NewCallbackHandler(path, opts.State)
	router := NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.Handler(handler)

	return &Listener{
		addr:    net.JoinHostPort(u.Hostname(), port),
		handler: handler,
		server:  &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		logger:  logger,
	}, nil
}

// Start binds the port and serves in the background. Bind failures are returned immediately.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listener != nil {
		return fmt.Errorf("listener already started on %s", l.listener.Addr())
	}

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.addr, err)
	}
	l.listener = ln

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("callback server: %w", err)
		}
		return nil
	})
	l.group, l.groupCtx = g, gctx

	l.logger.Debug("waiting for authorization callback", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before [Listener.Start].
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return l.listener.Addr().String()
	}
	return l.addr
}

// CaptureCode blocks until the callback arrives and returns its authorization code.
// A denied or forged callback is returned as an error.
func (l *Listener) CaptureCode(ctx context.Context) (string, error) {
	l.mu.Lock()
	serving := l.groupCtx
	group := l.group
	l.mu.Unlock()

	if serving == nil {
		return "", fmt.Errorf("listener not started")
	}

	select {
	case res := <-l.handler.Result():
		return res.code, res.err
	case <-serving.Done():
		return "", group.Wait()
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: waiting for authorization callback", shared.ErrTimeout)
		}
		return "", ctx.Err()
	}
}

// Stop shuts the server down and releases the port. Stopping twice is a no-op.
func (l *Listener) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listener == nil || l.stopped {
		return nil
	}
	l.stopped = true

	if err := l.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop callback server: %w", err)
	}
	return l.group.Wait()
}
