package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"

	"interactbox/internal/httpwire"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
)

const (
	// DefaultMaxConnections bounds concurrently served connections.
	DefaultMaxConnections = 256

	// Backoff bounds for transient accept failures
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = 1 * time.Second
)

// ErrServerClosed is returned by Serve after Close or Shutdown.
var ErrServerClosed = errors.New("server closed")

// Handler serves one request on a connection it owns for the duration of
// the call. body holds everything after the header block; w is buffered and
// flushed by the engine when Handle returns nil. A classified error discards
// anything written to w and the peer receives 401 instead.
type Handler interface {
	Handle(ctx context.Context, req *httpwire.Request, body io.Reader, w io.Writer) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *httpwire.Request, body io.Reader, w io.Writer) error

func (f HandlerFunc) Handle(ctx context.Context, req *httpwire.Request, body io.Reader, w io.Writer) error {
	return f(ctx, req, body, w)
}

// Route binds an exact path to a handler.
type Route struct {
	Path    string
	Handler Handler
}

// Config holds engine settings. Zero values select defaults.
type Config struct {
	Addr               string
	ReadTimeout        time.Duration
	MaxConnections     int
	RateLimitPerMinute int // per remote IP; zero disables
}

// Server represents the raw HTTP/1.1 engine
type Server struct {
	cfg     Config
	routes  map[string]Handler // read-only after New
	limiter *RateLimiter
	Logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	connWg   sync.WaitGroup
}

// New creates a server for the given routes. It panics on a duplicate path
// or nil handler.
func New(cfg Config, routes []Route, logger *slog.Logger) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = httpwire.DefaultReadTimeout
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = DefaultMaxConnections
	}

	table := make(map[string]Handler, len(routes))
	for _, route := range routes {
		if route.Handler == nil {
			panic(fmt.Sprintf("server: nil handler for %q", route.Path))
		}
		if _, exists := table[route.Path]; exists {
			panic(fmt.Sprintf("server: duplicate route %q", route.Path))
		}
		table[route.Path] = route.Handler
	}

	var limiter *RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = NewPerMinuteLimiter(cfg.RateLimitPerMinute)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:     cfg,
		routes:  table,
		limiter: limiter,
		Logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Routes returns the registered paths in sorted order.
func (s *Server) Routes() []string {
	paths := make([]string, 0, len(s.routes))
	for path := range s.routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ListenAndServe listens on the configured TCP address and serves until the
// listener fails or the server is closed.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, one worker per connection, at most
// MaxConnections at a time. It only returns on a listener failure or after
// Close, in which case the error is ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	ln = netutil.LimitListener(ln, s.cfg.MaxConnections)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.Logger.Info("Starting server",
		"addr", ln.Addr().String(),
		"routes", s.Routes(),
		"max_connections", s.cfg.MaxConnections,
		"read_timeout", s.cfg.ReadTimeout.String())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener closed: %w", err)
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			s.Logger.Warn("Accept failed, retrying", "error", err, "backoff", backoff.String())
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}

		go func() {
			defer s.untrack(conn)
			s.ServeConn(conn)
		}()
	}
}

// ServeConn runs the full single-request pipeline on conn and closes it.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	remoteAddr := conn.RemoteAddr().String()
	connID := uuid.NewString()
	logger := s.Logger.With("conn_id", connID, "remote_addr", remoteAddr)

	if s.limiter != nil && !s.limiter.Allow(RemoteIP(remoteAddr)) {
		logger.Warn("Rate limit exceeded, dropping connection")
		return
	}

	reader := bufio.NewReader(httpwire.WithIdleTimeout(conn, s.cfg.ReadTimeout))
	writer := bufio.NewWriter(conn)

	req, err := s.route(reader, writer, remoteAddr, connID)

	outcome := "ok"
	switch {
	case err == nil:
		if err = writer.Flush(); err != nil {
			outcome = "dropped"
		}
	case httpwire.Answerable(err):
		// Drop whatever the handler had buffered; the peer only sees the 401.
		writer.Reset(conn)
		outcome = "unauthorized"
		if werr := httpwire.WriteUnauthorized(conn); werr != nil {
			logger.Debug("Failed to write 401 response", "error", werr)
		}
	default:
		outcome = "dropped"
	}

	attrs := []any{
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if req != nil {
		attrs = append(attrs, "method", req.Verb.String(), "path", req.Path)
	}
	if err != nil {
		attrs = append(attrs, "error", err, "kind", httpwire.KindOf(err).String())
	}

	if outcome == "dropped" {
		logger.Warn("http_request", attrs...)
	} else {
		logger.Info("http_request", attrs...)
	}
}

// route parses the request head and invokes the matching handler.
func (s *Server) route(reader *bufio.Reader, writer *bufio.Writer, remoteAddr, connID string) (*httpwire.Request, error) {
	req, err := httpwire.ReadRequest(reader)
	if err != nil {
		return nil, err
	}
	req.RemoteAddr = remoteAddr
	req.ConnID = connID

	handler, ok := s.routes[req.Path]
	if !ok {
		return req, httpwire.Malformed("no route for %q", req.Path)
	}

	return req, handler.Handle(s.ctx, req, reader, writer)
}

// Close stops accepting, closes every live connection and waits for the
// workers to return.
func (s *Server) Close() error {
	err := s.closeListener()
	s.closeConns()
	s.connWg.Wait()
	return err
}

// Shutdown stops accepting and waits for in-flight connections. If ctx ends
// first the remaining connections are closed and ctx.Err is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.closeListener()

	done := make(chan struct{})
	go func() {
		s.connWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		s.closeConns()
		<-done
		return ctx.Err()
	}
}

func (s *Server) closeListener() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) closeConns() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// track registers conn unless the server is closing. Adding to the wait group
// under the lock keeps Add ordered before any Wait that follows Close.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.connWg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.connWg.Done()
}
