// Package client implements the outbound side of the interactbox HTTP engine:
// a one-shot HTTPS transaction against a fixed remote host.
package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"interactbox/internal/httpwire"
)

const (
	DefaultPort        = 443
	DefaultDialTimeout = 10 * time.Second
)

// Client sends hand-framed HTTP/1.1 requests over TLS to one host. Every
// call opens a fresh connection and reads until the peer closes it.
type Client struct {
	host        string
	port        int
	rootCAs     *x509.CertPool
	readTimeout time.Duration
	dialTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPort overrides the HTTPS port.
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithRootCAs replaces the system trust store.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) { c.rootCAs = pool }
}

// WithReadTimeout sets the idle limit for each read of the response.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.readTimeout = timeout }
}

// WithDialTimeout bounds TCP connect plus TLS handshake.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.dialTimeout = timeout }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for host.
func New(host string, opts ...Option) *Client {
	c := &Client{
		host:        host,
		port:        DefaultPort,
		readTimeout: httpwire.DefaultReadTimeout,
		dialTimeout: DefaultDialTimeout,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadRootCAs reads a PEM bundle into a certificate pool.
func LoadRootCAs(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}

// Host returns the remote host name.
func (c *Client) Host() string {
	return c.host
}

// Do performs one request and returns the raw response bytes: status line,
// headers and body, exactly as received. Interpreting them is up to the
// caller. Cancelling ctx aborts the dial or closes the connection.
func (c *Client) Do(ctx context.Context, verb httpwire.Verb, path string, headers []httpwire.Header, body []byte) ([]byte, error) {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	start := time.Now()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.dialTimeout},
		Config: &tls.Config{
			ServerName: c.host,
			RootCAs:    c.rootCAs,
			MinVersion: tls.VersionTLS12,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	writer := bufio.NewWriter(conn)
	if err := c.writeHead(writer, verb, path, headers); err != nil {
		return nil, c.failure(ctx, "failed to write request head", err)
	}
	if _, err := writer.Write(body); err != nil {
		return nil, c.failure(ctx, "failed to write request body", err)
	}
	if err := writer.Flush(); err != nil {
		return nil, c.failure(ctx, "failed to write request body", err)
	}

	response, err := io.ReadAll(httpwire.WithIdleTimeout(conn, c.readTimeout))
	if err != nil {
		return nil, c.failure(ctx, "failed to read response", err)
	}

	c.logger.Debug("Remote request completed",
		"method", verb.String(),
		"host", c.host,
		"path", path,
		"status", httpwire.StatusLine(response),
		"duration_ms", time.Since(start).Milliseconds())

	return response, nil
}

func (c *Client) writeHead(w *bufio.Writer, verb httpwire.Verb, path string, headers []httpwire.Header) error {
	if _, err := fmt.Fprintf(w, "%s %s HTTP/1.1\r\n", verb, path); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Host: %s\r\n", c.host); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "Connection: close\r\n"); err != nil {
		return err
	}
	for _, header := range headers {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", header.Name, header.Value); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	return w.Flush()
}

// failure prefers the context error when cancellation closed the connection.
func (c *Client) failure(ctx context.Context, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", msg, ctxErr)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
