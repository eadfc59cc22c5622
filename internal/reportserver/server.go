// SPDX-License-Identifier: MPL-2.0

package reportserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/hostprobe/hostprobe/internal/core/serverbase"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

type (
	// Renderer renders the report in the named format. An empty format
	// selects the default.
	Renderer func(format string) ([]byte, error)

	// Config holds immutable configuration for the report server.
	Config struct {
		// Host is the address to bind to (default: 127.0.0.1)
		Host string
		// Port is the port to listen on (0 = auto-select)
		Port int
		// HostKeyPath stores the server's host key, created on first use.
		// Empty uses an ephemeral key.
		HostKeyPath string
		// StartupTimeout is the max time to wait for the server to be ready (default: 5s)
		StartupTimeout time.Duration
		// ShutdownTimeout is the timeout for graceful shutdown (default: 10s)
		ShutdownTimeout time.Duration
	}

	// Server writes the platform report to every SSH session.
	// A Server instance is single-use: once stopped or failed, create a new instance.
	Server struct {
		*serverbase.Base

		cfg    Config
		render Renderer
		logger *log.Logger

		srvMu    sync.Mutex
		srv      *ssh.Server
		listener net.Listener
		addr     string
	}

	// Option configures a Server.
	Option func(*Server)
)

// WithLogger replaces the default stderr logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            0,
		StartupTimeout:  5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// New creates a report server. Nothing listens until Start.
func New(cfg Config, render Renderer, opts ...Option) *Server {
	defaults := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}

	s := &Server{
		Base:   serverbase.NewBase(),
		cfg:    cfg,
		render: render,
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "report-server"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and blocks until the server accepts connections,
// fails, or ctx (bounded by StartupTimeout) is done.
// After Start returns nil, use Err to monitor runtime errors.
func (s *Server) Start(ctx context.Context) error {
	if err := s.TransitionToStarting(ctx); err != nil {
		return err
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer startupCancel()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	listener, err := lc.Listen(startupCtx, "tcp", addr)
	if err != nil {
		s.TransitionToFailed(fmt.Errorf("failed to listen on %s: %w", addr, err))
		return s.LastError()
	}

	opts := []ssh.Option{
		wish.WithAddress(listener.Addr().String()),
		wish.WithMiddleware(s.reportMiddleware()),
	}
	if s.cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(s.cfg.HostKeyPath))
	}

	srv, err := wish.NewServer(opts...)
	if err != nil {
		_ = listener.Close() // Best-effort cleanup on error
		s.TransitionToFailed(fmt.Errorf("failed to create SSH server: %w", err))
		return s.LastError()
	}

	s.srvMu.Lock()
	s.srv = srv
	s.listener = listener
	s.addr = listener.Addr().String()
	s.srvMu.Unlock()

	s.Go(func(context.Context) {
		s.serve(srv, listener)
	})

	select {
	case <-s.Started():
		s.logger.Info("report server started", "address", s.Address())
		return nil
	case err := <-s.Err():
		s.TransitionToFailed(err)
		return err
	case <-startupCtx.Done():
		s.TransitionToFailed(fmt.Errorf("startup timeout: %w", startupCtx.Err()))
		return s.LastError()
	}
}

// Stop gracefully stops the server. It is safe to call more than once.
func (s *Server) Stop() error {
	if !s.TransitionToStopping() {
		s.Base.Wait()
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error
	s.srvMu.Lock()
	if s.srv != nil {
		if err := s.srv.Shutdown(shutdownCtx); err != nil && !isClosedConnError(err) {
			s.logger.Error("shutdown error", "error", err)
			shutdownErr = err
		}
	}
	if s.listener != nil {
		_ = s.listener.Close() // Best-effort cleanup during shutdown
	}
	s.srvMu.Unlock()

	s.Base.Wait()
	s.TransitionToStopped()
	s.logger.Info("report server stopped")

	return shutdownErr
}

// Wait blocks until the server stops and returns the failure, if any.
func (s *Server) Wait() error {
	s.Base.Wait()
	if s.State() == serverbase.StateFailed {
		return s.LastError()
	}
	return nil
}

// Address returns the bound host:port, or "" before the listener is bound.
func (s *Server) Address() string {
	s.srvMu.Lock()
	defer s.srvMu.Unlock()
	return s.addr
}

// Port returns the bound port, or 0 before the listener is bound.
func (s *Server) Port() int {
	_, portStr, err := net.SplitHostPort(s.Address())
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

func (s *Server) serve(srv *ssh.Server, listener net.Listener) {
	s.TransitionToRunning()

	err := srv.Serve(listener)
	if err == nil || errors.Is(err, ssh.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return
	}
	s.SendError(fmt.Errorf("serve error: %w", err))
}

// reportMiddleware writes the rendered report and ends the session.
func (s *Server) reportMiddleware() wish.Middleware {
	return func(ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			format := ""
			if cmd := sess.Command(); len(cmd) > 0 {
				format = cmd[0]
			}

			out, err := s.render(format)
			if err != nil {
				s.logger.Warn("report rejected", "remote", sess.RemoteAddr(), "format", format, "error", err)
				wish.Fatalln(sess, err)
				return
			}

			if _, err := sess.Write(out); err != nil {
				s.logger.Debug("report write failed", "remote", sess.RemoteAddr(), "error", err)
				return
			}
			s.logger.Debug("report served", "remote", sess.RemoteAddr(), "user", sess.User(), "format", format)
			_ = sess.Exit(0) //nolint:errcheck // session is closing anyway
		}
	}
}

// isClosedConnError reports whether err is a "use of closed network connection" error.
func isClosedConnError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && errors.Is(opErr.Err, net.ErrClosed)
}
