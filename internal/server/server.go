package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/kisan/internal/assistant"
	"github.com/muurk/kisan/internal/discovery"
	"github.com/muurk/kisan/internal/logging"
	"github.com/muurk/kisan/internal/version"
)

// Defaults
const (
	DefaultPort            = 8080
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Host string
	Port int

	// Provider names the assistant backend; it is reported by /health and
	// in the mDNS TXT record.
	Provider string

	// Advertise enables mDNS registration.
	Advertise bool
	// Instance is the mDNS instance name. Empty uses "kisan on <hostname>".
	Instance string

	// CertPath and KeyPath enable TLS when both are set.
	CertPath string
	KeyPath  string

	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) instance() string {
	if c.Instance != "" {
		return c.Instance
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "kisan on " + host
}

// Server serves one assistant over HTTP and WebSocket.
type Server struct {
	config    *Config
	assistant assistant.Assistant
	tlsConfig *tls.Config
	handler   http.Handler
	upgrader  websocket.Upgrader

	mu          sync.Mutex
	listener    net.Listener
	httpServer  *http.Server
	activeConns map[*websocket.Conn]*chatSession
	closed      bool
	wg          sync.WaitGroup
}

// New creates a server. The listener is not opened until Start.
func New(config *Config, a assistant.Assistant) (*Server, error) {
	if a == nil {
		return nil, errors.New("server requires an assistant")
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", config.Port)
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	s := &Server{
		config:      config,
		assistant:   a,
		tlsConfig:   tlsConfig,
		activeConns: make(map[*websocket.Conn]*chatSession),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Terminal clients send no Origin; browsers on the LAN are allowed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen opens the listener. Start calls it when needed; calling it first
// lets a caller learn the bound address of port 0.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr(), nil
	}

	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Start serves until ctx is cancelled or serving fails, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()

	logging.Info("Starting kisan assistant server",
		zap.String("addr", addr.String()),
		zap.String("provider", s.config.Provider),
		zap.Bool("tls", s.tlsConfig != nil),
		zap.String("version", version.Version),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	if s.config.Advertise {
		port := addr.(*net.TCPAddr).Port
		g.Go(func() error {
			ad, err := discovery.Advertise(s.config.instance(), port, map[string]string{
				discovery.TXTVersion:  version.Version,
				discovery.TXTProvider: s.config.Provider,
				discovery.TXTPath:     assistant.AskPath,
			})
			if err != nil {
				// Serving still works without discovery.
				logging.Warn("mDNS advertisement unavailable", zap.Error(err))
				return nil
			}
			<-gctx.Done()
			ad.Shutdown()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the server, closes chat sockets, and waits for handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.mu.Lock()
	s.closed = true
	srv := s.httpServer
	ln := s.listener
	for conn, session := range s.activeConns {
		logging.Info("Closing chat connection", zap.String("remote_addr", session.remote))
		session.cancel()
		_ = conn.Close()
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	} else if ln != nil {
		err = ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// GetActiveConnections returns the number of open chat sockets
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

// track registers a chat socket. It reports false once shutdown has begun.
func (s *Server) track(conn *websocket.Conn, session *chatSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	s.activeConns[conn] = session
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.activeConns, conn)
	s.mu.Unlock()
	s.wg.Done()
}
