package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/game"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

// SnapshotSource provides the latest post-tick snapshot.
type SnapshotSource interface {
	Snapshot() *game.Snapshot
}

// InputSink receives raw input from the display client.
type InputSink interface {
	SetIntent(move, aim physics.Vec2, fire bool)
	PressFire()
	PressStart()
}

// Server is the display bridge: it streams snapshots to a single external
// renderer over WebSocket and forwards that renderer's input into the core.
type Server struct {
	source SnapshotSource
	sink   InputSink

	httpServer *http.Server
	listener   net.Listener

	// at most one display client
	client atomic.Pointer[session]

	framesSent       atomic.Uint64
	messagesReceived atomic.Uint64

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	config Config
	logger log.Log

	// guards running transitions against workerGroup.Add from new sessions
	lifecycleMu sync.Mutex
	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Config holds server configuration
type Config struct {
	ListenAddr string
	// BroadcastRate is the number of snapshot frames per second sent to the client.
	BroadcastRate float64
	WriteTimeout  time.Duration
	// ReadLimit caps the size of a client message in bytes.
	ReadLimit int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return ConfigFrom(config.Default().Server)
}

// ConfigFrom maps the server section of the application config.
func ConfigFrom(c config.ServerConfig) Config {
	return Config{
		ListenAddr:    c.ListenAddr,
		BroadcastRate: c.BroadcastRate,
		WriteTimeout:  c.WriteTimeout,
		ReadLimit:     c.ReadLimit,
	}
}

func (c Config) validate() error {
	if c.BroadcastRate <= 0 {
		return fmt.Errorf("%w: broadcast rate must be positive", ErrInvalidConfig)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("%w: write timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// NewServer creates a display bridge reading from source and writing to sink.
func NewServer(cfg Config, source SnapshotSource, sink InputSink, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		source:   source,
		sink:     sink,
		config:   cfg,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	s.logger.Info("Server created",
		log.String("listen_addr", cfg.ListenAddr),
		log.Float64("broadcast_rate", cfg.BroadcastRate))

	return s
}

// Start binds the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if err := s.config.validate(); err != nil {
		return err
	}
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.stopChan = make(chan struct{})
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	httpServer := s.httpServer
	s.workerGroup.Add(1)
	go func() {
		defer s.workerGroup.Done()
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Stop shuts the HTTP server down and disconnects the display client.
func (s *Server) Stop(ctx context.Context) error {
	s.lifecycleMu.Lock()
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		s.lifecycleMu.Unlock()
		return ErrServerNotRunning
	}
	close(s.stopChan)
	s.lifecycleMu.Unlock()

	s.logger.Info("Stopping server")

	err := s.httpServer.Shutdown(ctx)

	// hijacked connections are not closed by Shutdown
	if c := s.client.Load(); c != nil {
		c.close()
	}

	s.workerGroup.Wait()

	s.logger.Info("Server stopped")
	return err
}

// Close closes the server and releases all resources
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}

	s.logger.Info("Closing server")

	if atomic.LoadInt32(&s.running) == 1 {
		_ = s.Stop(context.Background())
	}

	s.logger.Info("Server closed")
	return nil
}

// Serve runs the server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddr
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientConnected:  s.client.Load() != nil,
		FramesSent:       s.framesSent.Load(),
		MessagesReceived: s.messagesReceived.Load(),
		Running:          atomic.LoadInt32(&s.running) == 1,
	}
}

// Stats contains server statistics
type Stats struct {
	ClientConnected  bool
	FramesSent       uint64
	MessagesReceived uint64
	Running          bool
}
