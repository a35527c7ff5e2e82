package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/core/systems/physics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Client message types. MessageFire requests a single shot without changing
// the held fire state.
const (
	MessageInput = "input"
	MessageFire  = "fire"
	MessageStart = "start"
)

// ClientMessage is a message sent by the display client.
type ClientMessage struct {
	Type string       `json:"type"`
	Move physics.Vec2 `json:"move"`
	Aim  physics.Vec2 `json:"aim"`
	Fire bool         `json:"fire"`
}

type session struct {
	id   string
	done chan struct{}

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// attach binds the upgraded connection. It fails if the session was closed
// while the upgrade was in flight.
func (c *session) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conn = conn
	return true
}

func (c *session) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := &session{id: uuid.NewString(), done: make(chan struct{})}
	if !s.client.CompareAndSwap(nil, sess) {
		s.logger.Warn("Rejecting display client",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(ErrClientAlreadyConnected))
		http.Error(w, ErrClientAlreadyConnected.Error(), http.StatusConflict)
		return
	}
	defer s.client.CompareAndSwap(sess, nil)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}
	if !sess.attach(conn) {
		_ = conn.Close()
		return
	}
	if s.config.ReadLimit > 0 {
		conn.SetReadLimit(s.config.ReadLimit)
	}

	clientLogger := s.logger.With(log.String("client_id", sess.id))

	// Stop closes stopChan under lifecycleMu before it waits on workerGroup.
	s.lifecycleMu.Lock()
	stop := s.stopChan
	select {
	case <-stop:
		s.lifecycleMu.Unlock()
		clientLogger.Info("Refusing client, server stopping")
		sess.close()
		return
	default:
	}
	s.workerGroup.Add(1)
	s.lifecycleMu.Unlock()

	clientLogger.Info("Client connected", log.String("remote_addr", conn.RemoteAddr().String()))

	go func() {
		defer s.workerGroup.Done()
		s.writePump(sess, stop, clientLogger)
	}()

	s.readPump(sess, clientLogger)
	sess.close()

	clientLogger.Info("Client disconnected")
}

// readPump forwards client messages into the sink until the connection closes.
func (s *Server) readPump(sess *session, logger log.Log) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Failed to receive message", log.Error(err))
			}
			return
		}
		s.messagesReceived.Add(1)

		if err := s.handleMessage(data); err != nil {
			logger.Warn("Dropping client message", log.Error(err))
		}
	}
}

func (s *Server) handleMessage(data []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	switch msg.Type {
	case MessageInput:
		s.sink.SetIntent(msg.Move, msg.Aim, msg.Fire)
	case MessageFire:
		s.sink.PressFire()
	case MessageStart:
		s.sink.PressStart()
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}
	return nil
}

// writePump is the only writer of data frames on the connection. It sends the
// latest snapshot whenever the tick advanced since the previous frame.
func (s *Server) writePump(sess *session, stop <-chan struct{}, logger log.Log) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.config.BroadcastRate))
	defer ticker.Stop()

	var lastTick uint64
	sent := false
	send := func() bool {
		snap := s.source.Snapshot()
		if snap == nil || (sent && snap.Tick == lastTick) {
			return true
		}
		_ = sess.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := sess.conn.WriteJSON(snap); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				logger.Warn("Failed to send snapshot", log.Error(err))
			}
			return false
		}
		lastTick, sent = snap.Tick, true
		s.framesSent.Add(1)
		return true
	}

	if !send() {
		sess.close()
		return
	}
	for {
		select {
		case <-ticker.C:
			if !send() {
				sess.close()
				return
			}
		case <-stop:
			_ = sess.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(s.config.WriteTimeout))
			sess.close()
			return
		case <-sess.done:
			return
		}
	}
}
