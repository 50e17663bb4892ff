package network

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"freezetag/session"
)

const (
	readLimit     = 1 << 20 // 1MB
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 25 * time.Second
	sendQueueSize = 256
)

var upgrader = websocket.Upgrader{
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server owns the websocket endpoint and hands each connection to the
// session router under a fresh id.
type Server struct {
	router *session.Router
	log    *zap.Logger
}

func NewServer(router *session.Router, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{router: router, log: log}
}

// Handler returns the HTTP mux: /ws for the game socket, / for health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// wsClient adapts one websocket connection to the Conn the rest of the
// server sends through. Writes go through a buffered queue so a slow
// client never blocks a room actor.
type wsClient struct {
	id   string
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
}

func (c *wsClient) Send(b []byte) error {
	select {
	case c.out <- b:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	default:
		// Queue full: the client is too far behind to keep.
		return websocket.ErrCloseSent
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	go s.writePump(client)

	s.router.Connect(client.id, client)
	s.readLoop(client)

	s.router.Disconnect(client.id)
	close(client.done)
	_ = conn.Close()
}

// readLoop drains inbound frames until the connection dies. Basic
// timeouts + pong handling keep connections healthy.
func (s *Server) readLoop(c *wsClient) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read failed", zap.String("player", c.id), zap.Error(err))
			}
			return
		}
		s.router.Dispatch(c.id, c, msg)
	}
}

// writePump is the only goroutine that writes to the socket.
func (s *Server) writePump(c *wsClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
