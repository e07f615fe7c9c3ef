package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snake-arena/server"
	"snake-arena/server/internal/net/proto"
)

// session adapts a websocket connection to server.Conn. The hub's writer
// goroutine is the only caller of Send; pings and close frames go through
// WriteControl, which gorilla allows concurrently.
type session struct {
	conn        *websocket.Conn
	messageType int

	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, codec proto.Codec) *session {
	messageType := websocket.TextMessage
	if codec.Binary() {
		messageType = websocket.BinaryMessage
	}
	return &session{conn: conn, messageType: messageType, done: make(chan struct{})}
}

// Send writes one frame with a bounded deadline.
func (s *session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(server.WriteWait())); err != nil {
		return err
	}
	return s.conn.WriteMessage(s.messageType, data)
}

// Close sends a best-effort close frame and tears the socket down.
func (s *session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}

// keepAlive pings until the session closes or a ping fails.
func (s *session) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(server.WriteWait())); err != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}

var _ server.Conn = (*session)(nil)
