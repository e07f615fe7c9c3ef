package server

import (
	"sync"
	"sync/atomic"

	"snake-arena/server/internal/net/proto"
	"snake-arena/server/internal/world"
)

// Conn is the outbound half of a client connection. Send is only ever called
// from the connection's writer goroutine.
type Conn interface {
	Send(data []byte) error
	Close() error
}

// subscriber buffers encoded frames for one connection and writes them from
// a dedicated goroutine so a slow client never stalls the tick.
type subscriber struct {
	id    world.PlayerID
	conn  Conn
	codec proto.Codec
	out   chan []byte
	done  chan struct{}

	closeOnce sync.Once
	dropped   atomic.Uint64
	sent      atomic.Uint64
}

func newSubscriber(id world.PlayerID, conn Conn, codec proto.Codec, queue int) *subscriber {
	if queue <= 0 {
		queue = defaultSendQueue
	}
	return &subscriber{
		id:    id,
		conn:  conn,
		codec: codec,
		out:   make(chan []byte, queue),
		done:  make(chan struct{}),
	}
}

// enqueue hands data to the writer without blocking. It reports false when
// the subscriber is closed or its queue is full.
func (s *subscriber) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- data:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// run drains the queue until the subscriber is closed or a write fails.
func (s *subscriber) run(onError func(error)) {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.out:
			if err := s.conn.Send(data); err != nil {
				select {
				case <-s.done:
					return
				default:
				}
				if onError != nil {
					onError(err)
				}
				return
			}
			s.sent.Add(1)
		}
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *subscriber) queueDepth() int {
	return len(s.out)
}
