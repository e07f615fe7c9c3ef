package ws

import (
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"snake-arena/server"
	"snake-arena/server/internal/net/proto"
	"snake-arena/server/internal/telemetry"
	"snake-arena/server/internal/world"
)

type HandlerConfig struct {
	Logger       telemetry.Logger
	CheckOrigin  func(r *nethttp.Request) bool
	PingInterval time.Duration
	ReadDeadline time.Duration
}

// Handler upgrades HTTP requests and runs one player session per socket.
type Handler struct {
	hub          *server.Hub
	logger       telemetry.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	readDeadline time.Duration
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(nil)
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*nethttp.Request) bool { return true }
	}
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = server.PingInterval()
	}
	readDeadline := cfg.ReadDeadline
	if readDeadline <= 0 {
		readDeadline = server.ReadDeadline()
	}

	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		pingInterval: pingInterval,
		readDeadline: readDeadline,
	}
}

// Handle serves /ws. Query parameters: codec (json or msgpack) and name.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	query := r.URL.Query()
	codec, err := proto.CodecByName(query.Get("codec"))
	if err != nil {
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[ws] upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	sess := newSession(conn, codec)
	id, err := h.hub.Join(sess, codec, query.Get("name"))
	if err != nil {
		if !errors.Is(err, server.ErrServerFull) {
			h.logger.Printf("[ws] join failed from %s: %v", r.RemoteAddr, err)
		}
		return
	}

	go sess.keepAlive(h.pingInterval)
	h.readLoop(id, conn, codec)
}

func (h *Handler) readLoop(id world.PlayerID, conn *websocket.Conn, codec proto.Codec) {
	defer h.hub.Leave(id, "closed")

	conn.SetReadLimit(server.MaxMessageBytes())
	_ = conn.SetReadDeadline(time.Now().Add(h.readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.readDeadline))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.readDeadline))

		msg, err := proto.Decode(codec, payload)
		if err != nil {
			h.hub.ReportMalformed(id, len(payload), err.Error())
			continue
		}
		switch msg.Type {
		case proto.TypeDir:
			// invalid or dead-player headings are ignored
			_ = h.hub.SetHeading(id, *msg.DX, *msg.DY)
		case proto.TypeRespawn:
			_ = h.hub.Respawn(id)
		}
	}
}
