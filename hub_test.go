package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"snake-arena/server/internal/net/proto"
	"snake-arena/server/internal/telemetry"
	"snake-arena/server/internal/world"
	"snake-arena/server/logging"
	"snake-arena/server/logging/lifecycle"
)

type fakeConn struct {
	mu      sync.Mutex
	frames  [][]byte
	closed  bool
	sendErr error
	gate    chan struct{}
}

func (c *fakeConn) Send(data []byte) error {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, frame := range c.frames {
		var head struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(frame, &head)
		out = append(out, head.Type)
	}
	return out
}

func (c *fakeConn) frame(t *testing.T, i int, v any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= len(c.frames) {
		t.Fatalf("frame %d not received (have %d)", i, len(c.frames))
	}
	if err := json.Unmarshal(c.frames[i], v); err != nil {
		t.Fatalf("decode frame %d: %v", i, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitForFrames(t *testing.T, c *fakeConn, n int) []string {
	t.Helper()
	waitFor(t, "frames", func() bool { return len(c.types()) >= n })
	return c.types()
}

type eventLog struct {
	mu     sync.Mutex
	events []logging.Event
}

func (l *eventLog) Publish(_ context.Context, event logging.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) ofType(eventType logging.EventType) []logging.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logging.Event
	for _, event := range l.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newTestHub(t *testing.T, mutate func(*HubConfig)) (*Hub, *eventLog) {
	t.Helper()
	cfg := DefaultHubConfig()
	cfg.Seed = 42
	cfg.World.FoodTarget = 0
	cfg.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	if mutate != nil {
		mutate(&cfg)
	}
	events := &eventLog{}
	hub, err := NewHub(cfg, events)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	t.Cleanup(hub.Close)
	return hub, events
}

// place lays a player's snake out in a straight line behind head.
func place(t *testing.T, h *Hub, id world.PlayerID, head, heading world.Vec2, length int) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.world.Player(id)
	if !ok {
		t.Fatalf("player %d missing", id)
	}
	p.Body.Reset()
	for i := 0; i < length; i++ {
		p.Body.PushBack(head.Add(heading.Scale(-20 * float64(i))))
	}
	p.Heading = heading
}

func TestJoinQueuesInitBeforeUpdates(t *testing.T) {
	hub, events := newTestHub(t, nil)
	conn := &fakeConn{}
	id, err := hub.Join(conn, proto.JSON, "  alice  ")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	hub.Advance()

	types := waitForFrames(t, conn, 2)
	if types[0] != proto.TypeInit || types[1] != proto.TypeUpdate {
		t.Fatalf("expected init then update, got %v", types)
	}
	var init proto.Init
	conn.frame(t, 0, &init)
	if init.ID != uint64(id) || init.Name != "alice" || init.Color != world.DefaultPalette[0] {
		t.Fatalf("unexpected init %+v", init)
	}
	if init.World == nil || init.World.TickRate != 30 || init.World.Width != 2000 {
		t.Fatalf("expected world constants in init, got %+v", init.World)
	}
	var update proto.Update
	conn.frame(t, 1, &update)
	if update.Tick != 1 || len(update.Snakes) != 1 || update.Snakes[0].Name != "alice" {
		t.Fatalf("unexpected update %+v", update)
	}
	if len(events.ofType(lifecycle.EventPlayerJoined)) != 1 {
		t.Fatalf("expected a join event")
	}
}

func TestJoinRejectsAtCapacity(t *testing.T) {
	hub, events := newTestHub(t, func(cfg *HubConfig) { cfg.World.MaxPlayers = 1 })
	if _, err := hub.Join(&fakeConn{}, proto.JSON, ""); err != nil {
		t.Fatalf("first join: %v", err)
	}
	before := hub.Snapshot()

	conn := &fakeConn{}
	if _, err := hub.Join(conn, proto.JSON, ""); !errors.Is(err, ErrServerFull) {
		t.Fatalf("expected ErrServerFull, got %v", err)
	}
	if !conn.isClosed() {
		t.Fatalf("expected rejected connection to be closed")
	}
	var msg proto.Error
	conn.frame(t, 0, &msg)
	if msg.Type != proto.TypeError || msg.Message != "Server full" {
		t.Fatalf("unexpected rejection %+v", msg)
	}
	if stats := hub.Stats(); stats.Players != 1 {
		t.Fatalf("expected world untouched, got %+v", stats)
	}
	after := hub.Snapshot()
	if len(after.Foods) != len(before.Foods) || len(after.Snakes) != len(before.Snakes) {
		t.Fatalf("expected rejection to leave the world unchanged")
	}
	if len(events.ofType(lifecycle.EventPlayerRejected)) != 1 {
		t.Fatalf("expected a rejection event")
	}
}

func TestHeadOnCollisionSendsDeadBeforeUpdate(t *testing.T) {
	hub, events := newTestHub(t, nil)
	connA, connB := &fakeConn{}, &fakeConn{}
	a, _ := hub.Join(connA, proto.JSON, "a")
	b, _ := hub.Join(connB, proto.JSON, "b")
	place(t, hub, a, world.Vec2{X: 500, Y: 1000}, world.Vec2{X: 1, Y: 0}, 10)
	place(t, hub, b, world.Vec2{X: 530, Y: 1000}, world.Vec2{X: -1, Y: 0}, 10)

	hub.Advance()
	hub.Advance()

	for name, conn := range map[string]*fakeConn{"a": connA, "b": connB} {
		types := waitForFrames(t, conn, 4)
		want := []string{proto.TypeInit, proto.TypeUpdate, proto.TypeDead, proto.TypeUpdate}
		if strings.Join(types, ",") != strings.Join(want, ",") {
			t.Fatalf("%s: expected %v, got %v", name, want, types)
		}
		var update proto.Update
		conn.frame(t, 3, &update)
		if len(update.Snakes) != 0 || len(update.Foods) != 10 {
			t.Fatalf("%s: expected no snakes and 10 food, got %d/%d", name, len(update.Snakes), len(update.Foods))
		}
	}
	if got := len(events.ofType(lifecycle.EventPlayerEliminated)); got != 2 {
		t.Fatalf("expected 2 elimination events, got %d", got)
	}
	if tel := hub.TelemetrySnapshot(); tel.Eliminations != 2 || tel.Ticks != 2 {
		t.Fatalf("unexpected telemetry %+v", tel)
	}
}

func TestRespawnQueuesInitAndIgnoresLivingPlayer(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	conn := &fakeConn{}
	id, _ := hub.Join(conn, proto.JSON, "")

	if err := hub.Respawn(id); !errors.Is(err, world.ErrAlreadyAlive) {
		t.Fatalf("expected ErrAlreadyAlive, got %v", err)
	}
	hub.mu.Lock()
	hub.world.ApplyEliminations([]world.PlayerID{id})
	hub.mu.Unlock()

	if err := hub.SetHeading(id, 1, 0); !errors.Is(err, world.ErrNotAlive) {
		t.Fatalf("expected heading on a dead snake to be refused, got %v", err)
	}
	if err := hub.Respawn(id); err != nil {
		t.Fatalf("respawn: %v", err)
	}
	types := waitForFrames(t, conn, 2)
	if types[0] != proto.TypeInit || types[1] != proto.TypeInit {
		t.Fatalf("expected a second init after respawn, got %v", types)
	}
	diag := hub.DiagnosticsSnapshot()
	if len(diag) != 1 || !diag[0].Alive || diag[0].Length != 10 || diag[0].Score != 0 {
		t.Fatalf("unexpected diagnostics %+v", diag)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	hub, events := newTestHub(t, nil)
	conn := &fakeConn{}
	id, _ := hub.Join(conn, proto.JSON, "")

	if !hub.Leave(id, "closed") {
		t.Fatalf("expected first leave to remove the player")
	}
	if hub.Leave(id, "closed") {
		t.Fatalf("expected second leave to be a no-op")
	}
	if !conn.isClosed() {
		t.Fatalf("expected connection closed")
	}
	stats := hub.Stats()
	if stats.Players != 0 || stats.Foods != 5 {
		t.Fatalf("expected remains converted once, got %+v", stats)
	}
	if got := len(events.ofType(lifecycle.EventPlayerDisconnected)); got != 1 {
		t.Fatalf("expected one disconnect event, got %d", got)
	}
}

func TestSlowConsumerDoesNotStallTick(t *testing.T) {
	hub, _ := newTestHub(t, func(cfg *HubConfig) { cfg.SendQueueSize = 2 })
	slow := &fakeConn{gate: make(chan struct{})}
	fast := &fakeConn{}
	if _, err := hub.Join(slow, proto.JSON, "slow"); err != nil {
		t.Fatalf("join slow: %v", err)
	}
	if _, err := hub.Join(fast, proto.JSON, "fast"); err != nil {
		t.Fatalf("join fast: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			hub.Advance()
			// pace on the fast client so only the slow one overflows
			deadline := time.Now().Add(time.Second)
			for len(fast.types()) < i+2 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("ticks blocked on a slow consumer")
	}

	waitForFrames(t, fast, 21)
	if tel := hub.TelemetrySnapshot(); tel.FramesDropped == 0 {
		t.Fatalf("expected dropped frames for the slow consumer, got %+v", tel)
	}
	close(slow.gate)
}

func TestWriteFailureDisconnectsPlayer(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	conn := &fakeConn{sendErr: errors.New("broken pipe")}
	if _, err := hub.Join(conn, proto.JSON, ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitFor(t, "disconnect", func() bool { return hub.Stats().Players == 0 })
	if !conn.isClosed() {
		t.Fatalf("expected failed connection to be closed")
	}
	if tel := hub.TelemetrySnapshot(); tel.WriteFailures != 1 || tel.Disconnects != 1 {
		t.Fatalf("unexpected telemetry %+v", tel)
	}
}

func TestMsgpackSubscriberReceivesBinaryFrames(t *testing.T) {
	hub, _ := newTestHub(t, nil)
	conn := &fakeConn{}
	id, _ := hub.Join(conn, proto.Msgpack, "bin")
	hub.Advance()
	waitFor(t, "frames", func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.frames) >= 2
	})

	conn.mu.Lock()
	initFrame, updateFrame := conn.frames[0], conn.frames[1]
	conn.mu.Unlock()

	var init proto.Init
	if err := proto.Msgpack.Unmarshal(initFrame, &init); err != nil {
		t.Fatalf("decode init: %v", err)
	}
	if init.Type != proto.TypeInit || init.ID != uint64(id) {
		t.Fatalf("unexpected init %+v", init)
	}
	var update proto.Update
	if err := proto.Msgpack.Unmarshal(updateFrame, &update); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if update.Tick != 1 || len(update.Snakes) != 1 {
		t.Fatalf("unexpected update %+v", update)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"  bob ":                   "bob",
		"":                         "",
		"abcdefghijklmnopqrstuvwx": "abcdefghijklmnop",
		"ääääääääääääääääää":       "ääääääääääääääää",
		"\xff\xfe":                 "",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
