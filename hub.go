package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"unicode/utf8"

	"snake-arena/server/internal/net/proto"
	"snake-arena/server/internal/sim"
	"snake-arena/server/internal/telemetry"
	"snake-arena/server/internal/world"
	"snake-arena/server/logging"
	"snake-arena/server/logging/lifecycle"
	"snake-arena/server/logging/network"
	"snake-arena/server/logging/simulation"
)

// ErrServerFull is returned by Join when the arena is at capacity.
var ErrServerFull = errors.New("server: arena full")

// HubConfig collects everything needed to build a hub.
type HubConfig struct {
	World         world.Config
	TickRate      int
	Seed          int64 // zero seeds from the clock
	SendQueueSize int
	Logger        telemetry.Logger
	Clock         logging.Clock
}

// DefaultHubConfig returns the stock arena at 30 ticks per second.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		World:         world.DefaultConfig(),
		TickRate:      sim.DefaultTickRate,
		SendQueueSize: defaultSendQueue,
	}
}

// Hub owns the world and every connected subscriber. All world mutations,
// ticks and intents alike, happen under mu.
type Hub struct {
	mu          sync.Mutex
	world       *world.World
	subscribers map[world.PlayerID]*subscriber

	cfg       HubConfig
	info      *proto.WorldInfo
	loop      *sim.Loop
	publisher logging.Publisher
	logger    telemetry.Logger
	telemetry *telemetryCounters
}

// NewHub builds a hub and its world. A nil publisher discards events.
func NewHub(cfg HubConfig, pub logging.Publisher) (*Hub, error) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = sim.DefaultTickRate
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = defaultSendQueue
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Clock.Now().UnixNano()
	}
	w, err := world.New(cfg.World, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	h := &Hub{
		world:       w,
		subscribers: make(map[world.PlayerID]*subscriber),
		cfg:         cfg,
		info:        proto.NewWorldInfo(cfg.World, cfg.TickRate),
		publisher:   pub,
		logger:      logger,
		telemetry:   newTelemetryCounters(),
	}
	h.loop = sim.NewLoop(sim.StepperFunc(h.step), sim.LoopConfig{TickRate: cfg.TickRate}, cfg.Clock, sim.LoopHooks{
		AfterStep: h.afterStep,
	})
	return h, nil
}

// TickRate reports the configured steps per second.
func (h *Hub) TickRate() int {
	return h.cfg.TickRate
}

// WorldInfo returns the constants advertised to clients.
func (h *Hub) WorldInfo() proto.WorldInfo {
	return *h.info
}

// SanitizeName trims a requested display name and caps it at 16 runes.
// Invalid UTF-8 yields an empty name.
func SanitizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if !utf8.ValidString(name) {
		return ""
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return strings.TrimSpace(name)
}

// Join admits conn as a new player, spawns its snake and queues the init
// frame ahead of any update. At capacity the client gets an error frame, the
// connection is closed and ErrServerFull is returned with the world untouched.
func (h *Hub) Join(conn Conn, codec proto.Codec, name string) (world.PlayerID, error) {
	if codec == nil {
		codec = proto.JSON
	}
	name = SanitizeName(name)

	h.mu.Lock()
	p, err := h.world.Join(name)
	if err != nil {
		players, tick := h.world.PlayerCount(), h.world.Tick()
		h.mu.Unlock()
		if errors.Is(err, world.ErrWorldFull) {
			h.reject(conn, codec, tick, players)
			return 0, ErrServerFull
		}
		_ = conn.Close()
		return 0, err
	}

	sub := newSubscriber(p.ID, conn, codec, h.cfg.SendQueueSize)
	h.subscribers[p.ID] = sub
	if data, err := codec.Marshal(proto.NewInit(p, h.info)); err == nil {
		sub.enqueue(data)
	}
	tick := h.world.Tick()
	id, color, head := p.ID, p.Color, p.Body.Head()
	name = p.Name
	h.mu.Unlock()

	go sub.run(func(err error) { h.handleWriteError(id, err) })

	h.telemetry.joins.Add(1)
	ctx := context.Background()
	actor := logging.PlayerRef(uint64(id))
	lifecycle.PlayerJoined(ctx, h.publisher, tick, actor, lifecycle.PlayerJoinedPayload{Name: name, Color: color, Codec: codec.Name()}, nil)
	lifecycle.PlayerSpawned(ctx, h.publisher, tick, actor, lifecycle.PlayerSpawnedPayload{SpawnX: head.X, SpawnY: head.Y}, nil)
	return id, nil
}

func (h *Hub) reject(conn Conn, codec proto.Codec, tick uint64, players int) {
	h.telemetry.rejections.Add(1)
	if data, err := codec.Marshal(proto.NewError(proto.MessageServerFull)); err == nil {
		if err := conn.Send(data); err != nil {
			h.logger.Printf("[hub] failed to send rejection: %v", err)
		}
	}
	_ = conn.Close()
	lifecycle.PlayerRejected(context.Background(), h.publisher, tick, lifecycle.PlayerRejectedPayload{
		Reason:  proto.MessageServerFull,
		Players: players,
		Limit:   h.cfg.World.MaxPlayers,
	}, nil)
}

// Leave disconnects a player. A living snake is converted to food before the
// record is deleted. Repeated calls are no-ops.
func (h *Hub) Leave(id world.PlayerID, reason string) bool {
	h.mu.Lock()
	removal, ok := h.world.RemovePlayer(id)
	sub := h.subscribers[id]
	delete(h.subscribers, id)
	tick := h.world.Tick()
	h.mu.Unlock()

	if sub != nil {
		sub.close()
	}
	if !ok {
		return false
	}
	h.telemetry.disconnects.Add(1)
	lifecycle.PlayerDisconnected(context.Background(), h.publisher, tick, logging.PlayerRef(uint64(id)), lifecycle.PlayerDisconnectedPayload{
		Reason:   reason,
		WasAlive: removal.WasAlive,
		Dropped:  removal.Dropped,
	}, nil)
	return true
}

func (h *Hub) handleWriteError(id world.PlayerID, err error) {
	h.telemetry.writeFailures.Add(1)
	network.WriteFailed(context.Background(), h.publisher, h.Tick(), logging.PlayerRef(uint64(id)), network.WriteFailedPayload{Error: err.Error()}, nil)
	h.Leave(id, "write_failed")
}

// SetHeading applies a direction intent immediately.
func (h *Hub) SetHeading(id world.PlayerID, dx, dy float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.SetHeading(id, dx, dy)
}

// Respawn revives a dead player and queues a fresh init frame.
func (h *Hub) Respawn(id world.PlayerID) error {
	h.mu.Lock()
	if err := h.world.Respawn(id); err != nil {
		h.mu.Unlock()
		return err
	}
	p, _ := h.world.Player(id)
	if sub := h.subscribers[id]; sub != nil {
		if data, err := sub.codec.Marshal(proto.NewInit(p, h.info)); err == nil {
			sub.enqueue(data)
		}
	}
	tick, head := h.world.Tick(), p.Body.Head()
	h.mu.Unlock()

	lifecycle.PlayerSpawned(context.Background(), h.publisher, tick, logging.PlayerRef(uint64(id)), lifecycle.PlayerSpawnedPayload{SpawnX: head.X, SpawnY: head.Y, Respawn: true}, nil)
	return nil
}

// ReportMalformed records an inbound message that was dropped.
func (h *Hub) ReportMalformed(id world.PlayerID, size int, reason string) {
	h.telemetry.malformedMessages.Add(1)
	network.MessageDropped(context.Background(), h.publisher, h.Tick(), logging.PlayerRef(uint64(id)), network.MessageDroppedPayload{Reason: reason, Size: size}, nil)
}

// Tick reports the last completed simulation step.
func (h *Hub) Tick() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Tick()
}

// Advance runs one simulation step immediately and broadcasts its result.
func (h *Hub) Advance() sim.LoopStepResult {
	return h.loop.Advance()
}

// RunSimulation drives the fixed-rate tick loop until the stop channel closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	h.loop.Run(stop)
}

type outbound struct {
	sub  *subscriber
	dead bool
}

func (h *Hub) step(sim.TickContext) {
	h.mu.Lock()
	res := h.world.Step()
	targets := make([]outbound, 0, len(h.subscribers))
	for _, p := range h.world.Players() {
		if sub := h.subscribers[p.ID]; sub != nil {
			targets = append(targets, outbound{sub: sub})
		}
	}
	victims := make(map[world.PlayerID]bool, len(res.Eliminations))
	for _, elim := range res.Eliminations {
		victims[elim.PlayerID] = true
	}
	for i := range targets {
		targets[i].dead = victims[targets[i].sub.id]
	}
	h.mu.Unlock()

	h.broadcast(res, targets)
	h.publishStep(res)
}

// broadcast encodes the update once per codec and queues it, preceded by a
// dead notice for each eliminated player.
func (h *Hub) broadcast(res world.StepResult, targets []outbound) {
	update := proto.NewUpdate(res.Snapshot)
	frames := make(map[string][]byte, 2)
	deadFrames := make(map[string][]byte, 2)
	encoded := 0
	queued := 0

	encode := func(cache map[string][]byte, codec proto.Codec, msg any) []byte {
		if data, ok := cache[codec.Name()]; ok {
			return data
		}
		data, err := codec.Marshal(msg)
		if err != nil {
			h.logger.Printf("[hub] failed to encode %T with %s: %v", msg, codec.Name(), err)
			return nil
		}
		cache[codec.Name()] = data
		return data
	}

	for _, target := range targets {
		if target.dead {
			if data := encode(deadFrames, target.sub.codec, proto.NewDead()); data != nil {
				h.deliver(target.sub, data, proto.TypeDead, res.Tick)
			}
		}
		if _, seen := frames[target.sub.codec.Name()]; !seen {
			if data := encode(frames, target.sub.codec, update); data != nil {
				encoded += len(data)
			}
		}
		if data := frames[target.sub.codec.Name()]; data != nil && h.deliver(target.sub, data, proto.TypeUpdate, res.Tick) {
			queued++
		}
	}
	h.telemetry.RecordBroadcast(queued, encoded)
}

func (h *Hub) deliver(sub *subscriber, data []byte, kind string, tick uint64) bool {
	if sub.enqueue(data) {
		return true
	}
	select {
	case <-sub.done:
		return false
	default:
	}
	h.telemetry.framesDropped.Add(1)
	if dropped := sub.dropped.Load(); dropped&(dropped-1) == 0 {
		network.FrameDropped(context.Background(), h.publisher, tick, logging.PlayerRef(uint64(sub.id)), network.FrameDroppedPayload{Kind: kind, Dropped: dropped}, nil)
	}
	return false
}

func (h *Hub) publishStep(res world.StepResult) {
	ctx := context.Background()
	causes := make(map[world.PlayerID]world.Collision, len(res.Collisions))
	for _, c := range res.Collisions {
		causes[c.Victim] = c
	}
	for _, elim := range res.Eliminations {
		h.telemetry.eliminations.Add(1)
		collision := causes[elim.PlayerID]
		var killer logging.EntityRef
		if collision.Other != 0 {
			killer = logging.PlayerRef(uint64(collision.Other))
		}
		lifecycle.PlayerEliminated(ctx, h.publisher, res.Tick, logging.PlayerRef(uint64(elim.PlayerID)), killer, lifecycle.PlayerEliminatedPayload{
			Cause:   string(collision.Cause),
			Length:  elim.Length,
			Score:   elim.Score,
			Dropped: elim.Dropped,
			X:       elim.At.X,
			Y:       elim.At.Y,
		}, nil)
	}
	for _, c := range res.Consumptions {
		h.telemetry.foodConsumed.Add(1)
		simulation.FoodConsumed(ctx, h.publisher, res.Tick, logging.PlayerRef(uint64(c.PlayerID)), simulation.FoodConsumedPayload{
			Food:        uint64(c.Food),
			Replacement: uint64(c.Replacement),
			Score:       c.Score,
		}, nil)
	}
}

func (h *Hub) afterStep(result sim.LoopStepResult) {
	streak := h.telemetry.RecordTick(result.Duration, result.Overrun)
	if !result.Overrun {
		return
	}
	ratio := 0.0
	if result.Budget > 0 {
		ratio = float64(result.Duration) / float64(result.Budget)
	}
	simulation.TickBudgetOverrun(context.Background(), h.publisher, result.Tick, simulation.TickBudgetOverrunPayload{
		DurationMillis: result.Duration.Milliseconds(),
		BudgetMillis:   result.Budget.Milliseconds(),
		Ratio:          ratio,
		Streak:         streak,
	}, nil)
}

// DiagnosticsPlayer summarises one connection for the diagnostics endpoint.
type DiagnosticsPlayer struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Alive         bool   `json:"alive"`
	Length        int    `json:"length"`
	Score         int    `json:"score"`
	Codec         string `json:"codec,omitempty"`
	QueueDepth    int    `json:"queueDepth"`
	FramesSent    uint64 `json:"framesSent"`
	DroppedFrames uint64 `json:"droppedFrames"`
}

// DiagnosticsSnapshot lists every player in join order.
func (h *Hub) DiagnosticsSnapshot() []DiagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := h.world.Players()
	out := make([]DiagnosticsPlayer, 0, len(players))
	for _, p := range players {
		entry := DiagnosticsPlayer{
			ID:     uint64(p.ID),
			Name:   p.Name,
			Alive:  p.Alive,
			Length: p.Length(),
			Score:  p.Score,
		}
		if sub := h.subscribers[p.ID]; sub != nil {
			entry.Codec = sub.codec.Name()
			entry.QueueDepth = sub.queueDepth()
			entry.FramesSent = sub.sent.Load()
			entry.DroppedFrames = sub.dropped.Load()
		}
		out = append(out, entry)
	}
	return out
}

// WorldStats is a coarse summary of arena population.
type WorldStats struct {
	Tick    uint64 `json:"tick"`
	Players int    `json:"players"`
	Alive   int    `json:"alive"`
	Foods   int    `json:"foods"`
}

// Stats reports the current arena population.
func (h *Hub) Stats() WorldStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	stats := WorldStats{Tick: h.world.Tick(), Players: h.world.PlayerCount(), Foods: h.world.FoodCount()}
	for _, p := range h.world.Players() {
		if p.Alive {
			stats.Alive++
		}
	}
	return stats
}

// TelemetrySnapshot returns the hub counters.
func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}

// Close disconnects every subscriber; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]world.PlayerID, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	for _, id := range ids {
		h.Leave(id, "shutdown")
	}
}

// Snapshot returns the current world state without advancing it.
func (h *Hub) Snapshot() world.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Snapshot()
}
