package lifecycle

import (
	"context"

	"snake-arena/server/logging"
)

const (
	// EventPlayerJoined is emitted when a connection is admitted as a player.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerRejected is emitted when a connection is turned away at capacity.
	EventPlayerRejected logging.EventType = "lifecycle.player_rejected"
	// EventPlayerSpawned is emitted whenever a snake is (re)placed in the arena.
	EventPlayerSpawned logging.EventType = "lifecycle.player_spawned"
	// EventPlayerEliminated is emitted when a snake dies in a collision.
	EventPlayerEliminated logging.EventType = "lifecycle.player_eliminated"
	// EventPlayerDisconnected is emitted when a player leaves the world.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
)

// PlayerJoinedPayload captures the identity handed to a new player.
type PlayerJoinedPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Codec string `json:"codec,omitempty"`
}

// PlayerRejectedPayload captures why a connection was refused.
type PlayerRejectedPayload struct {
	Reason  string `json:"reason"`
	Players int    `json:"players"`
	Limit   int    `json:"limit"`
}

// PlayerSpawnedPayload captures spawn placement.
type PlayerSpawnedPayload struct {
	SpawnX  float64 `json:"spawnX"`
	SpawnY  float64 `json:"spawnY"`
	Respawn bool    `json:"respawn"`
}

// PlayerEliminatedPayload captures how a snake died and what it left behind.
type PlayerEliminatedPayload struct {
	Cause   string  `json:"cause"`
	Length  int     `json:"length"`
	Score   int     `json:"score"`
	Dropped int     `json:"dropped"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// PlayerDisconnectedPayload captures the reason a player left.
type PlayerDisconnectedPayload struct {
	Reason   string `json:"reason"`
	WasAlive bool   `json:"wasAlive"`
	Dropped  int    `json:"dropped"`
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: severity,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerJoined, logging.SeverityInfo, tick, actor, nil, payload, extra)
}

// PlayerRejected publishes a warning when the arena is full.
func PlayerRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload PlayerRejectedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerRejected, logging.SeverityWarn, tick, logging.EntityRef{Kind: logging.EntityKindConnection}, nil, payload, extra)
}

// PlayerSpawned publishes a spawn or respawn.
func PlayerSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerSpawnedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerSpawned, logging.SeverityDebug, tick, actor, nil, payload, extra)
}

// PlayerEliminated publishes an elimination. killer may be the zero ref when
// the cause has no single counterpart.
func PlayerEliminated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, killer logging.EntityRef, payload PlayerEliminatedPayload, extra map[string]any) {
	var targets []logging.EntityRef
	if killer.ID != "" {
		targets = []logging.EntityRef{killer}
	}
	publish(ctx, pub, EventPlayerEliminated, logging.SeverityInfo, tick, actor, targets, payload, extra)
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDisconnectedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerDisconnected, logging.SeverityInfo, tick, actor, nil, payload, extra)
}
