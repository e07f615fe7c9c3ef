package proto

import (
	"snake-arena/server/internal/world"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	TypeUpdate  = "update"
	TypeInit    = "init"
	TypeDead    = "dead"
	TypeError   = "error"
	TypeDir     = "dir"
	TypeRespawn = "respawn"

	// MessageServerFull is sent to a client turned away at capacity.
	MessageServerFull = "Server full"
)

type Point struct {
	X float64 `json:"x" jsonschema:"required"`
	Y float64 `json:"y" jsonschema:"required"`
}

type Snake struct {
	ID       uint64  `json:"id" jsonschema:"required"`
	Name     string  `json:"name" jsonschema:"required"`
	Color    string  `json:"color" jsonschema:"required"`
	Score    int     `json:"score" jsonschema:"required"`
	Segments []Point `json:"segments" jsonschema:"required"`
}

type Food struct {
	ID    uint64  `json:"id" jsonschema:"required"`
	X     float64 `json:"x" jsonschema:"required"`
	Y     float64 `json:"y" jsonschema:"required"`
	Color string  `json:"color" jsonschema:"required"`
}

type LeaderboardEntry struct {
	ID    uint64 `json:"id" jsonschema:"required"`
	Name  string `json:"name" jsonschema:"required"`
	Score int    `json:"score" jsonschema:"required"`
	Color string `json:"color" jsonschema:"required"`
}

// Update is broadcast to every connection once per tick.
type Update struct {
	Type        string             `json:"type" jsonschema:"required,enum=update"`
	Tick        uint64             `json:"tick" jsonschema:"required"`
	Snakes      []Snake            `json:"snakes" jsonschema:"required"`
	Foods       []Food             `json:"foods" jsonschema:"required"`
	Leaderboard []LeaderboardEntry `json:"leaderboard" jsonschema:"required"`
}

// WorldInfo carries the constants a client needs for rendering and prediction.
type WorldInfo struct {
	Width        float64 `json:"width" jsonschema:"required"`
	Height       float64 `json:"height" jsonschema:"required"`
	TickRate     int     `json:"tickRate" jsonschema:"required"`
	Speed        float64 `json:"speed" jsonschema:"required"`
	PlayerRadius float64 `json:"playerRadius" jsonschema:"required"`
	FoodRadius   float64 `json:"foodRadius" jsonschema:"required"`
}

// Init is sent on connect and after every successful respawn.
type Init struct {
	Type  string     `json:"type" jsonschema:"required,enum=init"`
	Ver   int        `json:"ver,omitempty"`
	ID    uint64     `json:"id" jsonschema:"required"`
	Name  string     `json:"name" jsonschema:"required"`
	Color string     `json:"color" jsonschema:"required"`
	World *WorldInfo `json:"world,omitempty"`
}

// Dead is sent once to a player whose snake was eliminated.
type Dead struct {
	Type string `json:"type" jsonschema:"required,enum=dead"`
}

// Error is sent before the server closes a connection it refused.
type Error struct {
	Type    string `json:"type" jsonschema:"required,enum=error"`
	Message string `json:"message" jsonschema:"required"`
}

// ClientMessage is the union of inbound messages. DX and DY are pointers so a
// missing component can be told apart from zero.
type ClientMessage struct {
	Type string   `json:"type" jsonschema:"required,enum=dir,enum=respawn"`
	DX   *float64 `json:"dx,omitempty"`
	DY   *float64 `json:"dy,omitempty"`
}

// NewUpdate converts a world snapshot into its wire form.
func NewUpdate(snap world.Snapshot) Update {
	msg := Update{
		Type:        TypeUpdate,
		Tick:        snap.Tick,
		Snakes:      make([]Snake, 0, len(snap.Snakes)),
		Foods:       make([]Food, 0, len(snap.Foods)),
		Leaderboard: make([]LeaderboardEntry, 0, len(snap.Leaderboard)),
	}
	for _, s := range snap.Snakes {
		segments := make([]Point, len(s.Segments))
		for i, seg := range s.Segments {
			segments[i] = Point{X: seg.X, Y: seg.Y}
		}
		msg.Snakes = append(msg.Snakes, Snake{
			ID:       uint64(s.ID),
			Name:     s.Name,
			Color:    s.Color,
			Score:    s.Score,
			Segments: segments,
		})
	}
	for _, f := range snap.Foods {
		msg.Foods = append(msg.Foods, Food{ID: uint64(f.ID), X: f.Pos.X, Y: f.Pos.Y, Color: f.Color})
	}
	for _, e := range snap.Leaderboard {
		msg.Leaderboard = append(msg.Leaderboard, LeaderboardEntry{ID: uint64(e.ID), Name: e.Name, Score: e.Score, Color: e.Color})
	}
	return msg
}

// NewInit builds the identity message for p.
func NewInit(p *world.Player, info *WorldInfo) Init {
	return Init{Type: TypeInit, Ver: Version, ID: uint64(p.ID), Name: p.Name, Color: p.Color, World: info}
}

// NewWorldInfo extracts the client-facing constants from cfg.
func NewWorldInfo(cfg world.Config, tickRate int) *WorldInfo {
	return &WorldInfo{
		Width:        cfg.Width,
		Height:       cfg.Height,
		TickRate:     tickRate,
		Speed:        cfg.Speed,
		PlayerRadius: cfg.PlayerRadius,
		FoodRadius:   cfg.FoodRadius,
	}
}

func NewDead() Dead {
	return Dead{Type: TypeDead}
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}
