package world

import (
	"errors"
	"math/rand"
)

var (
	// ErrUnknownPlayer is returned for intents naming a player that is not in the world.
	ErrUnknownPlayer = errors.New("world: unknown player")
	// ErrNotAlive is returned for intents that need a living snake.
	ErrNotAlive = errors.New("world: player is not alive")
	// ErrAlreadyAlive is returned when respawning a living snake.
	ErrAlreadyAlive = errors.New("world: player is already alive")
	// ErrWorldFull is returned when the player cap has been reached.
	ErrWorldFull = errors.New("world: player limit reached")
)

// World is the canonical state of one arena. It is not safe for concurrent
// use; the owner serialises ticks and intents.
type World struct {
	cfg     Config
	rng     *rand.Rand
	players map[PlayerID]*Player
	order   []PlayerID
	foods   []Food
	tick    uint64

	playerIDs idAllocator
	foodIDs   idAllocator
}

// New constructs a world and seeds it with cfg.FoodTarget consumables. A nil
// rng falls back to the global source.
func New(cfg Config, rng *rand.Rand) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Palette = append([]string(nil), cfg.Palette...)
	w := &World{
		cfg:     cfg,
		rng:     rng,
		players: make(map[PlayerID]*Player),
		foods:   make([]Food, 0, cfg.FoodTarget),
	}
	for i := 0; i < cfg.FoodTarget; i++ {
		w.spawnFood()
	}
	return w, nil
}

// Config returns the constants the world was built with.
func (w *World) Config() Config {
	return w.cfg
}

// Tick reports the number of completed steps.
func (w *World) Tick() uint64 {
	return w.tick
}

// Player looks up a player record.
func (w *World) Player(id PlayerID) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// PlayerCount reports connected players, alive or not.
func (w *World) PlayerCount() int {
	return len(w.players)
}

// Players returns every player in join order.
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.players[id])
	}
	return out
}

// alivePlayers returns living players in join order.
func (w *World) alivePlayers() []*Player {
	out := make([]*Player, 0, len(w.order))
	for _, id := range w.order {
		if p := w.players[id]; p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// Foods returns a copy of the current consumables.
func (w *World) Foods() []Food {
	return append([]Food(nil), w.foods...)
}

// FoodCount reports the current number of consumables.
func (w *World) FoodCount() int {
	return len(w.foods)
}

// AddPlayer registers a new, not yet spawned player. An empty name becomes
// "Player N".
func (w *World) AddPlayer(name string) (*Player, error) {
	if len(w.players) >= w.cfg.MaxPlayers {
		return nil, ErrWorldFull
	}
	id := PlayerID(w.playerIDs.next())
	if name == "" {
		name = defaultName(id)
	}
	p := &Player{
		ID:    id,
		Name:  name,
		Color: w.cfg.PlayerColor(id),
	}
	w.players[id] = p
	w.order = append(w.order, id)
	return p, nil
}

// SetHeading replaces a living player's heading with the normalised (dx, dy).
func (w *World) SetHeading(id PlayerID, dx, dy float64) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if !p.Alive {
		return ErrNotAlive
	}
	heading, err := NewHeading(dx, dy)
	if err != nil {
		return err
	}
	p.Heading = heading
	return nil
}

func (w *World) forget(id PlayerID) {
	delete(w.players, id)
	for i, candidate := range w.order {
		if candidate == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}
