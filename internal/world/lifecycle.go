package world

// Elimination describes a snake that died this tick.
type Elimination struct {
	PlayerID PlayerID
	Name     string
	Length   int
	Score    int
	Dropped  int
	At       Vec2
}

// Removal describes a player record deleted on disconnect.
type Removal struct {
	PlayerID PlayerID
	Name     string
	WasAlive bool
	Dropped  int
}

// Consumption describes one food eaten this tick.
type Consumption struct {
	PlayerID    PlayerID
	Food        FoodID
	Replacement FoodID
	Score       int
}

// ApplyEliminations kills each listed player that is still alive, converting
// every other body segment into food. Unknown or already dead ids are
// skipped.
func (w *World) ApplyEliminations(ids []PlayerID) []Elimination {
	out := make([]Elimination, 0, len(ids))
	for _, id := range ids {
		p, ok := w.players[id]
		if !ok || !p.Alive {
			continue
		}
		elim := Elimination{
			PlayerID: id,
			Name:     p.Name,
			Length:   p.Body.Len(),
			Score:    p.Score,
		}
		if p.Body.Len() > 0 {
			elim.At = p.Body.Head()
		}
		elim.Dropped = w.kill(p)
		out = append(out, elim)
	}
	return out
}

// kill marks p dead, drops its remains and clears its body and score.
func (w *World) kill(p *Player) int {
	p.Alive = false
	dropped := w.dropRemains(p)
	p.Body.Reset()
	p.Score = 0
	p.PendingGrowth = 0
	return dropped
}

// dropRemains converts segments 0, 2, 4, ... into new food.
func (w *World) dropRemains(p *Player) int {
	dropped := 0
	for i := 0; i < p.Body.Len(); i += 2 {
		w.foods = append(w.foods, Food{
			ID:    FoodID(w.foodIDs.next()),
			Pos:   p.Body.At(i),
			Color: w.randomFoodColor(),
		})
		dropped++
	}
	return dropped
}

// RemovePlayer deletes a disconnected player. A living snake is converted to
// food exactly as on elimination. Reports false if the player was already
// gone.
func (w *World) RemovePlayer(id PlayerID) (Removal, bool) {
	p, ok := w.players[id]
	if !ok {
		return Removal{}, false
	}
	removal := Removal{PlayerID: id, Name: p.Name, WasAlive: p.Alive}
	if p.Alive {
		removal.Dropped = w.kill(p)
	}
	w.forget(id)
	return removal, true
}

// ApplyConsumption lets every living snake eat the food under its head. Each
// eaten item is replaced immediately so the population is preserved.
func (w *World) ApplyConsumption() []Consumption {
	var out []Consumption
	radius := w.cfg.EatRadius()
	for _, p := range w.alivePlayers() {
		if p.Body.Len() == 0 {
			continue
		}
		head := p.Body.Head()
		for f := len(w.foods) - 1; f >= 0; f-- {
			food := w.foods[f]
			if !within(head, food.Pos, radius) {
				continue
			}
			p.Score++
			p.PendingGrowth += w.cfg.GrowPerFood
			w.foods = append(w.foods[:f], w.foods[f+1:]...)
			replacement := w.spawnFood()
			out = append(out, Consumption{
				PlayerID:    p.ID,
				Food:        food.ID,
				Replacement: replacement.ID,
				Score:       p.Score,
			})
		}
	}
	return out
}

// Join adds a player and spawns it right away.
func (w *World) Join(name string) (*Player, error) {
	p, err := w.AddPlayer(name)
	if err != nil {
		return nil, err
	}
	w.spawnPlayer(p)
	return p, nil
}

// Respawn brings a dead or freshly connected player back with a new body.
func (w *World) Respawn(id PlayerID) error {
	p, ok := w.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if p.Alive {
		return ErrAlreadyAlive
	}
	w.spawnPlayer(p)
	return nil
}
