package world

import "math"

// PlacePlayer picks a spawn point and heading. Candidates closer than
// SafeDistance to a living head are rejected; after SpawnAttempts candidates
// the last one is used regardless.
func (w *World) PlacePlayer() (Vec2, Vec2) {
	heads := make([]Vec2, 0, len(w.order))
	for _, p := range w.alivePlayers() {
		heads = append(heads, p.Body.Head())
	}

	var candidate Vec2
	for attempt := 0; attempt < w.cfg.SpawnAttempts; attempt++ {
		candidate = w.randomPoint()
		if w.isSafeSpawn(candidate, heads) {
			break
		}
	}

	angle := w.randomAngle()
	return candidate, Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

func (w *World) isSafeSpawn(candidate Vec2, heads []Vec2) bool {
	for _, head := range heads {
		if within(candidate, head, w.cfg.SafeDistance) {
			return false
		}
	}
	return true
}

// PlaceFood creates a consumable at a uniform random position. The caller
// decides whether to add it to the world.
func (w *World) PlaceFood() Food {
	return Food{
		ID:    FoodID(w.foodIDs.next()),
		Pos:   w.randomPoint(),
		Color: w.randomFoodColor(),
	}
}

func (w *World) spawnFood() Food {
	food := w.PlaceFood()
	w.foods = append(w.foods, food)
	return food
}

// spawnPlayer (re)initialises p in place as a fresh, living snake.
func (w *World) spawnPlayer(p *Player) {
	head, heading := w.PlacePlayer()
	p.Body.Reset()
	for i := 0; i < w.cfg.InitialLength; i++ {
		p.Body.PushBack(head.Add(heading.Scale(-w.cfg.SegmentSpacing * float64(i))))
	}
	p.Heading = heading
	p.PendingGrowth = 0
	p.Score = 0
	p.Alive = true
}
