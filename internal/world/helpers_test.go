package world

import (
	"math/rand"
	"testing"
)

func newTestWorld(t *testing.T, mutate func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FoodTarget = 0
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := New(cfg, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("failed to construct world: %v", err)
	}
	return w
}

// placeSnake adds a living player whose body trails straight behind head.
func placeSnake(t *testing.T, w *World, head, heading Vec2, length int) *Player {
	t.Helper()
	p, err := w.AddPlayer("")
	if err != nil {
		t.Fatalf("failed to add player: %v", err)
	}
	p.Body.Reset()
	for i := 0; i < length; i++ {
		p.Body.PushBack(head.Add(heading.Scale(-w.cfg.SegmentSpacing * float64(i))))
	}
	p.Heading = heading
	p.Alive = true
	return p
}

func addFood(w *World, pos Vec2) Food {
	food := Food{ID: FoodID(w.foodIDs.next()), Pos: pos, Color: "hsl(0, 100%, 50%)"}
	w.foods = append(w.foods, food)
	return food
}

func containsID(ids []PlayerID, id PlayerID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
