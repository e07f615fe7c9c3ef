package world

import "testing"

func TestAdvancePreservesLengthWithoutGrowth(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeSnake(t, w, Vec2{X: 1000, Y: 1000}, Vec2{X: 1, Y: 0}, 10)

	for i := 0; i < 20; i++ {
		w.Advance()
		if p.Length() != 10 {
			t.Fatalf("tick %d: expected length 10, got %d", i, p.Length())
		}
	}
	if head := p.Body.Head(); head.X != 1080 || head.Y != 1000 {
		t.Fatalf("expected head at (1080,1000), got %+v", head)
	}
}

func TestAdvanceGrowsOneSegmentPerTick(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeSnake(t, w, Vec2{X: 500, Y: 500}, Vec2{X: 0, Y: 1}, 10)
	p.PendingGrowth = 5

	for i := 1; i <= 5; i++ {
		w.Advance()
		if p.Length() != 10+i {
			t.Fatalf("tick %d: expected length %d, got %d", i, 10+i, p.Length())
		}
		if p.PendingGrowth != 5-i {
			t.Fatalf("tick %d: expected pending growth %d, got %d", i, 5-i, p.PendingGrowth)
		}
	}
	w.Advance()
	if p.Length() != 15 {
		t.Fatalf("expected growth to stop at 15, got %d", p.Length())
	}
	if p.PendingGrowth != 0 {
		t.Fatalf("expected pending growth to stay at zero, got %d", p.PendingGrowth)
	}
}

func TestAdvanceClampsHeadToBounds(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeSnake(t, w, Vec2{X: 1998, Y: 3}, Vec2{X: 0.6, Y: -0.8}, 10)

	w.Advance()
	head := p.Body.Head()
	if head.X != 2000 || head.Y != 0 {
		t.Fatalf("expected head clamped to (2000,0), got %+v", head)
	}
	if p.Length() != 10 {
		t.Fatalf("expected length 10 after clamped move, got %d", p.Length())
	}
}

func TestAdvanceHoldsSnakePressedAgainstWall(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeSnake(t, w, Vec2{X: 2000, Y: 700}, Vec2{X: 1, Y: 0}, 10)
	p.PendingGrowth = 3
	p.Score = 4
	before := p.Body.Points()

	for i := 0; i < 50; i++ {
		w.Advance()
	}
	if p.Length() != 10 || p.PendingGrowth != 3 || p.Score != 4 {
		t.Fatalf("expected blocked snake unchanged, got length=%d growth=%d score=%d", p.Length(), p.PendingGrowth, p.Score)
	}
	for i, seg := range p.Body.Points() {
		if seg != before[i] {
			t.Fatalf("segment %d moved from %+v to %+v", i, before[i], seg)
		}
	}
}

func TestAdvanceSlidesAlongWallWhenHeadingHasInwardComponent(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeSnake(t, w, Vec2{X: 2000, Y: 700}, Vec2{X: 0.6, Y: 0.8}, 10)

	w.Advance()
	head := p.Body.Head()
	if head.X != 2000 {
		t.Fatalf("expected x to stay clamped at 2000, got %v", head.X)
	}
	if head.Y <= 700 {
		t.Fatalf("expected y to advance past 700, got %v", head.Y)
	}
	if p.Length() != 10 {
		t.Fatalf("expected length 10, got %d", p.Length())
	}
}

func TestAdvanceSkipsDeadPlayers(t *testing.T) {
	w := newTestWorld(t, nil)
	p, err := w.AddPlayer("ghost")
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	w.Advance()
	if p.Length() != 0 || p.Alive {
		t.Fatalf("expected unspawned player untouched, got length=%d alive=%v", p.Length(), p.Alive)
	}
}
