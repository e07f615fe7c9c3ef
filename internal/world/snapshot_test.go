package world

import "testing"

func TestSnapshotLeaderboardOrdersByLengthThenJoinOrder(t *testing.T) {
	w := newTestWorld(t, nil)
	first := placeSnake(t, w, Vec2{X: 200, Y: 200}, Vec2{X: 1, Y: 0}, 12)
	second := placeSnake(t, w, Vec2{X: 800, Y: 800}, Vec2{X: 1, Y: 0}, 10)
	third := placeSnake(t, w, Vec2{X: 1500, Y: 1500}, Vec2{X: 1, Y: 0}, 12)

	snap := w.Snapshot()
	want := []PlayerID{first.ID, third.ID, second.ID}
	if len(snap.Leaderboard) != len(want) {
		t.Fatalf("expected %d leaderboard entries, got %d", len(want), len(snap.Leaderboard))
	}
	for i, id := range want {
		if snap.Leaderboard[i].ID != id {
			t.Fatalf("leaderboard[%d] = %d, expected %d", i, snap.Leaderboard[i].ID, id)
		}
		if snap.Snakes[i].ID != id {
			t.Fatalf("snakes[%d] = %d, expected %d", i, snap.Snakes[i].ID, id)
		}
	}
	if snap.Leaderboard[0].Score != 12 || snap.Leaderboard[2].Score != 10 {
		t.Fatalf("expected scores to be body lengths, got %+v", snap.Leaderboard)
	}
}

func TestSnapshotOmitsDeadPlayers(t *testing.T) {
	w := newTestWorld(t, nil)
	alive := placeSnake(t, w, Vec2{X: 200, Y: 200}, Vec2{X: 1, Y: 0}, 10)
	dead := placeSnake(t, w, Vec2{X: 1000, Y: 1000}, Vec2{X: 1, Y: 0}, 10)
	w.ApplyEliminations([]PlayerID{dead.ID})

	snap := w.Snapshot()
	if len(snap.Snakes) != 1 || snap.Snakes[0].ID != alive.ID {
		t.Fatalf("expected only the living snake, got %+v", snap.Snakes)
	}
	if len(snap.Leaderboard) != 1 || snap.Leaderboard[0].ID != alive.ID {
		t.Fatalf("expected only the living snake on the leaderboard, got %+v", snap.Leaderboard)
	}
	if len(snap.Foods) != 5 {
		t.Fatalf("expected remains in snapshot food list, got %d", len(snap.Foods))
	}
}

func TestSnapshotIsDetachedFromWorld(t *testing.T) {
	w := newTestWorld(t, nil)
	p := placeSnake(t, w, Vec2{X: 200, Y: 200}, Vec2{X: 1, Y: 0}, 3)
	addFood(w, Vec2{X: 10, Y: 10})

	snap := w.Snapshot()
	snap.Snakes[0].Segments[0] = Vec2{X: -1, Y: -1}
	snap.Foods[0].Pos = Vec2{X: -1, Y: -1}

	if p.Body.Head() != (Vec2{X: 200, Y: 200}) {
		t.Fatalf("snapshot mutation leaked into body: %+v", p.Body.Head())
	}
	if w.Foods()[0].Pos != (Vec2{X: 10, Y: 10}) {
		t.Fatalf("snapshot mutation leaked into food: %+v", w.Foods()[0].Pos)
	}
}
