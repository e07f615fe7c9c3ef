package world

import "sort"

// SnakeView is the outbound view of a living player.
type SnakeView struct {
	ID       PlayerID
	Name     string
	Color    string
	Score    int
	Segments []Vec2
}

// LeaderboardEntry ranks a living player by length.
type LeaderboardEntry struct {
	ID    PlayerID
	Name  string
	Score int
	Color string
}

// Snapshot is the full post-resolution state of one tick.
type Snapshot struct {
	Tick        uint64
	Snakes      []SnakeView
	Foods       []Food
	Leaderboard []LeaderboardEntry
}

// Snapshot captures living snakes, all food and the leaderboard. The
// displayed score is the body length; equal lengths keep join order.
func (w *World) Snapshot() Snapshot {
	alive := w.alivePlayers()
	snakes := make([]SnakeView, 0, len(alive))
	for _, p := range alive {
		snakes = append(snakes, SnakeView{
			ID:       p.ID,
			Name:     p.Name,
			Color:    p.Color,
			Score:    p.Body.Len(),
			Segments: p.Body.Points(),
		})
	}
	sort.SliceStable(snakes, func(i, j int) bool {
		return snakes[i].Score > snakes[j].Score
	})

	leaderboard := make([]LeaderboardEntry, 0, len(snakes))
	for _, s := range snakes {
		leaderboard = append(leaderboard, LeaderboardEntry{ID: s.ID, Name: s.Name, Score: s.Score, Color: s.Color})
	}

	return Snapshot{
		Tick:        w.tick,
		Snakes:      snakes,
		Foods:       w.Foods(),
		Leaderboard: leaderboard,
	}
}
