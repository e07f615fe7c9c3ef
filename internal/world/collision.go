package world

// CollisionCause names the rule that eliminated a player.
type CollisionCause string

const (
	CauseHeadToBody CollisionCause = "head_to_body"
	CauseHeadToHead CollisionCause = "head_to_head"
)

// Collision records that Victim must be eliminated because its head touched
// Other.
type Collision struct {
	Victim PlayerID
	Other  PlayerID
	Cause  CollisionCause
}

// frozenSnake is an immutable view of a living player used during detection.
type frozenSnake struct {
	id       PlayerID
	head     Vec2
	segments []Vec2
}

// DetectCollisions evaluates head-to-body and head-to-head contact between
// living players. Nothing is mutated; each victim appears once, tagged with
// the first rule that flagged it.
func (w *World) DetectCollisions() []Collision {
	alive := w.alivePlayers()
	snakes := make([]frozenSnake, 0, len(alive))
	for _, p := range alive {
		if p.Body.Len() == 0 {
			continue
		}
		segments := p.Body.Points()
		snakes = append(snakes, frozenSnake{id: p.ID, head: segments[0], segments: segments})
	}

	radius := w.cfg.CollisionRadius()
	seen := make(map[PlayerID]bool, len(snakes))
	var out []Collision
	mark := func(victim, other PlayerID, cause CollisionCause) {
		if seen[victim] {
			return
		}
		seen[victim] = true
		out = append(out, Collision{Victim: victim, Other: other, Cause: cause})
	}

	for i := range snakes {
		a := snakes[i]
		for j := range snakes {
			if i == j {
				continue
			}
			if hitsBody(a.head, snakes[j].segments, radius) {
				mark(a.id, snakes[j].id, CauseHeadToBody)
				break
			}
		}
	}

	for i := range snakes {
		for j := i + 1; j < len(snakes); j++ {
			a, b := snakes[i], snakes[j]
			if !within(a.head, b.head, radius) {
				continue
			}
			switch {
			case len(a.segments) > len(b.segments):
				mark(b.id, a.id, CauseHeadToHead)
			case len(b.segments) > len(a.segments):
				mark(a.id, b.id, CauseHeadToHead)
			default:
				mark(a.id, b.id, CauseHeadToHead)
				mark(b.id, a.id, CauseHeadToHead)
			}
		}
	}
	return out
}

// hitsBody tests head against every segment except the first.
func hitsBody(head Vec2, segments []Vec2, radius float64) bool {
	for k := 1; k < len(segments); k++ {
		if within(head, segments[k], radius) {
			return true
		}
	}
	return false
}

// Victims extracts the ids to eliminate.
func Victims(collisions []Collision) []PlayerID {
	ids := make([]PlayerID, 0, len(collisions))
	for _, c := range collisions {
		ids = append(ids, c.Victim)
	}
	return ids
}
