package world

// Player is a snake and the connection-scoped metadata the simulation needs.
type Player struct {
	ID            PlayerID
	Name          string
	Color         string
	Body          Body
	Heading       Vec2
	PendingGrowth int
	Score         int
	Alive         bool
}

// Length is the current number of body segments.
func (p *Player) Length() int {
	return p.Body.Len()
}

// Food is a static consumable.
type Food struct {
	ID    FoodID
	Pos   Vec2
	Color string
}
