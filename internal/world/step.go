package world

// StepResult summarises one simulation step.
type StepResult struct {
	Tick         uint64
	Collisions   []Collision
	Eliminations []Elimination
	Consumptions []Consumption
	Snapshot     Snapshot
}

// Step runs movement, collision detection, eliminations, consumption and
// snapshotting, in that order.
func (w *World) Step() StepResult {
	w.tick++
	w.Advance()
	collisions := w.DetectCollisions()
	eliminations := w.ApplyEliminations(Victims(collisions))
	consumptions := w.ApplyConsumption()
	return StepResult{
		Tick:         w.tick,
		Collisions:   collisions,
		Eliminations: eliminations,
		Consumptions: consumptions,
		Snapshot:     w.Snapshot(),
	}
}
