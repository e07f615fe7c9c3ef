package world

// Advance moves every living snake one step along its heading. A head that
// cannot move because it is pressed against the boundary leaves the body and
// pending growth untouched.
func (w *World) Advance() {
	for _, p := range w.alivePlayers() {
		w.advancePlayer(p)
	}
}

func (w *World) advancePlayer(p *Player) {
	if p.Body.Len() == 0 {
		return
	}
	head := p.Body.Head()
	next := head.Add(p.Heading.Scale(w.cfg.Speed))
	next.X = clamp(next.X, 0, w.cfg.Width)
	next.Y = clamp(next.Y, 0, w.cfg.Height)
	if next == head {
		return
	}

	p.Body.PushFront(next)
	if p.PendingGrowth > 0 {
		p.PendingGrowth--
		return
	}
	p.Body.PopBack()
}
