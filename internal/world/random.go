package world

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

func (w *World) randomFloat() float64 {
	if w != nil && w.rng != nil {
		return w.rng.Float64()
	}
	return rand.Float64()
}

func (w *World) randomIntn(n int) int {
	if w != nil && w.rng != nil {
		return w.rng.Intn(n)
	}
	return rand.Intn(n)
}

func (w *World) randomAngle() float64 {
	return w.randomFloat() * 2 * math.Pi
}

func (w *World) randomPoint() Vec2 {
	return Vec2{X: w.randomFloat() * w.cfg.Width, Y: w.randomFloat() * w.cfg.Height}
}

// randomFoodColor picks a saturated colour from the full hue circle.
func (w *World) randomFoodColor() string {
	return fmt.Sprintf("hsl(%d, 100%%, 50%%)", w.randomIntn(360))
}

func defaultName(id PlayerID) string {
	return "Player " + strconv.FormatUint(uint64(id), 10)
}
