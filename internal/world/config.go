package world

import (
	"errors"
	"fmt"
)

// DefaultPalette lists the player colours handed out in join order.
var DefaultPalette = []string{
	"#ff0000",
	"#00aa00",
	"#0000ff",
	"#ffa500",
	"#8000ff",
	"#00cccc",
	"#ff00ff",
	"#ffff00",
}

// Config holds the fixed simulation constants shared with clients.
type Config struct {
	Width          float64
	Height         float64
	Speed          float64 // distance travelled per tick
	PlayerRadius   float64
	FoodRadius     float64
	GrowPerFood    int
	InitialLength  int
	SegmentSpacing float64
	FoodTarget     int
	SafeDistance   float64
	SpawnAttempts  int
	MaxPlayers     int
	Palette        []string
}

// DefaultConfig returns the stock arena configuration.
func DefaultConfig() Config {
	return Config{
		Width:          2000,
		Height:         2000,
		Speed:          4,
		PlayerRadius:   10,
		FoodRadius:     5,
		GrowPerFood:    5,
		InitialLength:  10,
		SegmentSpacing: 20,
		FoodTarget:     100,
		SafeDistance:   100,
		SpawnAttempts:  12,
		MaxPlayers:     8,
		Palette:        append([]string(nil), DefaultPalette...),
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("world: bounds must be positive, got %gx%g", c.Width, c.Height)
	case c.Speed < 0:
		return fmt.Errorf("world: speed must not be negative, got %g", c.Speed)
	case c.PlayerRadius <= 0 || c.FoodRadius < 0:
		return fmt.Errorf("world: invalid radii player=%g food=%g", c.PlayerRadius, c.FoodRadius)
	case c.GrowPerFood < 0:
		return fmt.Errorf("world: growth per food must not be negative, got %d", c.GrowPerFood)
	case c.InitialLength < 1:
		return fmt.Errorf("world: initial length must be at least 1, got %d", c.InitialLength)
	case c.SegmentSpacing < 0:
		return fmt.Errorf("world: segment spacing must not be negative, got %g", c.SegmentSpacing)
	case c.FoodTarget < 0:
		return fmt.Errorf("world: food target must not be negative, got %d", c.FoodTarget)
	case c.SpawnAttempts < 1:
		return fmt.Errorf("world: spawn attempts must be at least 1, got %d", c.SpawnAttempts)
	case c.MaxPlayers < 1:
		return fmt.Errorf("world: max players must be at least 1, got %d", c.MaxPlayers)
	case len(c.Palette) == 0:
		return errors.New("world: palette must not be empty")
	}
	return nil
}

// CollisionRadius is the head-to-segment contact distance between two players.
func (c Config) CollisionRadius() float64 {
	return c.PlayerRadius * 2
}

// EatRadius is the head-to-food contact distance.
func (c Config) EatRadius() float64 {
	return c.PlayerRadius + c.FoodRadius
}

// PlayerColor cycles the palette by player id.
func (c Config) PlayerColor(id PlayerID) string {
	if len(c.Palette) == 0 || id == 0 {
		return ""
	}
	return c.Palette[int((uint64(id)-1)%uint64(len(c.Palette)))]
}
