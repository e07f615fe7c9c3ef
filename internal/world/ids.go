package world

// PlayerID identifies a connected player. IDs start at 1 and are never reused.
type PlayerID uint64

// FoodID identifies a consumable.
type FoodID uint64

// idAllocator hands out monotonically increasing identifiers.
type idAllocator struct {
	last uint64
}

func (a *idAllocator) next() uint64 {
	a.last++
	return a.last
}
