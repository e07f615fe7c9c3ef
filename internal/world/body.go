package world

// Body is a ring-backed double-ended sequence of segment positions. Index 0
// is the head, Len()-1 the tail. PushFront and PopBack are O(1) amortised.
type Body struct {
	data  []Vec2
	head  int
	count int
}

// Len reports the number of segments.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	return b.count
}

// At returns the i-th segment counted from the head.
func (b *Body) At(i int) Vec2 {
	if i < 0 || i >= b.count {
		panic("world: body index out of range")
	}
	return b.data[(b.head+i)%len(b.data)]
}

// Head returns the first segment. The body must not be empty.
func (b *Body) Head() Vec2 {
	return b.At(0)
}

// PushFront inserts p as the new head.
func (b *Body) PushFront(p Vec2) {
	if b.count == len(b.data) {
		b.grow()
	}
	b.head = (b.head - 1 + len(b.data)) % len(b.data)
	b.data[b.head] = p
	b.count++
}

// PushBack appends p behind the current tail.
func (b *Body) PushBack(p Vec2) {
	if b.count == len(b.data) {
		b.grow()
	}
	b.data[(b.head+b.count)%len(b.data)] = p
	b.count++
}

// PopBack removes and returns the tail, reporting false when empty.
func (b *Body) PopBack() (Vec2, bool) {
	if b.count == 0 {
		return Vec2{}, false
	}
	idx := (b.head + b.count - 1) % len(b.data)
	p := b.data[idx]
	b.data[idx] = Vec2{}
	b.count--
	return p, true
}

// Reset drops every segment but keeps the backing storage.
func (b *Body) Reset() {
	for i := range b.data {
		b.data[i] = Vec2{}
	}
	b.head = 0
	b.count = 0
}

// Points copies the segments head-first.
func (b *Body) Points() []Vec2 {
	out := make([]Vec2, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.data[(b.head+i)%len(b.data)]
	}
	return out
}

func (b *Body) grow() {
	capacity := len(b.data) * 2
	if capacity < 16 {
		capacity = 16
	}
	data := make([]Vec2, capacity)
	for i := 0; i < b.count; i++ {
		data[i] = b.data[(b.head+i)%len(b.data)]
	}
	b.data = data
	b.head = 0
}
