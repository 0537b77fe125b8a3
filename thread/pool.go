package thread

// Pool tracks which answers of a thread are still waiting to be placed and
// which have already been emitted. Pool values are treated as immutable by
// every exported function: the engine clones before it takes from a pool.
type Pool struct {
	order     []uint
	remaining map[uint]struct{}
	placed    map[uint]struct{}
}

// NewPool returns a pool holding ids in the given order. Duplicates collapse.
func NewPool(ids ...uint) Pool {
	p := Pool{
		order:     make([]uint, 0, len(ids)),
		remaining: make(map[uint]struct{}, len(ids)),
		placed:    make(map[uint]struct{}),
	}
	for _, id := range ids {
		if _, ok := p.remaining[id]; ok {
			continue
		}
		p.remaining[id] = struct{}{}
		p.order = append(p.order, id)
	}
	return p
}

// Clone returns an independent copy of p.
func (p Pool) Clone() Pool {
	c := Pool{
		order:     make([]uint, len(p.order)),
		remaining: make(map[uint]struct{}, len(p.remaining)),
		placed:    make(map[uint]struct{}, len(p.placed)),
	}
	copy(c.order, p.order)
	for id := range p.remaining {
		c.remaining[id] = struct{}{}
	}
	for id := range p.placed {
		c.placed[id] = struct{}{}
	}
	return c
}

// waiting reports whether id is still waiting to be placed.
func (p Pool) waiting(id uint) bool {
	_, ok := p.remaining[id]
	return ok
}

// Placed reports whether id has already been emitted.
func (p Pool) Placed(id uint) bool {
	_, ok := p.placed[id]
	return ok
}

// Remaining returns the ids not yet placed, in their original order.
func (p Pool) Remaining() []uint {
	out := make([]uint, 0, len(p.remaining))
	for _, id := range p.order {
		if _, ok := p.remaining[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// take marks id as placed. It returns false when id was placed before.
// Removing an id that was never in the pool is not an error.
func (p *Pool) take(id uint) bool {
	if p.placed == nil {
		p.placed = make(map[uint]struct{})
	}
	if _, done := p.placed[id]; done {
		return false
	}
	delete(p.remaining, id)
	p.placed[id] = struct{}{}
	return true
}
