package ecs

import "sort"

// EntityID is an opaque handle. IDs are issued in increasing order starting
// at 1 and are never reused, even after the entity is destroyed.
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

// EntityPool issues entity IDs and tracks which of them are live.
type EntityPool struct {
	next     EntityID
	alive    map[EntityID]struct{}
	reserved map[EntityID]struct{}
	order    []EntityID // ascending; may hold dead IDs until compacted
	stale    bool
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		next:     1,
		alive:    make(map[EntityID]struct{}, 256),
		reserved: make(map[EntityID]struct{}, 16),
		order:    make([]EntityID, 0, 256),
	}
}

// Reserve allocates a fresh ID without making it live.
func (p *EntityPool) Reserve() EntityID {
	id := p.next
	p.next++
	p.reserved[id] = struct{}{}
	return id
}

// Create allocates a fresh ID and makes it live immediately.
func (p *EntityPool) Create() EntityID {
	id := p.Reserve()
	p.Activate(id)
	return id
}

// Activate makes a reserved ID live. It reports false for IDs that were never
// reserved, were already activated, or were released.
func (p *EntityPool) Activate(id EntityID) bool {
	if _, ok := p.reserved[id]; !ok {
		return false
	}
	delete(p.reserved, id)
	p.alive[id] = struct{}{}
	p.insertOrdered(id)
	return true
}

// Release gives up a reservation. The ID stays burned.
func (p *EntityPool) Release(id EntityID) {
	delete(p.reserved, id)
}

// Pending reports whether id is reserved but not yet live.
func (p *EntityPool) Pending(id EntityID) bool {
	_, ok := p.reserved[id]
	return ok
}

func (p *EntityPool) insertOrdered(id EntityID) {
	n := len(p.order)
	if n == 0 || p.order[n-1] < id {
		p.order = append(p.order, id)
		return
	}
	i := sort.Search(n, func(i int) bool { return p.order[i] >= id })
	p.order = append(p.order, 0)
	copy(p.order[i+1:], p.order[i:])
	p.order[i] = id
}

func (p *EntityPool) Alive(id EntityID) bool {
	_, ok := p.alive[id]
	return ok
}

func (p *EntityPool) Destroy(id EntityID) {
	if _, ok := p.alive[id]; !ok {
		return
	}
	delete(p.alive, id)
	p.stale = true
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return len(p.alive) }

// Issued returns the number of IDs handed out so far, live or not.
func (p *EntityPool) Issued() uint64 { return uint64(p.next - 1) }

// Each visits live entities in ascending ID order.
func (p *EntityPool) Each(fn func(EntityID) bool) {
	p.compact()
	for _, id := range p.order {
		if !fn(id) {
			return
		}
	}
}

func (p *EntityPool) compact() {
	if !p.stale {
		return
	}
	kept := p.order[:0]
	for _, id := range p.order {
		if _, ok := p.alive[id]; ok {
			kept = append(kept, id)
		}
	}
	p.order = kept
	p.stale = false
}
