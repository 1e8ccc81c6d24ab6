package ecs

// Registry tracks one KindStore per component kind and supports bulk cleanup
// on entity destroy.
type Registry struct {
	byKind map[Kind]*KindStore
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[Kind]*KindStore, 16),
		stores: make([]Removable, 0, 16),
	}
}

// Register adds a store to the bulk-removal list. KindStores created through
// StoreFor are registered automatically.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// StoreFor returns the store for kind, creating it on first use.
func (r *Registry) StoreFor(kind Kind) *KindStore {
	if s, ok := r.byKind[kind]; ok {
		return s
	}
	s := NewKindStore(kind)
	r.byKind[kind] = s
	r.Register(s)
	return s
}

// Lookup returns the store for kind without creating it.
func (r *Registry) Lookup(kind Kind) (*KindStore, bool) {
	s, ok := r.byKind[kind]
	return s, ok
}

// RemoveAll clears the given entity from every registered store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
