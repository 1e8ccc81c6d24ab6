package ecs

// Kind is the stable tag that identifies a component type.
type Kind string

// Component is any value carrying a kind tag. Components should be value
// types: the store hands out copies, and a system that wants a change must
// queue it through its frame context.
type Component interface {
	Kind() Kind
}

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// KindStore holds every component of one kind, keyed by entity.
type KindStore struct {
	kind Kind
	data map[EntityID]Component
}

func NewKindStore(kind Kind) *KindStore {
	return &KindStore{
		kind: kind,
		data: make(map[EntityID]Component, 256),
	}
}

func (s *KindStore) Kind() Kind { return s.kind }

func (s *KindStore) Set(id EntityID, c Component) {
	s.data[id] = c
}

func (s *KindStore) Get(id EntityID) (Component, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *KindStore) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *KindStore) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *KindStore) Len() int {
	return len(s.data)
}
