package ecs

// Store is the component store: the live entity set plus one KindStore per
// component kind. Outside of world setup it is only written by the frame
// commit (see package mutation); systems read it and queue their writes.
type Store struct {
	pool     *EntityPool
	registry *Registry
}

func NewStore() *Store {
	return &Store{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (s *Store) Pool() *EntityPool   { return s.pool }
func (s *Store) Registry() *Registry { return s.registry }

// CreateEntity allocates an ID and makes it live immediately.
func (s *Store) CreateEntity() EntityID {
	return s.pool.Create()
}

// ReserveEntity allocates an ID that becomes live only once Activate is called.
func (s *Store) ReserveEntity() EntityID {
	return s.pool.Reserve()
}

func (s *Store) Activate(id EntityID) bool {
	return s.pool.Activate(id)
}

func (s *Store) Release(id EntityID) {
	s.pool.Release(id)
}

func (s *Store) Alive(id EntityID) bool {
	return s.pool.Alive(id)
}

func (s *Store) Len() int {
	return s.pool.Len()
}

// Entities returns the live IDs in ascending order.
func (s *Store) Entities() []EntityID {
	ids := make([]EntityID, 0, s.pool.Len())
	s.pool.Each(func(id EntityID) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// AttachNow attaches components synchronously, replacing any component of the
// same kind. Only for world setup, before the first frame.
func (s *Store) AttachNow(id EntityID, comps ...Component) error {
	if !s.pool.Alive(id) {
		return &NotFoundError{Entity: id}
	}
	for _, c := range comps {
		s.Put(id, c)
	}
	return nil
}

// DestroyNow destroys an entity synchronously. Only for world setup.
func (s *Store) DestroyNow(id EntityID) error {
	if !s.pool.Alive(id) {
		return &NotFoundError{Entity: id}
	}
	s.Destroy(id)
	return nil
}

// Put stores c on a live entity without checks beyond liveness.
// Commit path only.
func (s *Store) Put(id EntityID, c Component) {
	if !s.pool.Alive(id) {
		return
	}
	s.registry.StoreFor(c.Kind()).Set(id, c)
}

// Remove drops one kind from an entity. Commit path only.
func (s *Store) Remove(id EntityID, kind Kind) {
	if ks, ok := s.registry.Lookup(kind); ok {
		ks.Remove(id)
	}
}

// Destroy discards the entity and all of its components. Commit path only.
func (s *Store) Destroy(id EntityID) {
	s.registry.RemoveAll(id)
	s.pool.Destroy(id)
}

func (s *Store) Has(id EntityID, kind Kind) bool {
	if !s.pool.Alive(id) {
		return false
	}
	ks, ok := s.registry.Lookup(kind)
	return ok && ks.Has(id)
}

// Lookup is the optional form of Get.
func (s *Store) Lookup(id EntityID, kind Kind) (Component, bool) {
	if !s.pool.Alive(id) {
		return nil, false
	}
	ks, ok := s.registry.Lookup(kind)
	if !ok {
		return nil, false
	}
	return ks.Get(id)
}

func (s *Store) Get(id EntityID, kind Kind) (Component, error) {
	if !s.pool.Alive(id) {
		return nil, &NotFoundError{Entity: id}
	}
	c, ok := s.Lookup(id, kind)
	if !ok {
		return nil, &NotFoundError{Entity: id, Kinds: []Kind{kind}}
	}
	return c, nil
}

// Kinds returns the kinds attached to a live entity, sorted.
func (s *Store) Kinds(id EntityID) []Kind {
	if !s.pool.Alive(id) {
		return nil
	}
	var kinds []Kind
	for kind, ks := range s.registry.byKind {
		if ks.Has(id) {
			kinds = append(kinds, kind)
		}
	}
	sortKinds(kinds)
	return kinds
}

// GetAs fetches a component and asserts its concrete type.
func GetAs[T Component](s *Store, id EntityID, kind Kind) (T, error) {
	var zero T
	c, err := s.Get(id, kind)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, &NotFoundError{Entity: id, Kinds: []Kind{kind}}
	}
	return t, nil
}
