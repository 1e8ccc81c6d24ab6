package ecs

import "sort"

// Join maps a logical role name to the component kind required for it.
type Join map[string]Kind

// Kinds returns the distinct required kinds, sorted.
func (j Join) Kinds() []Kind {
	seen := make(map[Kind]struct{}, len(j))
	kinds := make([]Kind, 0, len(j))
	for _, k := range j {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kinds = append(kinds, k)
	}
	sortKinds(kinds)
	return kinds
}

// Query selects live entities carrying every kind in Join and none in Exclude.
type Query struct {
	Join    Join
	Exclude []Kind
}

// With is shorthand for a Query without exclusions.
func With(join Join) Query { return Query{Join: join} }

// Without returns a copy of q that also excludes kinds.
func (q Query) Without(kinds ...Kind) Query {
	ex := make([]Kind, 0, len(q.Exclude)+len(kinds))
	ex = append(ex, q.Exclude...)
	ex = append(ex, kinds...)
	return Query{Join: q.Join, Exclude: ex}
}

// Record is one query row: the entity and its component per role.
type Record struct {
	ID         EntityID
	Components map[string]Component
}

func (r Record) Get(role string) Component { return r.Components[role] }

// RoleAs returns the component bound to role as T.
func RoleAs[T Component](r Record, role string) (T, bool) {
	t, ok := r.Components[role].(T)
	return t, ok
}

// GetAll fetches every kind in join for one entity, or fails naming each
// missing kind.
func (s *Store) GetAll(id EntityID, join Join) (Record, error) {
	if !s.pool.Alive(id) {
		return Record{}, &NotFoundError{Entity: id}
	}
	rec := Record{ID: id, Components: make(map[string]Component, len(join))}
	var missing []Kind
	for role, kind := range join {
		c, ok := s.Lookup(id, kind)
		if !ok {
			missing = appendUnique(missing, kind)
			continue
		}
		rec.Components[role] = c
	}
	if len(missing) > 0 {
		sortKinds(missing)
		return Record{}, &NotFoundError{Entity: id, Kinds: missing}
	}
	return rec, nil
}

// Query scans live entities in ascending ID order.
func (s *Store) Query(q Query) []Record {
	type binding struct {
		role  string
		store *KindStore
	}
	bindings := make([]binding, 0, len(q.Join))
	for role, kind := range q.Join {
		ks, ok := s.registry.Lookup(kind)
		if !ok {
			return nil
		}
		bindings = append(bindings, binding{role: role, store: ks})
	}
	excluded := make([]*KindStore, 0, len(q.Exclude))
	for _, kind := range q.Exclude {
		if ks, ok := s.registry.Lookup(kind); ok {
			excluded = append(excluded, ks)
		}
	}

	var out []Record
	s.pool.Each(func(id EntityID) bool {
		for _, ex := range excluded {
			if ex.Has(id) {
				return true
			}
		}
		rec := Record{ID: id, Components: make(map[string]Component, len(bindings))}
		for _, b := range bindings {
			c, ok := b.store.Get(id)
			if !ok {
				return true
			}
			rec.Components[b.role] = c
		}
		out = append(out, rec)
		return true
	})
	return out
}

// QueryRequired is Query that fails when nothing matches.
func (s *Store) QueryRequired(q Query) ([]Record, error) {
	recs := s.Query(q)
	if len(recs) == 0 {
		return nil, &MissingRequiredEntityError{Kinds: q.Join.Kinds()}
	}
	return recs, nil
}

// QueryRequiredOne returns the lowest-ID match.
func (s *Store) QueryRequiredOne(q Query) (Record, error) {
	recs, err := s.QueryRequired(q)
	if err != nil {
		return Record{}, err
	}
	return recs[0], nil
}

func appendUnique(kinds []Kind, k Kind) []Kind {
	for _, existing := range kinds {
		if existing == k {
			return kinds
		}
	}
	return append(kinds, k)
}

func sortKinds(kinds []Kind) {
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
}
