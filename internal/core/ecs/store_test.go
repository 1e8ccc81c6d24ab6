package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }

func (position) Kind() Kind { return "Position" }

type velocity struct{ DX, DY float64 }

func (velocity) Kind() Kind { return "Velocity" }

type frozen struct{}

func (frozen) Kind() Kind { return "Frozen" }

func TestEntityPool_MonotonicAndNeverReused(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	b := p.Create()
	require.Equal(t, EntityID(1), a)
	require.Equal(t, EntityID(2), b)

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	c := p.Create()
	assert.Equal(t, EntityID(3), c, "destroyed IDs must not be reissued")
	assert.Equal(t, uint64(3), p.Issued())
}

func TestEntityPool_ReserveActivateRelease(t *testing.T) {
	p := NewEntityPool()
	r := p.Reserve()
	assert.False(t, p.Alive(r))
	assert.True(t, p.Pending(r))

	require.True(t, p.Activate(r))
	assert.True(t, p.Alive(r))
	assert.False(t, p.Activate(r), "second activation is a no-op")

	gone := p.Reserve()
	p.Release(gone)
	assert.False(t, p.Activate(gone))
	assert.False(t, p.Alive(gone))

	p.Destroy(r)
	assert.False(t, p.Activate(r), "destroyed IDs cannot come back")
}

func TestEntityPool_EachAscendingAfterOutOfOrderActivation(t *testing.T) {
	p := NewEntityPool()
	a := p.Reserve()
	b := p.Reserve()
	c := p.Create()
	p.Activate(b)
	p.Activate(a)
	p.Destroy(b)

	var got []EntityID
	p.Each(func(id EntityID) bool {
		got = append(got, id)
		return true
	})
	assert.Equal(t, []EntityID{a, c}, got)
}

func TestStore_AttachReplacesSameKind(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity()
	require.NoError(t, s.AttachNow(e, position{X: 1}, position{X: 2}))

	c, err := s.Get(e, "Position")
	require.NoError(t, err)
	assert.Equal(t, position{X: 2}, c)
	assert.Equal(t, []Kind{"Position"}, s.Kinds(e))
}

func TestStore_GetNotFound(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity()

	_, err := s.Get(e, "Position")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, e, nf.Entity)
	assert.Equal(t, []Kind{"Position"}, nf.Kinds)

	_, err = s.Get(99, "Position")
	require.ErrorAs(t, err, &nf)
	assert.Empty(t, nf.Kinds)
	assert.Contains(t, err.Error(), "entity 99 not found")
}

func TestStore_GetAllIsAllOrNothing(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity()
	require.NoError(t, s.AttachNow(e, position{X: 3}))

	_, err := s.GetAll(e, Join{"pos": "Position", "vel": "Velocity", "f": "Frozen"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []Kind{"Frozen", "Velocity"}, nf.Kinds)

	require.NoError(t, s.AttachNow(e, velocity{DX: 1}, frozen{}))
	rec, err := s.GetAll(e, Join{"pos": "Position", "vel": "Velocity"})
	require.NoError(t, err)
	assert.Equal(t, e, rec.ID)
	assert.Equal(t, position{X: 3}, rec.Get("pos"))
	vel, ok := RoleAs[velocity](rec, "vel")
	require.True(t, ok)
	assert.Equal(t, 1.0, vel.DX)
}

func TestStore_DestroyDiscardsComponents(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity()
	require.NoError(t, s.AttachNow(e, position{}, velocity{}))
	require.NoError(t, s.DestroyNow(e))

	assert.False(t, s.Alive(e))
	assert.False(t, s.Has(e, "Position"))
	assert.Nil(t, s.Kinds(e))
	ks, ok := s.Registry().Lookup("Velocity")
	require.True(t, ok)
	assert.Equal(t, 0, ks.Len())

	assert.ErrorIs(t, s.DestroyNow(e), ErrNotFound)
	assert.ErrorIs(t, s.AttachNow(e, position{}), ErrNotFound)
}

func TestGetAs(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity()
	require.NoError(t, s.AttachNow(e, position{X: 7, Y: 8}))

	p, err := GetAs[position](s, e, "Position")
	require.NoError(t, err)
	assert.Equal(t, 7.0, p.X)

	_, err = GetAs[velocity](s, e, "Position")
	assert.ErrorIs(t, err, ErrNotFound)
}
