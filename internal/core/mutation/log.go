// Package mutation buffers the writes systems make during a frame and applies
// them to the component store in one pass once the frame's systems are done.
package mutation

import (
	"errors"
	"fmt"

	"github.com/l1jgo/simcore/internal/core/ecs"
)

// Op identifies the kind of a queued mutation.
type Op uint8

const (
	OpCreate  Op = iota + 1 // entity ID reserved this frame becomes live
	OpAttach                // attach or replace one component
	OpDetach                // remove one component kind
	OpDestroy               // destroy the entity and all of its components
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpAttach:
		return "attach"
	case OpDetach:
		return "detach"
	case OpDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Mutation is one queued write. Kind is set for attach and detach; Component
// only for attach.
type Mutation struct {
	Op        Op
	Entity    ecs.EntityID
	Kind      ecs.Kind
	Component ecs.Component
}

// Target is the store a log commits into. *ecs.Store satisfies it.
type Target interface {
	Alive(id ecs.EntityID) bool
	Activate(id ecs.EntityID) bool
	Release(id ecs.EntityID)
	Put(id ecs.EntityID, c ecs.Component)
	Remove(id ecs.EntityID, kind ecs.Kind)
	Destroy(id ecs.EntityID)
}

// Log is an append-only buffer of mutations for the current frame.
type Log struct {
	entries []Mutation
}

func NewLog() *Log {
	return &Log{entries: make([]Mutation, 0, 128)}
}

func (l *Log) Create(id ecs.EntityID) {
	l.entries = append(l.entries, Mutation{Op: OpCreate, Entity: id})
}

// ErrNilComponent is returned when a nil component is queued for attach.
var ErrNilComponent = errors.New("nil component")

// Attach queues c for id. A nil c is refused and nothing is queued.
func (l *Log) Attach(id ecs.EntityID, c ecs.Component) error {
	if c == nil {
		return fmt.Errorf("attach to entity %d: %w", id, ErrNilComponent)
	}
	l.entries = append(l.entries, Mutation{Op: OpAttach, Entity: id, Kind: c.Kind(), Component: c})
	return nil
}

func (l *Log) Detach(id ecs.EntityID, kind ecs.Kind) {
	l.entries = append(l.entries, Mutation{Op: OpDetach, Entity: id, Kind: kind})
}

func (l *Log) Destroy(id ecs.EntityID) {
	l.entries = append(l.entries, Mutation{Op: OpDestroy, Entity: id})
}

func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of the queued mutations in append order.
func (l *Log) Entries() []Mutation {
	out := make([]Mutation, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset discards all queued mutations.
func (l *Log) Reset() {
	clear(l.entries)
	l.entries = l.entries[:0]
}

// Result summarizes one commit.
type Result struct {
	Applied   int
	Dropped   int
	Created   []ecs.EntityID
	Destroyed []ecs.EntityID
}

// Commit applies the log to t in append order and resets it.
//
// Writes to the same (entity, kind) resolve to the last one appended. An
// entity with a queued destroy loses every other mutation queued for it this
// frame, before or after the destroy. Attaches to entities that are not live
// are dropped; an entity created this frame and destroyed in the same frame
// never becomes live.
func (l *Log) Commit(t Target) Result {
	var res Result

	doomed := make(map[ecs.EntityID]struct{})
	for i := range l.entries {
		if l.entries[i].Op == OpDestroy {
			doomed[l.entries[i].Entity] = struct{}{}
		}
	}

	for i := range l.entries {
		m := &l.entries[i]
		if _, ok := doomed[m.Entity]; ok {
			switch {
			case m.Op == OpCreate:
				t.Release(m.Entity)
				res.Dropped++
			case m.Op == OpDestroy && t.Alive(m.Entity):
				t.Destroy(m.Entity)
				res.Destroyed = append(res.Destroyed, m.Entity)
				res.Applied++
			default:
				res.Dropped++
			}
			continue
		}

		switch m.Op {
		case OpCreate:
			if t.Activate(m.Entity) {
				res.Created = append(res.Created, m.Entity)
				res.Applied++
			} else {
				res.Dropped++
			}
		case OpAttach:
			if !t.Alive(m.Entity) {
				res.Dropped++
				continue
			}
			t.Put(m.Entity, m.Component)
			res.Applied++
		case OpDetach:
			if !t.Alive(m.Entity) {
				res.Dropped++
				continue
			}
			t.Remove(m.Entity, m.Kind)
			res.Applied++
		default:
			res.Dropped++
		}
	}

	l.Reset()
	return res
}
