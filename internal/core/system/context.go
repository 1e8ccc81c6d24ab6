package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	"github.com/l1jgo/simcore/internal/core/mutation"
)

// Context is what a system sees during one frame. Reads go to the store as
// committed at frame start; writes are queued in the mutation log and only
// become visible after the frame commits. Events are immediate.
type Context struct {
	DeltaTime float64
	Frame     uint64

	store  *ecs.Store
	log    *mutation.Log
	events *event.Channel
	logger *zap.Logger

	err error // first refused write
}

func NewContext(store *ecs.Store, log *mutation.Log, events *event.Channel, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{store: store, log: log, events: events, logger: logger}
}

func (c *Context) Logger() *zap.Logger { return c.logger }

// Events exposes the channel for helpers such as event.PollAs.
func (c *Context) Events() *event.Channel { return c.events }

// Err returns the first write the context refused this frame. The scheduler
// fails the frame on it after the system returns.
func (c *Context) Err() error { return c.err }

// ── reads ───────────────────────────────────────────────────────────

func (c *Context) Query(q ecs.Query) []ecs.Record {
	return c.store.Query(q)
}

func (c *Context) QueryRequired(q ecs.Query) ([]ecs.Record, error) {
	return c.store.QueryRequired(q)
}

func (c *Context) QueryRequiredOne(q ecs.Query) (ecs.Record, error) {
	return c.store.QueryRequiredOne(q)
}

func (c *Context) Get(id ecs.EntityID, kind ecs.Kind) (ecs.Component, error) {
	return c.store.Get(id, kind)
}

func (c *Context) Lookup(id ecs.EntityID, kind ecs.Kind) (ecs.Component, bool) {
	return c.store.Lookup(id, kind)
}

func (c *Context) GetAll(id ecs.EntityID, join ecs.Join) (ecs.Record, error) {
	return c.store.GetAll(id, join)
}

func (c *Context) Has(id ecs.EntityID, kind ecs.Kind) bool {
	return c.store.Has(id, kind)
}

func (c *Context) Alive(id ecs.EntityID) bool {
	return c.store.Alive(id)
}

// ── writes (deferred) ───────────────────────────────────────────────

// CreateEntity reserves an ID now; the entity becomes live at commit.
func (c *Context) CreateEntity() ecs.EntityID {
	id := c.store.ReserveEntity()
	c.log.Create(id)
	return id
}

func (c *Context) Attach(id ecs.EntityID, comps ...ecs.Component) {
	for _, comp := range comps {
		if err := c.log.Attach(id, comp); err != nil && c.err == nil {
			c.err = err
		}
	}
}

func (c *Context) Detach(id ecs.EntityID, kind ecs.Kind) {
	c.log.Detach(id, kind)
}

func (c *Context) Destroy(id ecs.EntityID) {
	c.log.Destroy(id)
}

// ── events ──────────────────────────────────────────────────────────

func (c *Context) Emit(tag string, payload any) {
	c.events.Emit(tag, payload)
}

func (c *Context) Poll(tag string) []any {
	return c.events.Poll(tag)
}
