package world

import (
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/system"
)

// Init is handed to the setup callback. Its writes go straight to the store
// because no frame is in flight yet.
type Init struct {
	w *World
}

func (i *Init) CreateEntity() ecs.EntityID {
	return i.w.store.CreateEntity()
}

// Attach attaches components to a live entity, replacing same-kind ones.
func (i *Init) Attach(id ecs.EntityID, comps ...ecs.Component) error {
	return i.w.store.AttachNow(id, comps...)
}

// Spawn creates an entity with the given components.
func (i *Init) Spawn(comps ...ecs.Component) (ecs.EntityID, error) {
	id := i.w.store.CreateEntity()
	if err := i.w.store.AttachNow(id, comps...); err != nil {
		return 0, err
	}
	return id, nil
}

func (i *Init) Destroy(id ecs.EntityID) error {
	return i.w.store.DestroyNow(id)
}

func (i *Init) RegisterSystem(systems ...system.System) error {
	for _, s := range systems {
		if err := i.w.sched.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Store gives read access during setup.
func (i *Init) Store() *ecs.Store { return i.w.store }

func (i *Init) Logger() *zap.Logger { return i.w.logger }
