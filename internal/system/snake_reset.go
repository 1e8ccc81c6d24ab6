package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

var allSegments = ecs.Join{"body": component.KindSnakeBody}

// SnakeResetSystem drops the whole body when the head runs into its own
// tail. The head and the food stay.
type SnakeResetSystem struct {
	coresys.Base
}

func NewSnakeResetSystem() *SnakeResetSystem {
	return &SnakeResetSystem{Base: coresys.NewBase(TagSnakeReset, TagCollision)}
}

func (s *SnakeResetSystem) Execute(ctx *coresys.Context) error {
	hits := event.PollAs[component.SelfCollision](ctx.Events(), component.EventSelfCollision)
	if len(hits) == 0 {
		return nil
	}
	for _, r := range ctx.Query(ecs.With(allSegments)) {
		ctx.Destroy(r.ID)
	}
	return nil
}
