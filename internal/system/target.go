package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

const DefaultFollowDelay = 10

var following = ecs.Join{
	"position": component.KindPosition,
	"target":   component.KindFollowTarget,
}

// TargetSystem copies each entity's position into its follow target once
// every delay+1 frames, so trailing segments chase where their parent was.
type TargetSystem struct {
	coresys.Base
	delay  int
	cycles int
}

func NewTargetSystem(delay int) *TargetSystem {
	if delay <= 0 {
		delay = DefaultFollowDelay
	}
	return &TargetSystem{Base: coresys.NewBase(TagTarget), delay: delay}
}

func (s *TargetSystem) Execute(ctx *coresys.Context) error {
	if s.cycles <= s.delay {
		s.cycles++
		return nil
	}
	s.cycles = 0
	for _, r := range ctx.Query(ecs.With(following)) {
		pos, _ := ecs.RoleAs[component.Position](r, "position")
		ctx.Attach(r.ID, component.FollowTarget{X: pos.X, Y: pos.Y})
	}
	return nil
}
