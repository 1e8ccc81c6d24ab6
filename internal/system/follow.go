package system

import (
	"math"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

const DefaultFollowSpeed = 100.0

// FollowSystem moves each body segment toward its parent's follow target
// at a fixed speed in units per second. Segments whose parent no longer
// exists are destroyed.
type FollowSystem struct {
	coresys.Base
	speed float64
}

func NewFollowSystem(speed float64) *FollowSystem {
	if speed <= 0 {
		speed = DefaultFollowSpeed
	}
	return &FollowSystem{Base: coresys.NewBase(TagFollow, TagTarget), speed: speed}
}

func (s *FollowSystem) Execute(ctx *coresys.Context) error {
	for _, r := range ctx.Query(ecs.With(bodySegments)) {
		body, _ := ecs.RoleAs[component.SnakeBody](r, "body")
		pos, _ := ecs.RoleAs[component.Position](r, "position")
		c, ok := ctx.Lookup(body.Parent, component.KindFollowTarget)
		if !ok {
			// parent went away (reset while growing): drop the orphan
			ctx.Destroy(r.ID)
			continue
		}
		target := c.(component.FollowTarget)
		ctx.Attach(r.ID, approach(pos, target, s.speed*ctx.DeltaTime))
	}
	return nil
}

// approach moves cur toward target by at most step.
func approach(cur component.Position, target component.FollowTarget, step float64) component.Position {
	dx := target.X - cur.X
	dy := target.Y - cur.Y
	dist := math.Hypot(dx, dy)
	if dist < 0.001 {
		return component.Position{X: target.X, Y: target.Y}
	}
	t := math.Min(step/dist, 1)
	return component.Position{X: cur.X + t*dx, Y: cur.Y + t*dy}
}
