package system

import (
	"math"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

var moving = ecs.Join{
	"position": component.KindPosition,
	"velocity": component.KindVelocity,
}

// MovementSystem integrates velocity into position. With a positive width
// and height the result wraps around the field edges.
type MovementSystem struct {
	coresys.Base
	width, height float64
}

func NewMovementSystem(width, height float64) *MovementSystem {
	return &MovementSystem{Base: coresys.NewBase(TagMovement), width: width, height: height}
}

func (s *MovementSystem) Execute(ctx *coresys.Context) error {
	for _, r := range ctx.Query(ecs.With(moving)) {
		pos, _ := ecs.RoleAs[component.Position](r, "position")
		vel, _ := ecs.RoleAs[component.Velocity](r, "velocity")
		pos.X = wrap(pos.X+vel.DX*vel.Speed*ctx.DeltaTime, s.width)
		pos.Y = wrap(pos.Y+vel.DY*vel.Speed*ctx.DeltaTime, s.height)
		ctx.Attach(r.ID, pos)
	}
	return nil
}

func wrap(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	v = math.Mod(v, limit)
	if v < 0 {
		v += limit
	}
	return v
}
