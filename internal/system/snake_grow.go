package system

import (
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

const TailColor = "#ffa500"

var (
	requiredHead = ecs.Join{
		"head":     component.KindSnakeHead,
		"velocity": component.KindVelocity,
		"position": component.KindPosition,
		"size":     component.KindSize,
	}
	bodySegments = ecs.Join{
		"body":     component.KindSnakeBody,
		"position": component.KindPosition,
	}
)

// SnakeGrowSystem appends one tail segment per eaten food item. The new
// segment is placed one head diameter behind the current tail, against the
// head's heading.
type SnakeGrowSystem struct {
	coresys.Base
}

func NewSnakeGrowSystem() *SnakeGrowSystem {
	return &SnakeGrowSystem{Base: coresys.NewBase(TagSnakeGrow, TagCollision)}
}

type segment struct {
	id     ecs.EntityID
	parent ecs.EntityID
	pos    component.Position
}

func (s *SnakeGrowSystem) Execute(ctx *coresys.Context) error {
	eaten := event.PollAs[component.FoodEaten](ctx.Events(), component.EventFoodEaten)
	if len(eaten) == 0 {
		return nil
	}
	head, err := ctx.QueryRequiredOne(ecs.With(requiredHead))
	if err != nil {
		return err
	}
	hpos, _ := ecs.RoleAs[component.Position](head, "position")
	vel, _ := ecs.RoleAs[component.Velocity](head, "velocity")
	size, _ := ecs.RoleAs[component.Size](head, "size")

	// Segments created earlier in this frame are not visible to queries, so
	// the tail is tracked locally once the first one is appended.
	var tail *segment
	for _, r := range ctx.Query(ecs.With(bodySegments)) {
		body, _ := ecs.RoleAs[component.SnakeBody](r, "body")
		if body.IsTail {
			pos, _ := ecs.RoleAs[component.Position](r, "position")
			tail = &segment{id: r.ID, parent: body.Parent, pos: pos}
			break
		}
	}

	for range eaten {
		parent := head.ID
		anchor := hpos
		if tail != nil {
			ctx.Attach(tail.id, component.SnakeBody{Parent: tail.parent, IsTail: false})
			parent = tail.id
			anchor = tail.pos
		}
		pos := component.Position{
			X: anchor.X - vel.DX*size.Radius*2,
			Y: anchor.Y - vel.DY*size.Radius*2,
		}
		id := ctx.CreateEntity()
		ctx.Attach(id,
			component.SnakeBody{Parent: parent, IsTail: true},
			pos,
			component.Size{Radius: size.Radius},
			component.FollowTarget{},
			component.Collidable{Role: component.RoleTail},
			component.Renderable{Color: TailColor},
		)
		tail = &segment{id: id, parent: parent, pos: pos}
	}
	return nil
}
