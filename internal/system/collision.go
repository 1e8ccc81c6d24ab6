package system

import (
	"math"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

var collidable = ecs.Join{
	"position":   component.KindPosition,
	"collidable": component.KindCollidable,
	"size":       component.KindSize,
}

// CollisionSystem tests every collidable pair as circles. A snake touching
// food emits FoodEaten; a snake touching a tail segment that is not its
// direct child emits SelfCollision.
type CollisionSystem struct {
	coresys.Base
}

func NewCollisionSystem() *CollisionSystem {
	return &CollisionSystem{Base: coresys.NewBase(TagCollision)}
}

func (s *CollisionSystem) Execute(ctx *coresys.Context) error {
	rows := ctx.Query(ecs.With(collidable))
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if !overlaps(rows[i], rows[j]) {
				continue
			}
			if err := s.handle(ctx, rows[i], rows[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CollisionSystem) handle(ctx *coresys.Context, a, b ecs.Record) error {
	ra := role(a)
	rb := role(b)
	switch {
	case ra == component.RoleSnake && rb == component.RoleFood:
		return s.eat(ctx, b)
	case ra == component.RoleFood && rb == component.RoleSnake:
		return s.eat(ctx, a)
	case ra == component.RoleSnake && rb == component.RoleTail:
		return s.bite(ctx, a.ID, b.ID)
	case ra == component.RoleTail && rb == component.RoleSnake:
		return s.bite(ctx, b.ID, a.ID)
	}
	return nil
}

func (s *CollisionSystem) eat(ctx *coresys.Context, food ecs.Record) error {
	points := 0
	if c, ok := ctx.Lookup(food.ID, component.KindFood); ok {
		points = c.(component.Food).Points
	}
	ctx.Emit(component.EventFoodEaten, component.FoodEaten{Food: food.ID, Points: points})
	return nil
}

func (s *CollisionSystem) bite(ctx *coresys.Context, head, segment ecs.EntityID) error {
	c, err := ctx.Get(segment, component.KindSnakeBody)
	if err != nil {
		return err
	}
	if c.(component.SnakeBody).Parent == head {
		return nil
	}
	ctx.Emit(component.EventSelfCollision, component.SelfCollision{Head: head, Segment: segment})
	return nil
}

func role(r ecs.Record) string {
	c, _ := ecs.RoleAs[component.Collidable](r, "collidable")
	return c.Role
}

func overlaps(a, b ecs.Record) bool {
	pa, _ := ecs.RoleAs[component.Position](a, "position")
	pb, _ := ecs.RoleAs[component.Position](b, "position")
	sa, _ := ecs.RoleAs[component.Size](a, "size")
	sb, _ := ecs.RoleAs[component.Size](b, "size")
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y) < sa.Radius+sb.Radius
}
