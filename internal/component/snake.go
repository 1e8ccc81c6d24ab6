package component

import "github.com/l1jgo/simcore/internal/core/ecs"

// Kind tags for the snake simulation.
const (
	KindPosition     ecs.Kind = "Position"
	KindVelocity     ecs.Kind = "Velocity"
	KindSize         ecs.Kind = "Size"
	KindCollidable   ecs.Kind = "Collidable"
	KindRenderable   ecs.Kind = "Renderable"
	KindSnakeHead    ecs.Kind = "SnakeHead"
	KindSnakeBody    ecs.Kind = "SnakeBody"
	KindFollowTarget ecs.Kind = "FollowTarget"
	KindFood         ecs.Kind = "Food"
)

// Collidable roles.
const (
	RoleSnake = "snake"
	RoleTail  = "tail"
	RoleFood  = "food"
)

// Pure data, zero behavior beyond the kind tag. The yaml tags are the field
// names used by scene files and scripted systems.

type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Velocity struct {
	DX    float64 `yaml:"dx"`
	DY    float64 `yaml:"dy"`
	Speed float64 `yaml:"speed"`
}

type Size struct {
	Radius float64 `yaml:"radius"`
}

type Collidable struct {
	Role string `yaml:"role"`
}

type Renderable struct {
	Color string `yaml:"color"`
}

type SnakeHead struct{}

type SnakeBody struct {
	Parent ecs.EntityID `yaml:"parent"`
	IsTail bool         `yaml:"is_tail"`
}

type FollowTarget struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Food struct {
	Points int `yaml:"points"`
}

func (Position) Kind() ecs.Kind     { return KindPosition }
func (Velocity) Kind() ecs.Kind     { return KindVelocity }
func (Size) Kind() ecs.Kind         { return KindSize }
func (Collidable) Kind() ecs.Kind   { return KindCollidable }
func (Renderable) Kind() ecs.Kind   { return KindRenderable }
func (SnakeHead) Kind() ecs.Kind    { return KindSnakeHead }
func (SnakeBody) Kind() ecs.Kind    { return KindSnakeBody }
func (FollowTarget) Kind() ecs.Kind { return KindFollowTarget }
func (Food) Kind() ecs.Kind         { return KindFood }
