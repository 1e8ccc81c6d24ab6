package system

import (
	"sync"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

// Direction is a steering command for the snake head.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// ParseDirection maps arrow key names and short forms to a Direction.
func ParseDirection(s string) Direction {
	switch s {
	case "ArrowUp", "up":
		return DirUp
	case "ArrowDown", "down":
		return DirDown
	case "ArrowLeft", "left":
		return DirLeft
	case "ArrowRight", "right":
		return DirRight
	}
	return DirNone
}

// Input is the steering source read once per frame.
type Input interface {
	Pressed() Direction
}

type idleInput struct{}

func (idleInput) Pressed() Direction { return DirNone }

// IdleInput never steers.
func IdleInput() Input { return idleInput{} }

// LatchInput holds the most recent direction until the controller reads it.
// Press may be called from any goroutine.
type LatchInput struct {
	mu  sync.Mutex
	dir Direction
}

func (l *LatchInput) Press(d Direction) {
	l.mu.Lock()
	l.dir = d
	l.mu.Unlock()
}

func (l *LatchInput) Pressed() Direction {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := l.dir
	l.dir = DirNone
	return d
}

var headVelocity = ecs.Join{
	"head":     component.KindSnakeHead,
	"velocity": component.KindVelocity,
}

// ControllerSystem turns the pressed direction into the head's velocity.
// Speed is kept; only the heading changes.
type ControllerSystem struct {
	coresys.Base
	input Input
}

func NewControllerSystem(input Input) *ControllerSystem {
	if input == nil {
		input = IdleInput()
	}
	return &ControllerSystem{Base: coresys.NewBase(TagController), input: input}
}

func (s *ControllerSystem) Execute(ctx *coresys.Context) error {
	head, err := ctx.QueryRequiredOne(ecs.With(headVelocity))
	if err != nil {
		return err
	}
	dir := s.input.Pressed()
	if dir == DirNone {
		return nil
	}
	vel, _ := ecs.RoleAs[component.Velocity](head, "velocity")
	switch dir {
	case DirUp:
		vel.DX, vel.DY = 0, -1
	case DirDown:
		vel.DX, vel.DY = 0, 1
	case DirLeft:
		vel.DX, vel.DY = -1, 0
	case DirRight:
		vel.DX, vel.DY = 1, 0
	}
	ctx.Attach(head.ID, vel)
	return nil
}
