package system

import (
	"math/rand"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/data"
)

const (
	HeadColor  = "#2B2D42"
	HeadRadius = 10.0
	HeadSpeed  = 100.0
)

// Config parameterizes the snake systems.
type Config struct {
	Width       float64
	Height      float64
	Seed        int64
	FollowDelay int
	FollowSpeed float64
	Input       Input
}

// Systems returns every snake system, ready to register in any order.
func Systems(cfg Config) []coresys.System {
	return []coresys.System{
		NewSnakeGrowSystem(),
		NewCollisionSystem(),
		NewMovementSystem(cfg.Width, cfg.Height),
		NewFollowSystem(cfg.FollowSpeed),
		NewTargetSystem(cfg.FollowDelay),
		NewControllerSystem(cfg.Input),
		NewFoodSpawnSystem(FoodSpawnConfig{
			Width:  cfg.Width,
			Height: cfg.Height,
			Rand:   rand.New(rand.NewSource(cfg.Seed)),
		}),
		NewScoreSystem(),
		NewSnakeResetSystem(),
	}
}

// SpawnDefault creates the built-in scene: a head in the middle of the field
// moving up and one food item.
func SpawnDefault(sp data.Spawner, width, height float64) ([]ecs.EntityID, error) {
	head, err := sp.Spawn(
		component.Size{Radius: HeadRadius},
		component.Position{X: width / 2, Y: height / 2},
		component.SnakeHead{},
		component.Collidable{Role: component.RoleSnake},
		component.Renderable{Color: HeadColor},
		component.Velocity{DX: 0, DY: -1, Speed: HeadSpeed},
		component.FollowTarget{},
	)
	if err != nil {
		return nil, err
	}
	food, err := sp.Spawn(FoodComponents(component.Position{X: width / 2, Y: height / 3}, DefaultFoodPoints, DefaultFoodRadius)...)
	if err != nil {
		return nil, err
	}
	return []ecs.EntityID{head, food}, nil
}
