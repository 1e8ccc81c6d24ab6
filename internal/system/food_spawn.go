package system

import (
	"math/rand"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

const (
	DefaultFoodPoints = 10
	DefaultFoodRadius = 5.0
	FoodColor         = "#D80032"
)

type FoodSpawnConfig struct {
	Width  float64
	Height float64
	Rand   *rand.Rand
	Points int     // 0 = DefaultFoodPoints
	Radius float64 // 0 = DefaultFoodRadius
}

// FoodComponents returns the component set of one food item at pos.
func FoodComponents(pos component.Position, points int, radius float64) []ecs.Component {
	return []ecs.Component{
		pos,
		component.Food{Points: points},
		component.Size{Radius: radius},
		component.Collidable{Role: component.RoleFood},
		component.Renderable{Color: FoodColor},
	}
}

// FoodSpawnSystem replaces every eaten food item with a new one at a random
// spot on the field.
type FoodSpawnSystem struct {
	coresys.Base
	cfg FoodSpawnConfig
}

func NewFoodSpawnSystem(cfg FoodSpawnConfig) *FoodSpawnSystem {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.Points == 0 {
		cfg.Points = DefaultFoodPoints
	}
	if cfg.Radius == 0 {
		cfg.Radius = DefaultFoodRadius
	}
	return &FoodSpawnSystem{Base: coresys.NewBase(TagFoodSpawn, TagCollision), cfg: cfg}
}

func (s *FoodSpawnSystem) Execute(ctx *coresys.Context) error {
	seen := make(map[ecs.EntityID]bool)
	for _, ev := range event.PollAs[component.FoodEaten](ctx.Events(), component.EventFoodEaten) {
		if seen[ev.Food] {
			continue
		}
		seen[ev.Food] = true
		ctx.Destroy(ev.Food)
		pos := component.Position{
			X: s.cfg.Rand.Float64() * s.cfg.Width,
			Y: s.cfg.Rand.Float64() * s.cfg.Height,
		}
		ctx.Attach(ctx.CreateEntity(), FoodComponents(pos, s.cfg.Points, s.cfg.Radius)...)
	}
	return nil
}
