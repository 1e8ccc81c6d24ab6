package component

import "github.com/l1jgo/simcore/internal/core/ecs"

// Event tags emitted by the snake systems.
const (
	EventFoodEaten     = "FoodEaten"
	EventScored        = "Scored"
	EventSelfCollision = "SelfCollision"
)

type FoodEaten struct {
	Food   ecs.EntityID `yaml:"food"`
	Points int          `yaml:"points"`
}

type Scored struct {
	Points int `yaml:"points"`
	Total  int `yaml:"total"`
}

type SelfCollision struct {
	Head    ecs.EntityID `yaml:"head"`
	Segment ecs.EntityID `yaml:"segment"`
}
