package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
)

// ScoreSystem keeps the running score and emits Scored for each food item
// eaten. A self collision resets the score to zero.
type ScoreSystem struct {
	coresys.Base
	total int
}

func NewScoreSystem() *ScoreSystem {
	return &ScoreSystem{Base: coresys.NewBase(TagScore, TagCollision)}
}

func (s *ScoreSystem) Total() int { return s.total }

func (s *ScoreSystem) Execute(ctx *coresys.Context) error {
	if len(ctx.Poll(component.EventSelfCollision)) > 0 {
		s.total = 0
	}
	for _, ev := range event.PollAs[component.FoodEaten](ctx.Events(), component.EventFoodEaten) {
		s.total += ev.Points
		ctx.Emit(component.EventScored, component.Scored{Points: ev.Points, Total: s.total})
		ctx.Logger().Debug("scored",
			zap.Uint64("frame", ctx.Frame),
			zap.Int("points", ev.Points),
			zap.Int("total", s.total),
		)
	}
	return nil
}
