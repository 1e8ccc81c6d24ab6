package component

import "github.com/l1jgo/simcore/internal/data"

// Kinds returns a registry holding every snake component.
func Kinds() *data.KindRegistry {
	r := data.NewKindRegistry()
	data.Register[Position](r)
	data.Register[Velocity](r)
	data.Register[Size](r)
	data.Register[Collidable](r)
	data.Register[Renderable](r)
	data.Register[SnakeHead](r)
	data.Register[SnakeBody](r)
	data.Register[FollowTarget](r)
	data.Register[Food](r)
	return r
}
