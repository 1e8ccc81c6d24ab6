package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/core/world"
)

func newWorld(t *testing.T, systems []coresys.System, spawn func(in *world.Init) error) *world.World {
	t.Helper()
	w, err := world.New(func(in *world.Init) error {
		if err := spawn(in); err != nil {
			return err
		}
		return in.RegisterSystem(systems...)
	})
	require.NoError(t, err)
	return w
}

func spawnHead(in *world.Init, x, y float64, vel component.Velocity) (ecs.EntityID, error) {
	return in.Spawn(
		component.Position{X: x, Y: y},
		component.Size{Radius: HeadRadius},
		component.SnakeHead{},
		component.Collidable{Role: component.RoleSnake},
		component.Renderable{Color: HeadColor},
		vel,
		component.FollowTarget{X: x, Y: y},
	)
}

func segments(t *testing.T, w *world.World) []ecs.Record {
	t.Helper()
	return w.Store().Query(ecs.With(ecs.Join{
		"body":     component.KindSnakeBody,
		"position": component.KindPosition,
	}))
}

func foods(w *world.World) []ecs.Record {
	return w.Store().Query(ecs.With(ecs.Join{"food": component.KindFood}))
}

func TestSystems_ResolveOrder(t *testing.T) {
	w := newWorld(t, Systems(Config{Width: 400, Height: 300, Seed: 1}), func(in *world.Init) error {
		_, err := SpawnDefault(in, 400, 300)
		return err
	})
	order, err := w.Order()
	require.NoError(t, err)
	require.Len(t, order, 9)

	pos := make(map[string]int, len(order))
	for i, tag := range order {
		pos[tag] = i
	}
	for _, tag := range []string{TagFoodSpawn, TagSnakeGrow, TagScore, TagSnakeReset} {
		assert.Less(t, pos[TagCollision], pos[tag], tag)
	}
	assert.Less(t, pos[TagTarget], pos[TagFollow])
}

func TestSpawnDefault(t *testing.T) {
	w := newWorld(t, nil, func(in *world.Init) error {
		ids, err := SpawnDefault(in, 400, 300)
		if err != nil {
			return err
		}
		assert.Len(t, ids, 2)
		return nil
	})
	head, err := w.Store().QueryRequiredOne(ecs.With(requiredHead))
	require.NoError(t, err)
	pos, _ := ecs.RoleAs[component.Position](head, "position")
	assert.Equal(t, component.Position{X: 200, Y: 150}, pos)
	assert.Len(t, foods(w), 1)
}

func TestMovement_WrapsAtEdges(t *testing.T) {
	var id ecs.EntityID
	w := newWorld(t, []coresys.System{NewMovementSystem(400, 300)}, func(in *world.Init) error {
		var err error
		id, err = in.Spawn(
			component.Position{X: 395, Y: 5},
			component.Velocity{DX: 1, DY: -1, Speed: 100},
		)
		return err
	})

	require.NoError(t, w.Advance(0.1))
	pos, err := ecs.GetAs[component.Position](w.Store(), id, component.KindPosition)
	require.NoError(t, err)
	assert.InDelta(t, 5, pos.X, 1e-9)
	assert.InDelta(t, 295, pos.Y, 1e-9)
}

func TestEatingFood_GrowsRespawnsAndScores(t *testing.T) {
	var head, food ecs.EntityID
	systems := Systems(Config{Width: 400, Height: 300, Seed: 7})
	var score *ScoreSystem
	for _, s := range systems {
		if sc, ok := s.(*ScoreSystem); ok {
			score = sc
		}
	}
	w := newWorld(t, systems, func(in *world.Init) error {
		var err error
		head, err = spawnHead(in, 100, 100, component.Velocity{DX: 0, DY: -1, Speed: 0})
		if err != nil {
			return err
		}
		food, err = in.Spawn(FoodComponents(component.Position{X: 105, Y: 100}, 10, 5)...)
		return err
	})

	require.NoError(t, w.Advance(0.05))

	assert.False(t, w.Store().Alive(food))
	fs := foods(w)
	require.Len(t, fs, 1)
	assert.NotEqual(t, food, fs[0].ID)

	segs := segments(t, w)
	require.Len(t, segs, 1)
	body, _ := ecs.RoleAs[component.SnakeBody](segs[0], "body")
	assert.Equal(t, component.SnakeBody{Parent: head, IsTail: true}, body)
	pos, _ := ecs.RoleAs[component.Position](segs[0], "position")
	assert.Equal(t, component.Position{X: 100, Y: 120}, pos)

	assert.Equal(t, 10, score.Total())
}

func TestSnakeGrow_SeveralFoodsInOneFrameChain(t *testing.T) {
	var head ecs.EntityID
	w := newWorld(t, []coresys.System{NewCollisionSystem(), NewSnakeGrowSystem()}, func(in *world.Init) error {
		var err error
		head, err = spawnHead(in, 100, 100, component.Velocity{DX: 0, DY: -1, Speed: 0})
		if err != nil {
			return err
		}
		if _, err := in.Spawn(FoodComponents(component.Position{X: 104, Y: 100}, 10, 5)...); err != nil {
			return err
		}
		_, err = in.Spawn(FoodComponents(component.Position{X: 96, Y: 100}, 10, 5)...)
		return err
	})

	require.NoError(t, w.Advance(0.05))

	segs := segments(t, w)
	require.Len(t, segs, 2)
	first, _ := ecs.RoleAs[component.SnakeBody](segs[0], "body")
	second, _ := ecs.RoleAs[component.SnakeBody](segs[1], "body")
	assert.Equal(t, component.SnakeBody{Parent: head, IsTail: false}, first)
	assert.Equal(t, component.SnakeBody{Parent: segs[0].ID, IsTail: true}, second)

	pos, _ := ecs.RoleAs[component.Position](segs[1], "position")
	assert.Equal(t, component.Position{X: 100, Y: 140}, pos)
}

func TestSnakeGrow_AppendsAfterCommittedTail(t *testing.T) {
	var head, tail ecs.EntityID
	w := newWorld(t, []coresys.System{NewCollisionSystem(), NewSnakeGrowSystem()}, func(in *world.Init) error {
		var err error
		head, err = spawnHead(in, 100, 100, component.Velocity{DX: 1, DY: 0, Speed: 0})
		if err != nil {
			return err
		}
		tail, err = in.Spawn(
			component.SnakeBody{Parent: head, IsTail: true},
			component.Position{X: 80, Y: 100},
			component.Size{Radius: HeadRadius},
			component.FollowTarget{},
		)
		if err != nil {
			return err
		}
		_, err = in.Spawn(FoodComponents(component.Position{X: 110, Y: 100}, 10, 5)...)
		return err
	})

	require.NoError(t, w.Advance(0.05))

	old, err := ecs.GetAs[component.SnakeBody](w.Store(), tail, component.KindSnakeBody)
	require.NoError(t, err)
	assert.False(t, old.IsTail)

	segs := segments(t, w)
	require.Len(t, segs, 2)
	body, _ := ecs.RoleAs[component.SnakeBody](segs[1], "body")
	assert.Equal(t, component.SnakeBody{Parent: tail, IsTail: true}, body)
	pos, _ := ecs.RoleAs[component.Position](segs[1], "position")
	assert.Equal(t, component.Position{X: 60, Y: 100}, pos)
}

func TestSelfCollision_ResetsBodyAndScore(t *testing.T) {
	score := NewScoreSystem()
	score.total = 30
	var head ecs.EntityID
	w := newWorld(t, []coresys.System{
		NewCollisionSystem(), NewSnakeResetSystem(), score, NewTargetSystem(0), NewFollowSystem(0),
	}, func(in *world.Init) error {
		var err error
		head, err = spawnHead(in, 100, 100, component.Velocity{DX: 0, DY: -1, Speed: 0})
		if err != nil {
			return err
		}
		a, err := in.Spawn(
			component.SnakeBody{Parent: head},
			component.Position{X: 300, Y: 280},
			component.Size{Radius: HeadRadius},
			component.Collidable{Role: component.RoleTail},
			component.FollowTarget{},
		)
		if err != nil {
			return err
		}
		_, err = in.Spawn(
			component.SnakeBody{Parent: a, IsTail: true},
			component.Position{X: 105, Y: 100},
			component.Size{Radius: HeadRadius},
			component.Collidable{Role: component.RoleTail},
			component.FollowTarget{},
		)
		return err
	})

	require.NoError(t, w.Advance(0.05))
	assert.Empty(t, segments(t, w))
	assert.True(t, w.Store().Alive(head))
	assert.Equal(t, 0, score.Total())
}

func TestCollision_DirectChildIsNotSelfCollision(t *testing.T) {
	var hits []any
	w := newWorld(t, []coresys.System{
		NewCollisionSystem(),
		coresys.Func("Probe", []string{TagCollision}, func(ctx *coresys.Context) error {
			hits = append(hits, ctx.Poll(component.EventSelfCollision)...)
			return nil
		}),
	}, func(in *world.Init) error {
		head, err := spawnHead(in, 100, 100, component.Velocity{})
		if err != nil {
			return err
		}
		_, err = in.Spawn(
			component.SnakeBody{Parent: head, IsTail: true},
			component.Position{X: 100, Y: 110},
			component.Size{Radius: HeadRadius},
			component.Collidable{Role: component.RoleTail},
		)
		return err
	})
	require.NoError(t, w.Advance(0.05))
	assert.Empty(t, hits)
}

func TestController_SteersHead(t *testing.T) {
	input := &LatchInput{}
	var head ecs.EntityID
	w := newWorld(t, []coresys.System{NewControllerSystem(input)}, func(in *world.Init) error {
		var err error
		head, err = spawnHead(in, 100, 100, component.Velocity{DX: 0, DY: -1, Speed: 80})
		return err
	})

	input.Press(ParseDirection("ArrowLeft"))
	require.NoError(t, w.Advance(0.05))
	vel, err := ecs.GetAs[component.Velocity](w.Store(), head, component.KindVelocity)
	require.NoError(t, err)
	assert.Equal(t, component.Velocity{DX: -1, DY: 0, Speed: 80}, vel)

	// latch is consumed; no further change
	require.NoError(t, w.Advance(0.05))
	vel, err = ecs.GetAs[component.Velocity](w.Store(), head, component.KindVelocity)
	require.NoError(t, err)
	assert.Equal(t, -1.0, vel.DX)
}

func TestController_RequiresHead(t *testing.T) {
	w := newWorld(t, []coresys.System{NewControllerSystem(nil)}, func(*world.Init) error { return nil })
	assert.ErrorIs(t, w.Advance(0.05), ecs.ErrMissingRequiredEntity)
}

func TestTarget_RefreshesEveryDelayPlusOneFrames(t *testing.T) {
	var id ecs.EntityID
	w := newWorld(t, []coresys.System{NewTargetSystem(1)}, func(in *world.Init) error {
		var err error
		id, err = in.Spawn(component.Position{X: 7, Y: 8}, component.FollowTarget{})
		return err
	})

	target := func() component.FollowTarget {
		ft, err := ecs.GetAs[component.FollowTarget](w.Store(), id, component.KindFollowTarget)
		require.NoError(t, err)
		return ft
	}
	require.NoError(t, w.Advance(1))
	require.NoError(t, w.Advance(1))
	assert.Equal(t, component.FollowTarget{}, target())
	require.NoError(t, w.Advance(1))
	assert.Equal(t, component.FollowTarget{X: 7, Y: 8}, target())
}

func TestFollow_ApproachesParentTarget(t *testing.T) {
	var seg, orphan ecs.EntityID
	w := newWorld(t, []coresys.System{NewTargetSystem(0), NewFollowSystem(10)}, func(in *world.Init) error {
		parent, err := in.Spawn(component.FollowTarget{X: 100, Y: 0})
		if err != nil {
			return err
		}
		seg, err = in.Spawn(component.SnakeBody{Parent: parent}, component.Position{X: 0, Y: 0})
		if err != nil {
			return err
		}
		orphan, err = in.Spawn(component.SnakeBody{Parent: 999}, component.Position{})
		return err
	})

	require.NoError(t, w.Advance(0.5))
	pos, err := ecs.GetAs[component.Position](w.Store(), seg, component.KindPosition)
	require.NoError(t, err)
	assert.InDelta(t, 5, pos.X, 1e-9)
	assert.False(t, w.Store().Alive(orphan))
}

func TestApproach(t *testing.T) {
	tests := []struct {
		name   string
		cur    component.Position
		target component.FollowTarget
		step   float64
		want   component.Position
	}{
		{"partial", component.Position{}, component.FollowTarget{X: 3, Y: 4}, 2.5, component.Position{X: 1.5, Y: 2}},
		{"clamped", component.Position{}, component.FollowTarget{X: 3, Y: 4}, 50, component.Position{X: 3, Y: 4}},
		{"snap", component.Position{X: 1, Y: 1}, component.FollowTarget{X: 1.0001, Y: 1}, 0, component.Position{X: 1.0001, Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := approach(tt.cur, tt.target, tt.step)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, DirUp, ParseDirection("up"))
	assert.Equal(t, DirRight, ParseDirection("ArrowRight"))
	assert.Equal(t, DirNone, ParseDirection("space"))
}
