package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/world"
	"github.com/l1jgo/simcore/internal/data"
	"github.com/l1jgo/simcore/internal/scripting"
	"github.com/l1jgo/simcore/internal/system"
)

// simulation is a fully assembled world plus the pieces the commands need
// to reach after setup.
type simulation struct {
	world   *world.World
	scripts []*scripting.LuaSystem
	input   *system.LatchInput
	spawned int
}

func buildSimulation(cfg *config.Config, log *zap.Logger) (*simulation, error) {
	kinds := component.Kinds()
	sim := &simulation{input: &system.LatchInput{}}

	var scene *data.Scene
	if cfg.Scene.Path != "" {
		sc, err := data.LoadScene(cfg.Scene.Path)
		if err != nil {
			return nil, err
		}
		scene = sc
	}

	if cfg.Scripts.Manifest != "" {
		m, err := data.LoadManifest(cfg.Scripts.Manifest)
		if err != nil {
			return nil, err
		}
		engine := scripting.NewEngine(kinds, log,
			scripting.WithLibDir(cfg.Scripts.Dir),
			scripting.WithGlobal("FIELD", map[string]any{
				"width":  cfg.Sim.Width,
				"height": cfg.Sim.Height,
			}),
		)
		sim.scripts, err = engine.LoadManifest(m)
		if err != nil {
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}

	w, err := world.New(func(in *world.Init) error {
		var (
			ids []ecs.EntityID
			err error
		)
		if scene != nil {
			ids, err = scene.Build(in, kinds)
		} else {
			ids, err = system.SpawnDefault(in, cfg.Sim.Width, cfg.Sim.Height)
		}
		if err != nil {
			return fmt.Errorf("spawn scene: %w", err)
		}
		sim.spawned = len(ids)

		if err := in.RegisterSystem(system.Systems(system.Config{
			Width:       cfg.Sim.Width,
			Height:      cfg.Sim.Height,
			Seed:        cfg.Sim.Seed,
			FollowDelay: cfg.Sim.FollowDelay,
			FollowSpeed: cfg.Sim.FollowSpeed,
			Input:       sim.input,
		})...); err != nil {
			return err
		}
		for _, s := range sim.scripts {
			if err := in.RegisterSystem(s); err != nil {
				return err
			}
		}
		return nil
	}, world.WithLogger(log))
	if err != nil {
		sim.Close()
		return nil, err
	}
	sim.world = w
	return sim, nil
}

func (s *simulation) Close() {
	for _, sc := range s.scripts {
		sc.Close()
	}
	s.scripts = nil
}
