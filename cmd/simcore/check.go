package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type checkOptions struct {
	Frames int
}

func newCheckCommand(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate config, scene and scripts, then dry-run a few frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			sim, err := buildSimulation(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer sim.Close()

			out := display{w: cmd.OutOrStdout()}
			out.section("Check")
			out.stat("entities spawned", sim.spawned)
			out.stat("scripted systems", len(sim.scripts))

			dt := cfg.Sim.TickRate.Seconds()
			for i := 0; i < opts.Frames; i++ {
				if err := sim.world.Advance(dt); err != nil {
					return err
				}
			}
			out.stat("frames", int(sim.world.Frame()))
			out.stat("live entities", sim.world.Store().Len())
			out.ok(fmt.Sprintf("%s is valid", root.configPath()))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Frames, "frames", 10, "frames to dry-run")
	return cmd
}
