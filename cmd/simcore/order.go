package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newOrderCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Print the resolved system execution order",
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

			order, err := sim.world.Order()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, tag := range order {
				fmt.Fprintf(w, "%2d. %s\n", i+1, tag)
			}
			fmt.Fprintln(w, strings.Repeat("─", 24))
			fmt.Fprintf(w, "%d systems\n", len(order))
			return nil
		},
	}
}
