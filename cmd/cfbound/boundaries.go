package main

import (
	"fmt"
	"io"

	"github.com/notargets/amrgeom/config"
	"github.com/notargets/amrgeom/hier"
	"github.com/spf13/cobra"
)

func newBoundariesCommand() *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "boundaries PROBLEM.toml",
		Short: "Print the coarse-fine boundary boxes of every level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(args[0])
			if err != nil {
				return err
			}
			h, err := p.Build()
			if err != nil {
				return err
			}
			return printBoundaries(cmd.OutOrStdout(), h, p.GhostVector(), level)
		},
	}
	cmd.Flags().IntVar(&level, "level", -1, "only this level (-1 for all)")
	return cmd
}

// printBoundaries writes the catalogue of one level, or all when level < 0
func printBoundaries(w io.Writer, h *hier.PatchHierarchy, ghost hier.IntVector, level int) error {
	first, last := 0, h.NumberOfLevels()-1
	if level >= 0 {
		first, last = level, level
	}
	for n := first; n <= last; n++ {
		cfb, err := hier.NewCoarseFineBoundaryFromHierarchy(h, n, ghost)
		if err != nil {
			return fmt.Errorf("level %d: %w", n, err)
		}
		if _, err := fmt.Fprintf(w, "level %d\n", n); err != nil {
			return err
		}
		if err := cfb.Print(w); err != nil {
			return err
		}
	}
	return nil
}
