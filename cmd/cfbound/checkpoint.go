package main

import (
	"fmt"
	"io"

	"github.com/notargets/amrgeom/config"
	"github.com/notargets/amrgeom/hier"
	"github.com/notargets/amrgeom/tbox"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const hierarchyKey = "PatchHierarchy"

func levelKey(n int) string { return fmt.Sprintf("level_%d", n) }

// filler is implemented by the pdat data kinds
type filler interface {
	Fill(v float64, where hier.Box)
}

func newCheckpointCommand() *cobra.Command {
	var (
		restore bool
		time    float64
	)
	cmd := &cobra.Command{
		Use:   "checkpoint PROBLEM.toml FILE.db",
		Short: "Write every patch to a bbolt file, or read them back with --restore",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Load(args[0])
			if err != nil {
				return err
			}
			h, err := p.Build()
			if err != nil {
				return err
			}
			f, err := tbox.OpenBoltFile(args[1], tbox.BoltOptions{})
			if err != nil {
				return err
			}
			defer f.Close()

			if restore {
				if err := restoreHierarchy(f, h); err != nil {
					return err
				}
				return printPatches(cmd.OutOrStdout(), h)
			}
			return writeHierarchy(f, h, time)
		},
	}
	cmd.Flags().BoolVar(&restore, "restore", false, "read patches instead of writing them")
	cmd.Flags().Float64Var(&time, "time", 0, "timestamp of the written data")
	return cmd
}

// writeHierarchy allocates every component, fills it with its level number
// and writes all levels
func writeHierarchy(f *tbox.BoltFile, h *hier.PatchHierarchy, time float64) error {
	sel := hier.NewComponentSelector()
	sel.SetAll(h.PatchDescriptor().MaxNumberRegisteredComponents())

	for n := 0; n < h.NumberOfLevels(); n++ {
		level, err := h.PatchLevel(n)
		if err != nil {
			return err
		}
		if err := level.AllocatePatchDataSelection(sel, time); err != nil {
			return err
		}
		for _, patch := range level.Patches() {
			for _, id := range sel.Ids() {
				if d, ok := patch.PatchData(id).(filler); ok {
					d.Fill(float64(n), patch.PatchData(id).GhostBox())
				}
			}
		}
	}

	return f.Update(func(root tbox.Database) error {
		hdb, err := root.PutDatabase(hierarchyKey)
		if err != nil {
			return err
		}
		if err := hdb.PutInteger("d_number_levels", h.NumberOfLevels()); err != nil {
			return err
		}
		for n := 0; n < h.NumberOfLevels(); n++ {
			level, _ := h.PatchLevel(n)
			ldb, err := hdb.PutDatabase(levelKey(n))
			if err != nil {
				return err
			}
			if err := level.PutToDatabase(ldb, sel); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"level":   n,
				"patches": level.NumberPatches(),
			}).Info("wrote level")
		}
		return nil
	})
}

// restoreHierarchy reads every level written by writeHierarchy into h
func restoreHierarchy(f *tbox.BoltFile, h *hier.PatchHierarchy) error {
	sel := hier.NewComponentSelector()
	sel.SetAll(h.PatchDescriptor().MaxNumberRegisteredComponents())

	return f.View(func(root tbox.Database) error {
		hdb, err := root.GetDatabase(hierarchyKey)
		if err != nil {
			return err
		}
		numLevels, err := hdb.GetInteger("d_number_levels")
		if err != nil {
			return err
		}
		if numLevels != h.NumberOfLevels() {
			return fmt.Errorf("%w: file has %d levels, problem has %d", hier.ErrIdentityMismatch, numLevels, h.NumberOfLevels())
		}
		for n := 0; n < h.NumberOfLevels(); n++ {
			level, _ := h.PatchLevel(n)
			ldb, err := hdb.GetDatabase(levelKey(n))
			if err != nil {
				return fmt.Errorf("level %d: %w", n, err)
			}
			if err := level.GetFromDatabase(ldb, sel); err != nil {
				return err
			}
		}
		return nil
	})
}

func printPatches(w io.Writer, h *hier.PatchHierarchy) error {
	for n := 0; n < h.NumberOfLevels(); n++ {
		level, _ := h.PatchLevel(n)
		for _, p := range level.Patches() {
			if err := p.RecursivePrint(w, "", 0); err != nil {
				return err
			}
		}
	}
	return nil
}
