// Command cfbound builds a patch hierarchy from a TOML problem file, prints
// the coarse-fine boundary of each level and checkpoints patch data to a
// bbolt file.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cfbound",
		Short:         "Coarse-fine boundary and patch checkpoint tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(lvl)
			if logJSON {
				logrus.SetFormatter(&logrus.JSONFormatter{})
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	root.AddCommand(newBoundariesCommand(), newCheckpointCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
