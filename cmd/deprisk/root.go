// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/internal/logging"
)

// app carries state shared by the subcommands.
type app struct {
	logMode string
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:          "deprisk",
		Short:        "Probabilistic dependency-risk engine",
		Long:         "deprisk propagates component failure risk through a weighted dependency graph with AND-gates.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(a.logMode)
			if err != nil {
				return err
			}
			a.log = l

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.logMode, "log-mode", logging.ModeProduction, "log mode: dev or prod")

	root.AddCommand(newEvalCmd(a), newServeCmd(a))

	return root
}
