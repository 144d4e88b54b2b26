// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/riskgraph"
	"github.com/katalvlaran/deprisk/scenario"
)

// evalReport is the --json output of eval.
type evalReport struct {
	Risks     *orderedmap.OrderedMap[string, float64] `json:"risks"`
	Threshold float64                                  `json:"threshold"`
	Above     []string                                 `json:"above"`
}

func newEvalCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Load a scenario and print the total risk of every component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			g, err := doc.Build(riskgraph.WithLogger(a.log.Named("engine")))
			if err != nil {
				return err
			}
			om, err := g.OrderedRisks()
			if err != nil {
				return err
			}
			report := evalReport{Risks: om, Threshold: doc.ThresholdOr(scenario.DefaultThreshold), Above: []string{}}
			for pair := om.Oldest(); pair != nil; pair = pair.Next() {
				if pair.Value > report.Threshold {
					report.Above = append(report.Above, pair.Key)
				}
			}
			a.log.Debug("scenario evaluated",
				zap.String("file", args[0]),
				zap.Int("vertices", g.Len()),
				zap.Int("above", len(report.Above)))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(report)
			}

			return writeTable(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func writeTable(out io.Writer, r evalReport) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tRISK\t")
	for pair := r.Risks.Oldest(); pair != nil; pair = pair.Next() {
		mark := ""
		if pair.Value > r.Threshold {
			mark = "ABOVE"
		}
		fmt.Fprintf(tw, "%s\t%.6f\t%s\n", pair.Key, pair.Value, mark)
	}

	return tw.Flush()
}
