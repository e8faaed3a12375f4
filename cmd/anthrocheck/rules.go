package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ac "github.com/gofhir/anthrocheck"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the checks in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return &exitError{code: exitContract, err: err}
			}

			plan := eng.Plan()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STAGE\tPHASE\tRULE")
			for _, group := range plan.Groups {
				for i, name := range group.Names() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", group.Stage(), name, group.Phases[i].Rule)
				}
			}
			enabled := plan.Rules()
			for _, rule := range ac.Rules {
				if !slices.Contains(enabled, rule) {
					fmt.Fprintf(tw, "-\t-\t%s (disabled)\n", rule)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d phases, %d of %d rules enabled\n",
				plan.TotalPhases(), len(enabled), len(ac.Rules))
			return err
		},
	}
}
