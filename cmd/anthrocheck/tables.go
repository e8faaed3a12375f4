package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gofhir/anthrocheck/reference"
)

func newTablesCmd(a *app) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the active reference table",
		Long: `Tables prints the reference table validations run against: the file
given by --tables or ANTHRO_TABLES, or the built-in table. The output can be
edited and passed back with --tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := reference.Default()
			if a.cfg.Tables != "" {
				t, err := reference.LoadFile(a.cfg.Tables)
				if err != nil {
					return &exitError{code: exitContract, err: err}
				}
				table = t
			}
			if err := reference.Encode(cmd.OutOrStdout(), table, reference.Format(as)); err != nil {
				return &exitError{code: exitContract, err: fmt.Errorf("tables: %w", err)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", string(reference.FormatYAML), "output encoding: yaml, toml")
	return cmd
}
