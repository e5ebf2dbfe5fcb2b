package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newGraphsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graphs",
		Short: "List registered graphs and resolvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tDESCRIPTION")
			for _, info := range e.engine.Graphs() {
				kind := "graph"
				if info.Dynamic {
					kind = "resolver"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, kind, info.Description)
			}
			return tw.Flush()
		},
	}
}

func newProvidersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered cross-platform providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			for _, name := range e.engine.Providers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
