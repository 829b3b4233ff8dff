package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"imgclassd/internal/classifier"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List supported model variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tINPUT\tDESCRIPTION")
			for _, v := range classifier.Variants() {
				fmt.Fprintf(tw, "%s\t%dx%d\t%s\n", v.Name, v.Size, v.Size, v.Description)
			}
			return tw.Flush()
		},
	}
}
