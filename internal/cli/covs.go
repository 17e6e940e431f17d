package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCOVsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "covs",
		Short: "List registered COV numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			covs, err := api.ListCOVs(cmd.Context())
			if err != nil {
				return fmt.Errorf("list covs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(covs) == 0 {
				fmt.Fprintln(out, "No COVs found.")
				return nil
			}
			for _, c := range covs {
				fmt.Fprintln(out, c.Number)
			}
			return nil
		},
	}
}
