package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/client"
	"github.com/evcraddock/visit-planner/internal/schedule"
)

func newCheckCmd() *cobra.Command {
	var (
		forms    int
		products int
		exclude  string
	)

	cmd := &cobra.Command{
		Use:   "check <date>",
		Short: "Check whether a visit fits on a day",
		Long: `Check whether a visit with the given workload fits on a day, without
scheduling it. Use --exclude with a visit ID to check an edit of that visit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, client.CapacityRequest{
				Date:         args[0],
				FormCount:    forms,
				ProductCount: products,
				ExcludeID:    exclude,
			})
		},
	}

	cmd.Flags().IntVarP(&forms, "forms", "f", 0, "number of forms")
	cmd.Flags().IntVarP(&products, "products", "p", 0, "number of products")
	cmd.Flags().StringVar(&exclude, "exclude", "", "visit ID to leave out of the day's total")

	return cmd
}

func runCheck(cmd *cobra.Command, req client.CapacityRequest) error {
	out := cmd.OutOrStdout()

	d, err := newAPIClient().CheckCapacity(req)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(out, d)
	}

	fmt.Fprintf(out, "Required:  %s\n", schedule.FormatMinutes(d.RequiredMinutes))
	fmt.Fprintf(out, "Available: %s\n", schedule.FormatMinutes(d.AvailableMinutes))
	if d.Allowed {
		fmt.Fprintln(out, "Fits:      yes")
	} else {
		fmt.Fprintf(out, "Fits:      no (%s short)\n", schedule.FormatMinutes(d.Shortfall()))
	}
	return nil
}
