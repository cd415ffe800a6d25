package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/client"
	"github.com/evcraddock/visit-planner/internal/schedule"
	"github.com/evcraddock/visit-planner/internal/visit"
)

func newAddCmd() *cobra.Command {
	var f visitFlags

	cmd := &cobra.Command{
		Use:   "add <date>",
		Short: "Schedule a visit",
		Long: `Schedule a visit on a day. The visit is rejected when the day does not
have enough time left for its forms and products.

Examples:
  vp add 2024-01-10 --forms 3 --products 5 --cep 01310-100 --number 1578
  vp add 2024-01-10 -f 2 -p 1 --city Campinas --state SP --lookup=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], &f)
		},
	}

	f.register(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, date string, f *visitFlags) error {
	out := cmd.OutOrStdout()
	c := newAPIClient()
	p := newPrompter(cmd)

	in := visit.Input{Date: date}
	f.apply(cmd, &in)
	if f.lookup {
		if err := fillAddress(c, &in.Address); err != nil && !isJSON() {
			p.Notify("Address lookup failed", err.Error(), NotifyWarning)
		}
	}

	v, err := c.AddVisit(in)
	if err != nil {
		return capacityFailure(cmd, err, "adding visit")
	}

	if isJSON() {
		return printJSON(out, v)
	}

	p.Notify("Visit scheduled", fmt.Sprintf("%s on %s", v.ID, dayHeader(v.Date)), NotifySuccess)
	printVisitSummary(out, v)
	return nil
}

// capacityFailure explains a capacity rejection, then returns err wrapped
// with action.
func capacityFailure(cmd *cobra.Command, err error, action string) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Decision != nil && !isJSON() {
		d := apiErr.Decision
		newPrompter(cmd).Notify("Not enough time", fmt.Sprintf("visit needs %s, %s available (%s short)",
			schedule.FormatMinutes(d.RequiredMinutes),
			schedule.FormatMinutes(d.AvailableMinutes),
			schedule.FormatMinutes(d.Shortfall())), NotifyError)
	}
	return fmt.Errorf("%s: %w", action, err)
}
