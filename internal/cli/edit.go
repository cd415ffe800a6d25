package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/visit"
)

func newEditCmd() *cobra.Command {
	var f visitFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a visit",
		Long: `Change a visit's day, workload or address. Only the given flags change.
The visit's own current size does not count against its day.

Examples:
  vp edit 1 --forms 4
  vp edit 1 --date 2024-01-12 --cep 01305-000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], &f)
		},
	}

	f.register(cmd)
	return cmd
}

func runEdit(cmd *cobra.Command, id string, f *visitFlags) error {
	out := cmd.OutOrStdout()
	c := newAPIClient()

	current, err := c.GetVisit(id)
	if err != nil {
		return err
	}

	in := visit.Input{
		Date:         current.Date,
		FormCount:    current.FormCount,
		ProductCount: current.ProductCount,
		Address:      current.Address,
	}
	f.apply(cmd, &in)
	if f.lookup && cmd.Flags().Changed("cep") {
		// A new postal code replaces the looked-up parts not given
		// explicitly, but only once the lookup succeeds.
		next := in.Address
		for name, field := range map[string]*string{
			"state": &next.State, "city": &next.City, "street": &next.Street, "neighborhood": &next.Neighborhood,
		} {
			if !cmd.Flags().Changed(name) {
				*field = ""
			}
		}
		if err := fillAddress(c, &next); err != nil {
			if !isJSON() {
				newPrompter(cmd).Notify("Address lookup failed", err.Error()+"; keeping the current address", NotifyWarning)
			}
		} else {
			in.Address = next
		}
	}

	v, err := c.UpdateVisit(id, in)
	if err != nil {
		return capacityFailure(cmd, err, "updating visit")
	}

	if isJSON() {
		return printJSON(out, v)
	}

	newPrompter(cmd).Notify("Visit updated", fmt.Sprintf("%s on %s", v.ID, dayHeader(v.Date)), NotifySuccess)
	printVisitSummary(out, v)
	return nil
}
