package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection to the server",
		Long:  "Tests the connection to the server and prints today's totals.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	serverURL := getServerURL()
	c := newAPIClient()

	fmt.Fprintf(out, "Server:  %s\n", serverURL)

	if err := c.Health(); err != nil {
		fmt.Fprintf(out, "Status:  ✗ cannot reach server (%v)\n", err)
		fmt.Fprintln(out, "\nRun 'vp serve' or set VP_SERVER_URL.")
		return nil
	}
	fmt.Fprintln(out, "Status:  ✓ connected")

	days, err := c.ListDays()
	if err != nil {
		fmt.Fprintf(out, "Days:    ✗ %v\n", err)
		return nil
	}
	pending := 0
	for _, d := range days {
		pending += d.PendingVisits
	}
	fmt.Fprintf(out, "Days:    %d with visits, %d visits pending\n", len(days), pending)
	return nil
}
