package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/visit"
)

func newCEPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cep <postal-code>",
		Short: "Look up an address by postal code",
		Args:  cobra.ExactArgs(1),
		RunE:  runCEP,
	}
}

func runCEP(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	addr, err := newAPIClient().LookupAddress(args[0])
	if err != nil {
		return fmt.Errorf("looking up %s: %w", args[0], err)
	}

	if isJSON() {
		return printJSON(out, addr)
	}

	fmt.Fprintln(out, formatAddress(visit.Address{
		PostalCode:   addr.PostalCode,
		State:        addr.State,
		City:         addr.City,
		Street:       addr.Street,
		Neighborhood: addr.Neighborhood,
	}))
	return nil
}
