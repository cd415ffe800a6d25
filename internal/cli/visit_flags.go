package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/visit"
)

// visitFlags are the editable fields of a visit, shared by add and edit.
type visitFlags struct {
	date         string
	forms        int
	products     int
	postalCode   string
	state        string
	city         string
	street       string
	neighborhood string
	number       string
	complement   string
	lookup       bool
}

func (f *visitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "visit day (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&f.forms, "forms", "f", 0, "number of forms to fill")
	cmd.Flags().IntVarP(&f.products, "products", "p", 0, "number of products to check")
	cmd.Flags().StringVar(&f.postalCode, "cep", "", "postal code (CEP)")
	cmd.Flags().StringVar(&f.state, "state", "", "state (UF)")
	cmd.Flags().StringVar(&f.city, "city", "", "city")
	cmd.Flags().StringVar(&f.street, "street", "", "street")
	cmd.Flags().StringVar(&f.neighborhood, "neighborhood", "", "neighborhood")
	cmd.Flags().StringVar(&f.number, "number", "", "street number")
	cmd.Flags().StringVar(&f.complement, "complement", "", "address complement")
	cmd.Flags().BoolVar(&f.lookup, "lookup", true, "fill empty address fields from the postal code")
}

// apply overwrites the fields of in whose flags were set on cmd.
func (f *visitFlags) apply(cmd *cobra.Command, in *visit.Input) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if set("date") {
		in.Date = f.date
	}
	if set("forms") {
		in.FormCount = f.forms
	}
	if set("products") {
		in.ProductCount = f.products
	}
	if set("cep") {
		in.Address.PostalCode = f.postalCode
	}
	if set("state") {
		in.Address.State = f.state
	}
	if set("city") {
		in.Address.City = f.city
	}
	if set("street") {
		in.Address.Street = f.street
	}
	if set("neighborhood") {
		in.Address.Neighborhood = f.neighborhood
	}
	if set("number") {
		in.Address.Number = f.number
	}
	if set("complement") {
		in.Address.Complement = f.complement
	}
}

// addressLookup resolves postal codes; implemented by client.Client.
type addressLookup interface {
	LookupAddress(code string) (*cep.Address, error)
}

// fillAddress completes empty address fields from the postal code.
// Lookup failures leave the address as typed.
func fillAddress(c addressLookup, a *visit.Address) error {
	if a.PostalCode == "" || (a.Street != "" && a.City != "" && a.State != "") {
		return nil
	}
	found, err := c.LookupAddress(a.PostalCode)
	if err != nil {
		return err
	}
	a.PostalCode = found.PostalCode
	if a.State == "" {
		a.State = found.State
	}
	if a.City == "" {
		a.City = found.City
	}
	if a.Street == "" {
		a.Street = found.Street
	}
	if a.Neighborhood == "" {
		a.Neighborhood = found.Neighborhood
	}
	return nil
}
