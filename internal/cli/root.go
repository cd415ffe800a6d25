// Package cli defines the cobra command tree for visit-planner.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/client"
)

var (
	flagFormat string
	flagYes    bool
)

// promptIn is where confirmations are read from.
var promptIn io.Reader = os.Stdin

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vp",
		Short:         "Plan field visits against daily capacity",
		Long:          "A tool to schedule field visits. Each visit costs time by its forms and products; a day holds 8 hours. Closing a day moves its pending visits to the next days with room.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyCLIDefaults(cmd)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "answer yes to confirmations")

	root.AddCommand(
		newAddCmd(),
		newEditCmd(),
		newListCmd(),
		newShowCmd(),
		newDaysCmd(),
		newCheckCmd(),
		newCompleteCmd(),
		newCloseDayCmd(),
		newRemoveCmd(),
		newCEPCmd(),
		newExportCmd(),
		newImportCmd(),
		newServeCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the visit-planner API.
func newAPIClient() *client.Client {
	return client.New(getServerURL())
}

// newPrompter returns the prompter for cmd, honoring --yes.
func newPrompter(cmd *cobra.Command) Prompter {
	return NewPrompter(promptIn, cmd.OutOrStdout(), flagYes)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// errCanceled is returned when the operator declines a confirmation.
var errCanceled = errors.New("canceled")
