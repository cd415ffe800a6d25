package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/visit"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all visits as JSON",
		Long:  "Write every visit as an indented JSON array to a file, or to stdout when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	visits, err := newAPIClient().ListVisits("")
	if err != nil {
		return err
	}
	if visits == nil {
		visits = []visit.Visit{}
	}

	if len(args) == 0 {
		return printJSON(cmd.OutOrStdout(), visits)
	}

	var buf bytes.Buffer
	if err := printJSON(&buf, visits); err != nil {
		return fmt.Errorf("encoding visits: %w", err)
	}
	if err := os.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	newPrompter(cmd).Notify("Exported", fmt.Sprintf("%d visits to %s", len(visits), args[0]), NotifySuccess)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all visits from a JSON export",
		Long:  "Replace every visit with the JSON array in file ('-' reads stdin). IDs and statuses are kept.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	visits, err := parseVisits(data)
	if err != nil {
		return err
	}

	p := newPrompter(cmd)
	if !p.Confirm("Import visits", fmt.Sprintf("Replace all visits with %d from %s?", len(visits), args[0])) {
		return errCanceled
	}

	n, err := newAPIClient().ReplaceVisits(visits)
	if err != nil {
		return fmt.Errorf("importing visits: %w", err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]int{"imported": n})
	}
	p.Notify("Imported", fmt.Sprintf("%d visits", n), NotifySuccess)
	return nil
}

// parseVisits decodes an export. Anything but a JSON array is rejected.
func parseVisits(data []byte) ([]visit.Visit, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("invalid import: expected a JSON array of visits")
	}
	var visits []visit.Visit
	if err := json.Unmarshal(trimmed, &visits); err != nil {
		return nil, fmt.Errorf("invalid import: %w", err)
	}
	return visits, nil
}
