package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/evcraddock/visit-planner/internal/db"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// versionInfo describes the running build.
type versionInfo struct {
	Version  string `json:"version"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
	// Schema is the database schema version this build migrates to.
	Schema int `json:"schema"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:  Version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Schema:   db.LatestVersion(),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := currentVersion()
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vp %s (%s, %s, schema %d)\n", v.Version, v.Go, v.Platform, v.Schema)
			return nil
		},
	}
}
