package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the CLI settings in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			format := cfg.Format
			if format == "" {
				format = "text"
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"config_file": path,
					"server_url":  getServerURL(),
					"format":      format,
					"assume_yes":  cfg.AssumeYes,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\nServer URL:  %s\nFormat:      %s\nAssume yes:  %t\n",
				path, getServerURL(), format, cfg.AssumeYes)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the API server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid server URL %q (use http://host:port)", args[0])
			}

			return updateConfig(cmd, "Server set", args[0], func(cfg *CLIConfig) {
				cfg.ServerURL = args[0]
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-format <text|json>",
		Short: "Set the default output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(args[0]) {
				return fmt.Errorf("unknown output format %q (use text or json)", args[0])
			}
			return updateConfig(cmd, "Format set", args[0], func(cfg *CLIConfig) {
				cfg.Format = args[0]
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-assume-yes <true|false>",
		Short: "Answer yes to confirmations by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q (use true or false)", args[0])
			}
			return updateConfig(cmd, "Assume yes set", strconv.FormatBool(yes), func(cfg *CLIConfig) {
				cfg.AssumeYes = yes
			})
		},
	})

	return cmd
}

// updateConfig applies change to the saved config and reports it.
func updateConfig(cmd *cobra.Command, title, value string, change func(*CLIConfig)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	change(&cfg)
	if err := saveConfig(cfg); err != nil {
		return err
	}
	newPrompter(cmd).Notify(title, value, NotifySuccess)
	return nil
}
