package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"favdupes/pkg/auth"
	"favdupes/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage favdupes configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (FAVDUPES_*)
  - .env, ~/.env and ~/.favdupes.env
  - Configuration file (YAML or TOML)
  - Default values`,
	}

	cmd.AddCommand(newConfigInitCmd(a), newConfigShowCmd(a), newConfigValidateCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Create a configuration file with the defaults",
		Annotations: map[string]string{annotationNoConfigFile: "true"},
		Long: `Write the default configuration to .favdupes.yaml, or to the path given
with --config. A .toml extension writes TOML. Existing files are never
overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile
			if path == "" {
				path = ".favdupes.yaml"
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file already exists: %s", path)
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}

			a.term.PrintSuccess("Configuration file created: " + path)
			out := cmd.OutOrStdout()
			if !a.quiet {
				fmt.Fprintln(out, "\nNext steps:")
				fmt.Fprintln(out, "1. Add your four Twitter API keys, or run 'favdupes auth store'")
				fmt.Fprintln(out, "2. Run 'favdupes config validate' to check the configuration")
				fmt.Fprintln(out, "3. Run 'favdupes dupes' to find duplicate likes")
			}
			return nil
		},
	}
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after every source has been applied.
Credentials are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			display := *a.cfg
			masked := auth.SanitizeCredentials(auth.FromConfig(display.Twitter))
			display.Twitter.ConsumerKey = masked.ConsumerKey
			display.Twitter.ConsumerSecret = masked.ConsumerSecret
			display.Twitter.AccessToken = masked.AccessToken
			display.Twitter.AccessTokenSecret = masked.AccessTokenSecret

			a.term.PrintHighlight("Current Configuration")
			return a.term.RenderValue(a.format, &display)
		},
	}
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Check the loaded configuration for invalid values. Missing credentials
are reported as a warning since they can also come from a stored profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load already ran Validate, so only the API requirements remain
			if a.configFile != "" {
				a.term.PrintInfo("Validating configuration", a.configFile)
			}

			if err := a.cfg.ValidateForAPI(); err != nil {
				a.term.PrintWarning("Warning", "Twitter API keys not configured (a stored profile can still supply them)")
				for _, missing := range strings.Split(err.Error(), "\n") {
					a.term.PrintWarning("  - " + missing)
				}
			}

			a.term.PrintSuccess("Configuration is valid")
			a.term.PrintInfo("Count", fmt.Sprintf("%d", a.cfg.Favorites.Count))
			a.term.PrintInfo("Strategy", a.cfg.Dupes.Strategy)
			a.term.PrintInfo("Dry run", fmt.Sprintf("%t", a.cfg.Dupes.DryRun))
			a.term.PrintInfo("Database", a.cfg.Export.DatabasePath)
			a.term.PrintInfo("Log level", a.cfg.Logging.Level)
			return nil
		},
	}
}
