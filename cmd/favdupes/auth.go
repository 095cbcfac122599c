package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"favdupes/pkg/auth"
	"favdupes/pkg/errors"
	"favdupes/pkg/favorites"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored Twitter credentials",
		Long: `Manage credential profiles.

Profiles are stored in:
  - the system keychain, when available
  - an AES-GCM encrypted file, keyed with PBKDF2
FAVDUPES_* environment variables are read as the "default" profile.`,
	}

	cmd.AddCommand(newAuthStoreCmd(a), newAuthListCmd(a), newAuthDeleteCmd(a), newAuthGuideCmd(a))
	return cmd
}

func newAuthStoreCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store the four API secrets under a profile",
		Long: `Prompt for the consumer key, consumer secret, access token and access
token secret and store them under --profile (default "default"). Input is
hidden on a terminal. With --verify the keys are checked against the API
first and the account's screen name is saved with them.`,
		Example: `  favdupes auth store
  favdupes auth store --profile work --verify=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.newManager()
			if err != nil {
				return fmt.Errorf("failed to initialize credential manager: %w", err)
			}

			profile := a.profile
			if profile == "" {
				profile = auth.DefaultProfile
			}

			p := newPrompter(a.in, cmd.OutOrStdout())
			creds := &auth.Credentials{Profile: profile}
			for _, field := range []struct {
				prompt string
				dest   *string
			}{
				{"Consumer key (API key): ", &creds.ConsumerKey},
				{"Consumer secret (API key secret): ", &creds.ConsumerSecret},
				{"Access token: ", &creds.AccessToken},
				{"Access token secret: ", &creds.AccessTokenSecret},
			} {
				v, err := p.secret(field.prompt)
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				*field.dest = v
			}

			if err := creds.Validate(); err != nil {
				return fmt.Errorf("%w: %w", errors.ErrMissingCredentials, err)
			}

			if verify {
				user, err := favorites.NewFromConfig(a.cfg, creds, a.log).Login(cmd.Context())
				if err != nil {
					return err
				}
				creds.ScreenName = user.ScreenName
			}

			if err := manager.Store(creds); err != nil {
				return err
			}

			a.term.PrintSuccess("Credentials stored for profile " + profile)
			if creds.ScreenName != "" {
				a.term.PrintInfo("Account", "@"+creds.ScreenName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", true, "verify the keys against the API before storing")
	return cmd
}

func newAuthListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles with masked secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.newManager()
			if err != nil {
				return fmt.Errorf("failed to initialize credential manager: %w", err)
			}

			all, err := manager.List()
			if err != nil {
				return err
			}

			if len(all) == 0 {
				a.term.PrintInfo("No stored profiles", "use 'favdupes auth store' to add one")
				return nil
			}

			masked := make([]*auth.Credentials, 0, len(all))
			for _, c := range all {
				masked = append(masked, auth.SanitizeCredentials(c))
			}
			return a.term.RenderValue(a.format, masked)
		},
	}
}

func newAuthDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profile>",
		Short: "Remove a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.newManager()
			if err != nil {
				return fmt.Errorf("failed to initialize credential manager: %w", err)
			}

			if err := manager.Delete(args[0]); err != nil {
				return err
			}
			a.term.PrintSuccess("Profile removed: " + args[0])
			return nil
		},
	}
}

func newAuthGuideCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Explain how to obtain the four API secrets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			auth.ShowSetupGuide(cmd.OutOrStdout())
		},
	}
}
