package main

import (
	"github.com/spf13/cobra"

	"favdupes/pkg/favorites"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify the Twitter credentials",
		Long: `Sign requests with the resolved credentials and call
account/verify_credentials. Exits with status 2 when the keys are missing
or rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := a.credentials()
			if err != nil {
				return err
			}

			user, err := favorites.NewFromConfig(a.cfg, creds, a.log).Login(cmd.Context())
			if err != nil {
				return err
			}

			a.term.PrintSuccess("Logged in as @" + user.ScreenName)
			if creds.Profile != "" {
				a.term.PrintInfo("Profile", creds.Profile)
			}
			return nil
		},
	}
}
