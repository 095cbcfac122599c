package main

import (
	"strings"

	"github.com/spf13/cobra"

	"favdupes/pkg/dupes"
)

func newDupesCmd(a *app) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find duplicate posts among your likes",
		Long: `Fetch liked posts and group the ones that share a key:

  id    the same post liked twice, or a post and a retweet of it
  text  the same text once case, spacing, links and an "RT @user:" prefix
        are ignored (default)
  url   the same set of links

The first post in each group is kept. With --remove every other post in a
group is unfavorited; --dry-run (on unless set to false in config or on the
command line) only lists what would be removed. A duplicate that is a kept
post itself, or a retweet of one, is skipped: unfavoriting it would remove
the kept like as well. Groups found by id are therefore reported only.`,
		Example: `  favdupes dupes
  favdupes dupes --strategy url -o json
  favdupes dupes --remove --dry-run=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			report, err := svc.IdentifyDupes(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.term.RenderReport(a.format, report); err != nil {
				return err
			}

			if !remove || len(report.Groups) == 0 {
				return nil
			}

			dryRun := a.cfg.Dupes.DryRun
			if dryRun {
				a.term.PrintWarning("Dry run, pass --dry-run=false to unfavorite")
			}

			result, err := svc.RemoveDupes(cmd.Context(), report.Groups, dryRun)
			if result != nil {
				if rerr := a.term.RenderRemoval(a.format, result); rerr != nil && err == nil {
					err = rerr
				}
			}
			return err
		},
	}

	addFetchFlags(cmd)
	cmd.Flags().StringP("strategy", "s", "", "duplicate rule: "+strings.Join(dupes.Strategies(), ", ")+" (default from config)")
	cmd.Flags().BoolVar(&remove, "remove", false, "unfavorite the duplicates")
	cmd.Flags().Bool("dry-run", true, "with --remove, only list what would be unfavorited")
	return cmd
}
