package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"favdupes/pkg/storage"
	"favdupes/pkg/ui"
	"favdupes/pkg/urls"
)

func (a *app) openStore(cmd *cobra.Command) (*storage.Store, error) {
	store, err := storage.NewStore(cmd.Context(), a.cfg.Export.DatabasePath, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.cfg.Export.DatabasePath, err)
	}
	return store, nil
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save a snapshot of your likes to SQLite",
		Long: `Fetch liked posts, find duplicates and extract links, then store all
three as one run in the SQLite database (--database, default ./favdupes.db).
Runs are listed with 'favdupes history'.`,
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
			links := urls.Collect(report.Tweets)

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run := storage.NewRun(report.ScreenName, report.Strategy, report.Tweets, report.Groups, links)
			if err := store.SaveRun(cmd.Context(), run); err != nil {
				return err
			}

			summary, err := store.GetRun(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			if a.format != ui.FormatText {
				return a.term.RenderValue(a.format, summary)
			}
			a.term.PrintSuccess("Exported run " + run.ID)
			a.term.PrintInfo("Database", store.Path())
			return a.term.RenderRuns(a.format, []storage.RunSummary{*summary})
		},
	}

	addFetchFlags(cmd)
	cmd.Flags().StringP("strategy", "s", "", "duplicate rule stored with the run (default from config)")
	cmd.Flags().String("database", "", "SQLite database path (default from config)")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List exported runs, or the links of one run",
		Example: `  favdupes history
  favdupes history 2b6f0c1e-8d6a-4c3e-9b1a-4f3f2d1c0b9a
  favdupes history 2b6f0c1e-8d6a-4c3e-9b1a-4f3f2d1c0b9a --delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove && len(args) == 0 {
				return fmt.Errorf("--delete needs a run id")
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 0 {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return a.term.RenderRuns(a.format, runs)
			}

			if remove {
				if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.term.PrintSuccess("Deleted run " + args[0])
				return nil
			}

			links, err := store.RunLinks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.term.RenderLinks(a.format, links)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum runs to list, 0 for all")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the given run")
	cmd.Flags().String("database", "", "SQLite database path (default from config)")
	return cmd
}
