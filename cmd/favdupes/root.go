package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"favdupes/pkg/auth"
	"favdupes/pkg/config"
	"favdupes/pkg/errors"
	"favdupes/pkg/logger"
	"favdupes/pkg/ui"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// annotationNoConfigFile marks commands that must run before --config exists
const annotationNoConfigFile = "favdupes/no-config-file"

// app carries global flags and the state every command shares
type app struct {
	configFile string
	logLevel   string
	profile    string
	output     string
	noColor    bool
	quiet      bool

	cfg    *config.Config
	log    logger.Logger
	format ui.Format
	term   *ui.Terminal
	in     io.Reader

	newManager func() (*auth.Manager, error)
}

func newApp() *app {
	return &app{
		term:       ui.Default(),
		in:         os.Stdin,
		newManager: auth.NewManager,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "favdupes",
		Short: "Find duplicate posts among your Twitter likes",
		Long: `favdupes signs in to the Twitter API with your four OAuth keys, fetches
your liked posts and reports the ones that duplicate each other by ID, text
or the links they share. It can unfavorite the duplicates, extract every URL
you liked and export snapshots to SQLite.

Credentials are read from, in order:
  - a stored profile (--profile, see 'favdupes auth store')
  - FAVDUPES_* environment variables, .env files or the config file
  - the default stored profile`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.term.PrintBanner()
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default .favdupes.yaml, ~/.config/favdupes/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&a.profile, "profile", "P", "", "stored credential profile to use")
	flags.StringVarP(&a.output, "output", "o", "text", "output format (text, json, yaml)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors and results")

	root.SetVersionTemplate(`favdupes {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newLoginCmd(a),
		newAuthCmd(a),
		newFavsCmd(a),
		newTweetsCmd(a),
		newDupesCmd(a),
		newURLsCmd(a),
		newExportCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and the logger before any command runs
func (a *app) setup(cmd *cobra.Command) error {
	format, err := ui.ParseFormat(a.output)
	if err != nil {
		return err
	}
	a.format = format

	// json and yaml results own stdout
	a.term.SetNoColor(a.noColor)
	a.term.SetQuiet(a.quiet || format != ui.FormatText)

	flags := changedFlags(cmd)
	if a.quiet && a.logLevel == "" {
		flags["log-level"] = "error"
	}

	path := a.configFile
	if cmd.Annotations[annotationNoConfigFile] != "" {
		path = ""
	}

	cfg, err := config.Load(path, flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger.ForComponent("cli").WithField("command", cmd.Name())

	return nil
}

// changedFlags collects explicitly set flags for config.MergeCommandLineFlags
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	out := make(map[string]interface{})
	fs := cmd.Flags()

	for _, name := range []string{"screen-name", "strategy", "database", "log-level"} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			out[name] = f.Value.String()
		}
	}
	if f := fs.Lookup("count"); f != nil && f.Changed {
		if v, err := fs.GetInt("count"); err == nil {
			out["count"] = v
		}
	}
	if f := fs.Lookup("dry-run"); f != nil && f.Changed {
		if v, err := fs.GetBool("dry-run"); err == nil {
			out["dry-run"] = v
		}
	}
	return out
}

// execute runs the CLI and maps the outcome to an exit code
func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.term.Out())

	err := root.ExecuteContext(ctx)
	if err != nil {
		a.term.PrintError("Error", err)
		if errors.ExitCode(err) == errors.ExitCredentials {
			a.term.PrintWarning("Run 'favdupes auth guide' to see how to obtain Twitter API keys")
		}
	}
	return errors.ExitCode(err)
}
