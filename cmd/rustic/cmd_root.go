package main

import (
	"github.com/spf13/cobra"

	"github.com/zxcat/rustic/internal/errors"
)

// globalOptions collects the flags shared across every subcommand, in the
// restic idiom of a package-level options struct populated by cobra's
// persistent flags.
type globalOptions struct {
	Repo    string
	Quiet   bool
	Verbose int

	verbosity int
}

var gopts globalOptions

var cmdRoot = &cobra.Command{
	Use:   "rustic",
	Short: "Deduplicated, encrypted backup repository maintenance",
	Long: `
rustic maintains content-addressed, deduplicated snapshot repositories. This
build wires up the "prune" garbage collector: it reclaims space held by
packs that no live snapshot references any more while leaving every
reachable blob untouched.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,

	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		gopts.verbosity = 1
		if gopts.Quiet && gopts.Verbose > 0 {
			return errors.Fatal("--quiet and --verbose cannot be specified at the same time")
		}

		switch {
		case gopts.Verbose >= 2:
			gopts.verbosity = 3
		case gopts.Verbose > 0:
			gopts.verbosity = 2
		case gopts.Quiet:
			gopts.verbosity = 0
		}
		return nil
	},
}

func init() {
	f := cmdRoot.PersistentFlags()
	f.StringVarP(&gopts.Repo, "repo", "r", "", "repository directory to operate on")
	f.CountVarP(&gopts.Verbose, "verbose", "v", "be verbose (specify multiple times or a level for more verbosity)")
	f.BoolVarP(&gopts.Quiet, "quiet", "q", false, "do not output comprehensive progress report")
}
