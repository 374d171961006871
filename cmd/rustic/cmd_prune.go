package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zxcat/rustic/internal/backend/local"
	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/limits"
	"github.com/zxcat/rustic/internal/prune"
	"github.com/zxcat/rustic/internal/repository"
	"github.com/zxcat/rustic/internal/ui/progress"
)

// pruneOptions collects the prune command's flags.
type pruneOptions struct {
	MaxRepack           string
	MaxUnused           string
	RepackCacheableOnly bool
	DryRun              bool
}

var pruneOpts pruneOptions

var cmdPrune = &cobra.Command{
	Use:   "prune [flags]",
	Short: "Remove unneeded data from the repository",
	Long: `
The "prune" command checks the repository and removes data that is not
referenced by any snapshot and therefore not needed any more. It also
repacks packs with a high ratio of unused data to reclaim their space.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was
any error.
`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPrune(cmd)
	},
}

func init() {
	cmdRoot.AddCommand(cmdPrune)
	f := cmdPrune.Flags()
	f.StringVar(&pruneOpts.MaxRepack, "max-repack", "unlimited", "tolerate given `limit` of repacked data (absolute value in bytes with suffixes k/K, m/M, g/G, t/T, a value in % or the word 'unlimited')")
	f.StringVar(&pruneOpts.MaxUnused, "max-unused", "5%", "tolerate given `limit` of unused data after pruning (absolute value in bytes with suffixes k/K, m/M, g/G, t/T, a value in % or the word 'unlimited')")
	f.BoolVar(&pruneOpts.RepackCacheableOnly, "repack-cacheable-only", false, "only repack packs which are cacheable")
	f.BoolVarP(&pruneOpts.DryRun, "dry-run", "n", false, "do not modify the repository, only print what would be done")
}

func runPrune(cmd *cobra.Command) error {
	if gopts.Repo == "" {
		return errors.Fatal("please specify a repository location with --repo")
	}

	opts, err := verifyPruneOptions(pruneOpts)
	if err != nil {
		return err
	}

	be, err := local.Open(gopts.Repo)
	if err != nil {
		return errors.Wrap(err, "opening repository")
	}
	repo := repository.New(be)

	printer := progress.NewTerminalPrinter(gopts.verbosity, os.Stdout, os.Stderr)

	ctx := cmd.Context()
	bar := printer.NewCounter("snapshot trees processed")
	plan, err := prune.PlanPrune(ctx, repo, opts, bar)
	bar.Done()
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, prune.FormatStats(plan.Stats()))

	if opts.DryRun {
		printer.P("\nthis is a dry run, the repository was not modified\n")
		return nil
	}

	return plan.Execute(ctx, printer)
}

func verifyPruneOptions(opts pruneOptions) (prune.Options, error) {
	maxRepack, err := limits.ParseRepackLimit(opts.MaxRepack)
	if err != nil {
		return prune.Options{}, errors.Wrapf(err, "invalid --max-repack")
	}

	maxUnused, err := limits.ParseUnusedLimit(opts.MaxUnused)
	if err != nil {
		return prune.Options{}, errors.Wrapf(err, "invalid --max-unused")
	}

	return prune.Options{
		MaxRepack:           maxRepack,
		MaxUnused:           maxUnused,
		RepackCacheableOnly: opts.RepackCacheableOnly,
		DryRun:              opts.DryRun,
	}, nil
}
