package prune

import "github.com/zxcat/rustic/internal/limits"

// Options configures a prune run.
type Options struct {
	// MaxRepack resolves against total (used+unused) bytes.
	MaxRepack limits.Limit
	// MaxUnused resolves against used bytes.
	MaxUnused limits.Limit
	// RepackCacheableOnly excludes packs lacking the cacheable marker
	// from becoming repack candidates.
	RepackCacheableOnly bool
	// DryRun runs the decision engine and prints statistics but skips the
	// executor.
	DryRun bool
}

// DefaultOptions matches the command's default flag values.
func DefaultOptions() (Options, error) {
	maxUnused, err := limits.ParseUnusedLimit("5%")
	if err != nil {
		return Options{}, err
	}
	return Options{
		MaxRepack: limits.Unlimited,
		MaxUnused: maxUnused,
	}, nil
}
