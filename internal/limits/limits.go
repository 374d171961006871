// Package limits parses the `--max-repack` and `--max-unused` grammar
// into resolver functions the decision engine
// calls once the relevant basis (total or used bytes) is known.
package limits

import (
	"math"
	"strconv"
	"strings"

	"github.com/zxcat/rustic/internal/errors"
)

// Limit resolves a configured budget against a basis (total bytes for
// max-repack, used bytes for max-unused) to a concrete byte ceiling.
type Limit func(basis uint64) uint64

// Unlimited never constrains anything.
func Unlimited(uint64) uint64 { return math.MaxUint64 }

// ParseRepackLimit parses --max-repack's grammar: a plain byte size, a
// straightforward percentage of total repository size, or "unlimited".
func ParseRepackLimit(s string) (Limit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Errorf("invalid value for --max-repack: %q", s)
	}

	switch {
	case s == "unlimited":
		return Unlimited, nil

	case strings.HasSuffix(s, "%"):
		p, err := parsePercentage(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid percentage %q for --max-repack", s)
		}
		return func(total uint64) uint64 {
			return uint64(p / 100 * float64(total))
		}, nil

	default:
		size, err := ParseSize(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid size %q for --max-repack", s)
		}
		return func(uint64) uint64 { return size }, nil
	}
}

// ParseUnusedLimit parses --max-unused's grammar. A percentage p targets a
// post-prune unused/used ratio of p/(100-p), i.e. unused ≤ p% of total.
func ParseUnusedLimit(s string) (Limit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Errorf("invalid value for --max-unused: %q", s)
	}

	switch {
	case s == "unlimited":
		return Unlimited, nil

	case strings.HasSuffix(s, "%"):
		p, err := parsePercentage(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid percentage %q for --max-unused", s)
		}
		if p >= 100 {
			return nil, errors.Fatal("percentage for --max-unused must be below 100%")
		}
		return func(used uint64) uint64 {
			return uint64(p / (100 - p) * float64(used))
		}, nil

	default:
		size, err := ParseSize(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid size %q for --max-unused", s)
		}
		return func(uint64) uint64 { return size }, nil
	}
}

func parsePercentage(s string) (float64, error) {
	s = strings.TrimSuffix(s, "%")
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if p < 0 {
		return 0, errors.Fatal("percentage must be positive")
	}
	return p, nil
}

var sizeSuffixes = []struct {
	suffix     string
	multiplier uint64
}{
	{"tib", 1 << 40}, {"gib", 1 << 30}, {"mib", 1 << 20}, {"kib", 1 << 10},
	{"tb", 1000 * 1000 * 1000 * 1000}, {"gb", 1000 * 1000 * 1000}, {"mb", 1000 * 1000}, {"kb", 1000},
	{"t", 1000 * 1000 * 1000 * 1000}, {"g", 1000 * 1000 * 1000}, {"m", 1000 * 1000}, {"k", 1000},
	{"b", 1},
}

// ParseSize parses a human-readable byte size such as "5b", "2 kB", "3M" or
// "4TiB".
func ParseSize(s string) (uint64, error) {
	orig := s
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))

	for _, suf := range sizeSuffixes {
		if strings.HasSuffix(s, suf.suffix) {
			numPart := strings.TrimSuffix(s, suf.suffix)
			if numPart == "" {
				return 0, errors.Errorf("invalid size %q", orig)
			}
			f, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, errors.Errorf("invalid size %q", orig)
			}
			if f < 0 {
				return 0, errors.Errorf("size %q must not be negative", orig)
			}
			return uint64(f * float64(suf.multiplier)), nil
		}
	}

	// no recognized suffix: plain integer byte count
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid size %q", orig)
	}
	return n, nil
}
