// Package errors wraps github.com/pkg/errors and adds a Fatal marker for
// errors that must abort a prune run before any mutation is made.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// New, Wrap, Wrapf, WithMessage, Cause and Is are re-exported so callers
// never need to import github.com/pkg/errors directly.
var (
	New         = errors.New
	Errorf      = errors.Errorf
	Wrap        = errors.Wrap
	Wrapf       = errors.Wrapf
	WithMessage = errors.WithMessage
	Cause       = errors.Cause
	Is          = errors.Is
	As          = errors.As
)

// fatalError marks an error that must stop a prune run before any
// repository mutation happens: integrity failures, decoding failures and
// configuration errors.
type fatalError struct {
	msg string
}

func (e *fatalError) Error() string { return e.msg }

// Fatal builds a fatal error from a message.
func Fatal(msg string) error {
	return &fatalError{msg: msg}
}

// Fatalf builds a fatal error with a formatted message.
func Fatalf(format string, args ...interface{}) error {
	return &fatalError{msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err (or one of its wrapped causes) is fatal.
func IsFatal(err error) bool {
	for err != nil {
		if _, ok := err.(*fatalError); ok {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
