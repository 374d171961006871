// Package rtest provides small test assertion helpers shared across this
// module's package tests, in the style of restic's internal/test package.
package rtest

import (
	"fmt"
	"reflect"
	"runtime"
	"testing"
)

// Assert fails the test with a formatted message if condition is false.
func Assert(tb testing.TB, condition bool, format string, args ...interface{}) {
	tb.Helper()
	if !condition {
		tb.Fatalf(format, args...)
	}
}

// OK fails the test if err is non-nil.
func OK(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d: unexpected error: %s", file, line, err)
	}
}

// Equals fails the test if got and want are not deeply equal.
func Equals(tb testing.TB, want, got interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(want, got) {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d:\n\twant: %s\n\tgot:  %s", file, line, fmt.Sprintf("%#v", want), fmt.Sprintf("%#v", got))
	}
}
