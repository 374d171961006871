package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/zxcat/rustic/internal/errors"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

func main() {
	err := cmdRoot.Execute()

	switch {
	case errors.IsFatal(err):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
