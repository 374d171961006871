//go:build debug

package debug

import (
	"fmt"
	"os"
)

func log(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "DEBUG: "+format+"\n", args...)
}
