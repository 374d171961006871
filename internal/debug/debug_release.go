//go:build !debug

package debug

func log(format string, args ...interface{}) {
	_ = format
	_ = args
}
