package util

import (
	"io"
	"log/slog"
)

// SafeCloseFunc returns a closure that closes c and logs any error.
// Intended for defer: `defer util.SafeCloseFunc(f, "log file")()`.
func SafeCloseFunc(c io.Closer, name string) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close", "resource", name, "error", err)
		}
	}
}
