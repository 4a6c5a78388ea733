//go:build windows

package util

import (
	"os"
)

// ShutdownSignals returns the signals to listen for graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal attempts graceful process termination.
// On Windows SIGINT is not supported, so the caller's shutdown timeout and
// context cancel do the actual work. Return nil to avoid adding errors to
// the shutdown sequence.
func GracefulSignal(p *os.Process) error {
	return nil
}
