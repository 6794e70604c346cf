package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownContext returns a context canceled on SIGINT or SIGTERM. After the
// first signal the default behavior is restored, so a second one kills the
// process.
func ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
