package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridge/quarry/tlog"
	"go.uber.org/zap"
)

// stopSignals end a running command gracefully
var stopSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP}

// handleSignals returns nil once a stop signal arrives, which makes Tool
// cancel the main task
func handleSignals(ctx context.Context) error {
	received := make(chan os.Signal, 1)
	signal.Notify(received, stopSignals...)
	defer signal.Stop(received)

	select {
	case sig := <-received:
		tlog.Get(ctx).Info("Stopping on signal", zap.Stringer("signal", sig))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
