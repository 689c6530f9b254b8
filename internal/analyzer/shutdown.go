package analyzer

import (
	"context"
	"log"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on SIGTERM or SIGINT. The
// optional shutdown function runs once the context is cancelled; after it
// returns, signal delivery reverts to the default disposition so a second
// signal kills the process outright.
func SetupSignalHandler(shutdownFunc func(context.Context)) context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-ctx.Done()
		log.Printf("[Signal] Shutting down, finishing current match first (signal again to force exit)")
		if shutdownFunc != nil {
			shutdownFunc(ctx)
		}
		stop()
	}()

	return ctx
}
