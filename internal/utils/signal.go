package utils

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SetupSignalHandling sets up signal handling for graceful shutdown.
// The first SIGINT/SIGTERM flips the shutdown flag and runs the
// callback so in-flight work can wind down and state gets flushed; a
// second signal exits immediately.
func SetupSignalHandling(shutdownRequested *int32, onShutdown func()) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\n⚠️ Received signal %v, shutting down...\n", sig)
		atomic.StoreInt32(shutdownRequested, 1)

		if onShutdown != nil {
			onShutdown()
		}

		sig = <-sigCh
		fmt.Printf("\n⚠️ Received signal %v again, forcing exit\n", sig)
		os.Exit(1)
	}()
}
