package signals

import (
	"os"
	"os/signal"
	"syscall"
)

// OnSignal invokes the given action once an interruption or termination signal is received.
// It does not block the caller.
func OnSignal(action func(sig os.Signal)) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		action(<-sigChan)
	}()
}
