// Luminary drives coordinated colour shows across networked lights.
//
// The serve command runs the show engine with its HTTP API, publishing
// colour commands over MQTT. The remaining commands inspect the show
// catalogue and the database without starting the engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the command tree with a context cancelled on SIGINT or
// SIGTERM, releasing the MIDI driver on return.
func execute() error {
	defer midi.CloseDriver()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newRootCmd().ExecuteContext(ctx)
}
