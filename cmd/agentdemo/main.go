// Command agentdemo is a minimal end-to-end wiring of a provider
// dispatcher, the reference tool set, and the agent loop: it runs one
// prompt and prints the event stream as it arrives.
package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func mustLogger(verbose bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
