// Deferred renderer sample comparing subpass and multi-pass G-buffer strategies.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/xlab/closer"

	"github.com/spaghettifunk/subpasses/cmd"
)

func main() {
	// SIGINT and SIGTERM are turned into a graceful quit by the run loop,
	// closer only takes over on hangups.
	closer.Init(closer.Config{
		ExitCodeOK:  0,
		ExitCodeErr: 1,
		ExitSignals: []os.Signal{syscall.SIGHUP},
	})
	defer closer.Close()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nPANIC: %v\n", r)
			fmt.Fprintf(os.Stderr, "\nStack trace:\n%s\n", debug.Stack())
			closer.Exit(1)
		}
	}()

	if err := cmd.Execute(); err != nil {
		closer.Exit(1)
	}
}
