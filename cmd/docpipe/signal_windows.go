//go:build windows

package main

import "os"

// Windows delivers Ctrl+C as os.Interrupt; SIGTERM is never sent.
var shutdownSignals = []os.Signal{os.Interrupt}
