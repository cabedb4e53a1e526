// Winkeeper shows a single window and reopens it where it was last closed.
//
// The window position is saved to config.yaml in the per-user config
// directory when the window is closed.
package main

import (
	"fmt"
	"os"

	"golang.design/x/hotkey/mainthread"

	"winkeeper/internal/app"
	"winkeeper/internal/logger"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Infow("starting", "version", Version)

	// The tray and the window need the main thread on macOS.
	mainthread.Init(func() { run(log) })
}

func run(log *logger.Logger) {
	application, err := app.New(log)
	if err != nil {
		app.FatalStartup(log, err)
		return
	}
	defer application.Close()

	application.Run()
	log.Infow("stopped")
}
