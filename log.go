package vgrid

import (
	"log/slog"
	"os"
)

// gridLogLevel controls engine log verbosity.
// Set VGRID_DEBUG=1 to enable debug output.
var gridLogLevel = new(slog.LevelVar)

func init() {
	if os.Getenv("VGRID_DEBUG") != "" {
		gridLogLevel.Set(slog.LevelDebug)
	} else {
		gridLogLevel.Set(slog.LevelInfo)
	}
}

// gridLogger is the logger for engine diagnostics.
var gridLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: gridLogLevel}))
