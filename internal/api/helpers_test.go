package api

import (
	"io"
	"log/slog"
)

// testLogger returns a logger that discards output so handler tests stay
// quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
