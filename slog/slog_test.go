package slog_test

import (
	"bytes"
	"log/slog"
)

// newLogger returns a debug-level text logger writing to a buffer.
func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
