// Package testutil holds small helpers shared by package tests.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// CaptureLogBuffer points the default slog logger at a buffer for the rest of
// the test and puts the previous logger back in t.Cleanup.
func CaptureLogBuffer(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() {
		slog.SetDefault(prev)
	})
	return &buf
}
