//go:build windows

package ui

import "log/slog"

// OpenFileInDefaultApp opens filePath with its registered application.
func OpenFileInDefaultApp(filePath string) error {
	err := ShellExecute(0, "open", filePath, "", "", swShowNormal)
	if err != nil {
		slog.Warn("[ui] ShellExecuteW failed", "path", filePath, "error", err)
	}
	return err
}
