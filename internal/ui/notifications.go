package ui

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// NotificationManager shows desktop notifications and presents queued errors.
type NotificationManager struct {
	enabled      atomic.Bool
	appName      string
	embeddedIcon []byte

	notify func(title, message string) error
	dialog func(title, text string) error
}

// NewNotificationManager creates a manager; useNotifications can be changed
// later with SetEnabled.
func NewNotificationManager(useNotifications bool, appName string, embeddedIcon []byte) *NotificationManager {
	n := &NotificationManager{
		appName:      appName,
		embeddedIcon: embeddedIcon,
		dialog:       ShowErrorDialog,
	}
	n.notify = n.platformNotify
	n.enabled.Store(useNotifications)
	return n
}

// SetEnabled follows the use_notifications setting.
func (n *NotificationManager) SetEnabled(on bool) { n.enabled.Store(on) }

// Enabled reports whether notifications are shown.
func (n *NotificationManager) Enabled() bool { return n.enabled.Load() }

// ShowNotification displays a desktop notification if enabled.
func (n *NotificationManager) ShowNotification(title, message string) {
	if !n.enabled.Load() {
		slog.Debug("[ui] notification suppressed", "title", title)
		return
	}
	if err := n.notify(title, message); err != nil {
		slog.Warn("[ui] notification failed", "title", title, "error", err)
	}
}

// Present shows a queued error: as a notification first, and as a modal
// dialog when notifications are off or fail.
func (n *NotificationManager) Present(e Error) error {
	slog.Warn("[ui] "+e.Title, "text", e.UserText, "detail", e.Detail)
	if n.enabled.Load() {
		err := n.notify(e.Title, e.UserText)
		if err == nil {
			return nil
		}
		slog.Debug("[ui] notification failed, falling back to dialog", "error", err)
	}
	if err := n.dialog(e.Title, e.UserText); err != nil {
		return fmt.Errorf("present %q: %w", e.Title, err)
	}
	return nil
}

// DrainAndPresent presents every queued error.
func (n *NotificationManager) DrainAndPresent(q *ErrorQueue) int {
	count := 0
	for {
		e, ok := q.Drain()
		if !ok {
			return count
		}
		if err := n.Present(e); err != nil {
			slog.Error("[ui] could not present error", "error", err)
		}
		count++
	}
}
