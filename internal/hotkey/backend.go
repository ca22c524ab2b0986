package hotkey

import (
	"errors"

	"github.com/TanaroSch/layout-switcher/internal/config"
)

var (
	// ErrBackendNotAvailable is returned when a backend cannot be used on the current system.
	ErrBackendNotAvailable = errors.New("backend not available on this system")
	// ErrModifiersOnly is returned for hotkeys without a key; RegisterHotKey cannot express them.
	ErrModifiersOnly = errors.New("modifiers-only hotkeys need the keyboard hook")
)

// Backend registers single-chord hotkeys with the OS. It is the fallback used
// when the low-level keyboard hook is unavailable, so only legacy hotkeys
// (one chord, generic modifiers) can be expressed.
type Backend interface {
	// Register binds a legacy hotkey to an action.
	Register(action config.Action, hk config.Hotkey) (RegisteredHotkey, error)

	// Unregister removes the hotkey bound to action.
	Unregister(action config.Action) error

	// UnregisterAll removes all hotkeys registered by this backend.
	UnregisterAll() error

	// Name returns a human-readable name for this backend (for logging).
	Name() string

	// IsAvailable returns true if this backend can be used on the current system.
	IsAvailable() bool
}

// RegisteredHotkey represents a registered hotkey and provides a channel
// that receives events when the hotkey is pressed.
type RegisteredHotkey interface {
	// Keydown returns a channel that receives events when the key is pressed.
	Keydown() <-chan struct{}

	// Close cleans up resources associated with this hotkey.
	// After calling Close, the Keydown channel should not be used.
	Close() error
}
