// Package inject types text and keys into the foreground window and switches
// its keyboard layout.
package inject

import (
	"errors"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// MaxTaps caps a single burst of repeated key presses.
const MaxTaps = 4096

// InjectedMarker is written to the extra-info field of every synthetic key
// event so the hook can recognise its own output.
const InjectedMarker uintptr = 0x4C53574B

var (
	// ErrInjectFailed is returned when the OS accepted fewer events than sent.
	ErrInjectFailed = errors.New("key injection failed")
	// ErrUnsupported is returned when no injection method exists on this system.
	ErrUnsupported = errors.New("injection not supported on this system")
)

// Injector sends synthetic input to the foreground window. Every method is
// best effort and reports failure; callers roll back their own state.
type Injector interface {
	// SendChord presses vk with the MOD_* modifiers held.
	SendChord(mods uint32, vk uint32) error
	// SendText types text as Unicode characters, independent of the layout.
	SendText(text string) error
	// Tap presses and releases vk count times.
	Tap(vk uint32, count int) error
	// Reselect extends the selection left by units UTF-16 code units.
	Reselect(units int) error
}

// LayoutSwitcher reads and changes the foreground window's keyboard layout.
type LayoutSwitcher interface {
	// SwitchLayout activates the next installed layout.
	SwitchLayout() error
	// ForegroundLayout returns the layout of the foreground window.
	ForegroundLayout() layout.Tag
	// WaitShiftReleased polls until both Shift keys are up or timeout passes.
	WaitShiftReleased(timeout time.Duration) bool
}

// ClampTaps limits n to [0, MaxTaps].
func ClampTaps(n int) int {
	switch {
	case n < 0:
		return 0
	case n > MaxTaps:
		return MaxTaps
	}
	return n
}
