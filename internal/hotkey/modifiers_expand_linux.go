//go:build linux

package hotkey

import (
	"slices"

	"golang.design/x/hotkey"
)

// XGrabKey matches the modifier state exactly, so a fallback binding such as
// Ctrl+Shift+K would stop firing whenever NumLock (Mod2) or CapsLock
// (LockMask) is on. Every combination of the two lock masks is grabbed.
const (
	x11LockMask hotkey.Modifier = 1 << 1
	x11NumLock                  = hotkey.Mod2
)

var x11LockStates = [][]hotkey.Modifier{
	nil,
	{x11NumLock},
	{x11LockMask},
	{x11NumLock, x11LockMask},
}

// expandModifiers returns the chord's own modifiers first, then each lock
// variant. Lock masks the chord already carries are not added twice.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	out := make([][]hotkey.Modifier, 0, len(x11LockStates))
	for _, locks := range x11LockStates {
		mods := slices.Clone(modifiers)
		for _, l := range locks {
			if !slices.Contains(mods, l) {
				mods = append(mods, l)
			}
		}
		if slices.ContainsFunc(out, func(prev []hotkey.Modifier) bool { return slices.Equal(prev, mods) }) {
			continue
		}
		out = append(out, mods)
	}
	return out
}
