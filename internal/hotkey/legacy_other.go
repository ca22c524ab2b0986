//go:build !windows && !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

// legacyModifiers is not implemented on this OS.
// The project primarily targets Windows and Linux.
func legacyModifiers(mods uint32) ([]hotkey.Modifier, error) {
	return nil, fmt.Errorf("hotkeys are not supported on this OS")
}

func legacyKey(vk uint32) (hotkey.Key, error) {
	return 0, fmt.Errorf("hotkeys are not supported on this OS")
}

func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{modifiers}
}
