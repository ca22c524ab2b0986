//go:build windows

package hotkey

import (
	"fmt"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"golang.design/x/hotkey"
)

// legacyModifiers converts MOD_* bits into golang.design/x/hotkey modifiers.
func legacyModifiers(mods uint32) ([]hotkey.Modifier, error) {
	var modifiers []hotkey.Modifier
	if mods&keys.ModControl != 0 {
		modifiers = append(modifiers, hotkey.ModCtrl)
	}
	if mods&keys.ModAlt != 0 {
		modifiers = append(modifiers, hotkey.ModAlt)
	}
	if mods&keys.ModShift != 0 {
		modifiers = append(modifiers, hotkey.ModShift)
	}
	if mods&keys.ModWin != 0 {
		modifiers = append(modifiers, hotkey.ModWin)
	}
	if rest := mods &^ (keys.ModControl | keys.ModAlt | keys.ModShift | keys.ModWin); rest != 0 {
		return nil, fmt.Errorf("unsupported modifier bits: %#x", rest)
	}
	return modifiers, nil
}

// legacyKey: on Windows hotkey.Key values are virtual-key codes.
func legacyKey(vk uint32) (hotkey.Key, error) {
	if vk == 0 || vk > 0xFE {
		return 0, fmt.Errorf("unsupported key: %#x", vk)
	}
	return hotkey.Key(vk), nil
}

func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{modifiers}
}
