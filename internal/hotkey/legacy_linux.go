//go:build linux

package hotkey

import (
	"fmt"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"golang.design/x/hotkey"
)

// legacyModifiers converts MOD_* bits into X11 modifiers.
//
// Linux implementation notes (X11):
// - Alt is typically Mod1
// - Super/Win is typically Mod4
func legacyModifiers(mods uint32) ([]hotkey.Modifier, error) {
	var modifiers []hotkey.Modifier
	if mods&keys.ModControl != 0 {
		modifiers = append(modifiers, hotkey.ModCtrl)
	}
	if mods&keys.ModAlt != 0 {
		modifiers = append(modifiers, hotkey.Mod1)
	}
	if mods&keys.ModShift != 0 {
		modifiers = append(modifiers, hotkey.ModShift)
	}
	if mods&keys.ModWin != 0 {
		modifiers = append(modifiers, hotkey.Mod4)
	}
	if rest := mods &^ (keys.ModControl | keys.ModAlt | keys.ModShift | keys.ModWin); rest != 0 {
		return nil, fmt.Errorf("unsupported modifier bits: %#x", rest)
	}
	return modifiers, nil
}

func legacyKey(vk uint32) (hotkey.Key, error) {
	key, ok := KeyMap[vk]
	if !ok {
		return 0, fmt.Errorf("unsupported key: %#x", vk)
	}
	return key, nil
}
