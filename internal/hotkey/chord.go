package hotkey

import "github.com/TanaroSch/layout-switcher/internal/config"

// Matches reports whether a live chord satisfies a configured one.
// Generic modifiers and the key must be equal; the left/right mask is only
// compared when the template sets one.
func Matches(template, live config.Chord) bool {
	if template.Mods != live.Mods {
		return false
	}
	tvk, tok := template.Key()
	lvk, lok := live.Key()
	if tok != lok || tvk != lvk {
		return false
	}
	if template.ModsVKs == 0 {
		return true
	}
	return template.ModsVKs == live.ModsVKs
}

// ChordFromState builds the chord for a key pressed with the given masks.
// Modifier keys produce a modifiers-only chord.
func ChordFromState(vk uint32, isModifier bool, mods, modsVKs uint32) config.Chord {
	if isModifier {
		return config.ModsChord(mods, modsVKs)
	}
	return config.KeyChord(mods, modsVKs, vk)
}
