package hotkey

import "github.com/TanaroSch/layout-switcher/internal/config"

// LiveCapture turns the live key stream into chords for the matcher.
// A non-modifier press yields a chord at once. A modifier press only yields
// a chord when every modifier has been released without a non-modifier key in
// between, so Shift tapped alone is distinguishable from Shift+A.
type LiveCapture struct {
	PendingMods    uint32
	PendingModsVKs uint32
	PendingValid   bool
	SawNonMod      bool
}

// OnKey handles one key event. mods and modsVKs are the masks after the event
// was applied. ok is false when the event produces no chord.
func (l *LiveCapture) OnKey(vk uint32, down, isModifier bool, mods, modsVKs uint32) (config.Chord, bool) {
	if down {
		if isModifier {
			l.PendingMods = mods
			l.PendingModsVKs = modsVKs
			l.PendingValid = true
			l.SawNonMod = false
			return config.Chord{}, false
		}
		l.SawNonMod = true
		l.PendingValid = false
		return config.KeyChord(mods, modsVKs, vk), true
	}

	if !isModifier || !l.PendingValid || l.SawNonMod || mods != 0 {
		return config.Chord{}, false
	}
	chord := config.ModsChord(l.PendingMods, l.PendingModsVKs)
	*l = LiveCapture{}
	return chord, true
}

// Reset drops any pending modifier snapshot.
func (l *LiveCapture) Reset() { *l = LiveCapture{} }
