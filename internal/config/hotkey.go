package config

// Chord is one key combination: a generic modifier mask, an optional
// left/right modifier mask and an optional non-modifier key.
//
// VK == nil means a modifiers-only chord (double Shift and the like).
// ModsVKs == 0 means the left/right distinction is ignored when matching.
type Chord struct {
	Mods    uint32  `json:"mods"`
	ModsVKs uint32  `json:"mods_vks"`
	VK      *uint32 `json:"vk"`
}

// KeyChord builds a chord with a non-modifier key.
func KeyChord(mods, modsVKs, vk uint32) Chord {
	return Chord{Mods: mods, ModsVKs: modsVKs, VK: &vk}
}

// ModsChord builds a modifiers-only chord.
func ModsChord(mods, modsVKs uint32) Chord {
	return Chord{Mods: mods, ModsVKs: modsVKs}
}

// Key returns the non-modifier key, if any.
func (c Chord) Key() (uint32, bool) {
	if c.VK == nil {
		return 0, false
	}
	return *c.VK, true
}

// Empty reports whether the chord carries neither modifiers nor a key.
func (c Chord) Empty() bool {
	return c.Mods == 0 && c.ModsVKs == 0 && c.VK == nil
}

// Equal is structural equality (not hotkey matching).
func (c Chord) Equal(o Chord) bool {
	if c.Mods != o.Mods || c.ModsVKs != o.ModsVKs {
		return false
	}
	a, aok := c.Key()
	b, bok := o.Key()
	return aok == bok && a == b
}

// Sequence is a one- or two-chord hotkey.
type Sequence struct {
	First    Chord  `json:"first"`
	Second   *Chord `json:"second"`
	MaxGapMs uint32 `json:"max_gap_ms"`
}

// Single builds a one-chord sequence.
func Single(c Chord, gapMs uint32) Sequence {
	return Sequence{First: c, MaxGapMs: gapMs}
}

// Pair builds a two-chord sequence.
func Pair(first, second Chord, gapMs uint32) Sequence {
	return Sequence{First: first, Second: &second, MaxGapMs: gapMs}
}

// Equal is structural equality, used for duplicate detection.
func (s Sequence) Equal(o Sequence) bool {
	if s.MaxGapMs != o.MaxGapMs || !s.First.Equal(o.First) {
		return false
	}
	if s.Second == nil || o.Second == nil {
		return s.Second == nil && o.Second == nil
	}
	return s.Second.Equal(*o.Second)
}

// Clone returns a deep copy.
func (s Sequence) Clone() Sequence {
	out := Sequence{First: s.First.clone(), MaxGapMs: s.MaxGapMs}
	if s.Second != nil {
		second := s.Second.clone()
		out.Second = &second
	}
	return out
}

func (c Chord) clone() Chord {
	out := c
	if c.VK != nil {
		vk := *c.VK
		out.VK = &vk
	}
	return out
}

// Hotkey is the older single-chord format, still accepted in config files and
// used by the RegisterHotKey fallback.
type Hotkey struct {
	VK   uint32 `json:"vk"`
	Mods uint32 `json:"mods"`
}

// Chord converts a legacy hotkey. A zero VK becomes a modifiers-only chord.
func (h Hotkey) Chord() Chord {
	if h.VK == 0 {
		return ModsChord(h.Mods, 0)
	}
	return KeyChord(h.Mods, 0, h.VK)
}
