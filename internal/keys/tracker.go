package keys

import "sync/atomic"

// Tracker keeps the live set of pressed modifiers.
//
// Only the hook thread writes to it; the masks are atomics so readers on other
// goroutines (status queries, tests) never observe a torn value.
type Tracker struct {
	mods    atomic.Uint32
	modsVKs atomic.Uint32
}

// Update applies one key transition. Non-modifier keys are ignored.
// It reports whether vk is a modifier.
func (t *Tracker) Update(vk uint32, down bool) bool {
	bit := ModBit(vk)
	if bit == 0 {
		return false
	}
	vkBit := ModVKBit(vk)

	if down {
		t.mods.Or(bit)
		t.modsVKs.Or(vkBit)
		return true
	}

	t.modsVKs.And(^vkBit)
	// The generic bit stays set while the other side is still held.
	if t.modsVKs.Load()&pairMask(bit) == 0 {
		t.mods.And(^bit)
	}
	return true
}

// Mods returns the generic modifier mask.
func (t *Tracker) Mods() uint32 { return t.mods.Load() }

// ModsVKs returns the left/right modifier mask.
func (t *Tracker) ModsVKs() uint32 { return t.modsVKs.Load() }

// Reset clears both masks.
func (t *Tracker) Reset() {
	t.mods.Store(0)
	t.modsVKs.Store(0)
}

func pairMask(modBit uint32) uint32 {
	switch modBit {
	case ModControl:
		return ModVKLCtrl | ModVKRCtrl
	case ModShift:
		return ModVKLShift | ModVKRShift
	case ModAlt:
		return ModVKLAlt | ModVKRAlt
	case ModWin:
		return ModVKLWin | ModVKRWin
	}
	return 0
}
