package keys

// Virtual-key codes used by the hook, the journal and the injector.
const (
	VKBack     uint32 = 0x08
	VKTab      uint32 = 0x09
	VKReturn   uint32 = 0x0D
	VKShift    uint32 = 0x10
	VKControl  uint32 = 0x11
	VKMenu     uint32 = 0x12
	VKPause    uint32 = 0x13
	VKCapital  uint32 = 0x14
	VKEscape   uint32 = 0x1B
	VKSpace    uint32 = 0x20
	VKPrior    uint32 = 0x21
	VKNext     uint32 = 0x22
	VKEnd      uint32 = 0x23
	VKHome     uint32 = 0x24
	VKLeft     uint32 = 0x25
	VKUp       uint32 = 0x26
	VKRight    uint32 = 0x27
	VKDown     uint32 = 0x28
	VKInsert   uint32 = 0x2D
	VKDelete   uint32 = 0x2E
	VKC        uint32 = 0x43
	VKLWin     uint32 = 0x5B
	VKRWin     uint32 = 0x5C
	VKF1       uint32 = 0x70
	VKF24      uint32 = 0x87
	VKLShift   uint32 = 0xA0
	VKRShift   uint32 = 0xA1
	VKLControl uint32 = 0xA2
	VKRControl uint32 = 0xA3
	VKLMenu    uint32 = 0xA4
	VKRMenu    uint32 = 0xA5
)

// Generic modifier bits, identical to the RegisterHotKey MOD_* values.
const (
	ModAlt     uint32 = 0x1
	ModControl uint32 = 0x2
	ModShift   uint32 = 0x4
	ModWin     uint32 = 0x8
)

// Left/right specific modifier bits.
const (
	ModVKLCtrl  uint32 = 1 << 0
	ModVKRCtrl  uint32 = 1 << 1
	ModVKLShift uint32 = 1 << 2
	ModVKRShift uint32 = 1 << 3
	ModVKLAlt   uint32 = 1 << 4
	ModVKRAlt   uint32 = 1 << 5
	ModVKLWin   uint32 = 1 << 6
	ModVKRWin   uint32 = 1 << 7
)

// ModBit returns the generic modifier bit for a normalized modifier key, or 0.
func ModBit(vk uint32) uint32 {
	switch vk {
	case VKLControl, VKRControl:
		return ModControl
	case VKLShift, VKRShift:
		return ModShift
	case VKLMenu, VKRMenu:
		return ModAlt
	case VKLWin, VKRWin:
		return ModWin
	default:
		return 0
	}
}

// ModVKBit returns the left/right modifier bit for a normalized modifier key, or 0.
func ModVKBit(vk uint32) uint32 {
	switch vk {
	case VKLControl:
		return ModVKLCtrl
	case VKRControl:
		return ModVKRCtrl
	case VKLShift:
		return ModVKLShift
	case VKRShift:
		return ModVKRShift
	case VKLMenu:
		return ModVKLAlt
	case VKRMenu:
		return ModVKRAlt
	case VKLWin:
		return ModVKLWin
	case VKRWin:
		return ModVKRWin
	default:
		return 0
	}
}

// IsModifier reports whether vk is a normalized (left/right) modifier key.
func IsModifier(vk uint32) bool {
	return ModBit(vk) != 0
}

// IsNavigation reports whether vk moves the caret or edits text outside of
// plain typing. Such keys invalidate the typed context.
func IsNavigation(vk uint32) bool {
	switch vk {
	case VKEscape, VKDelete, VKInsert,
		VKLeft, VKRight, VKUp, VKDown,
		VKHome, VKEnd, VKPrior, VKNext:
		return true
	}
	return false
}
