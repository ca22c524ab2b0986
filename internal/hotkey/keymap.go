package hotkey

import "golang.design/x/hotkey"

// KeyMap maps virtual-key codes to golang.design/x/hotkey keys for platforms
// whose key codes are not virtual-key codes.
var KeyMap = map[uint32]hotkey.Key{
	// Letters
	'A': hotkey.KeyA,
	'B': hotkey.KeyB,
	'C': hotkey.KeyC,
	'D': hotkey.KeyD,
	'E': hotkey.KeyE,
	'F': hotkey.KeyF,
	'G': hotkey.KeyG,
	'H': hotkey.KeyH,
	'I': hotkey.KeyI,
	'J': hotkey.KeyJ,
	'K': hotkey.KeyK,
	'L': hotkey.KeyL,
	'M': hotkey.KeyM,
	'N': hotkey.KeyN,
	'O': hotkey.KeyO,
	'P': hotkey.KeyP,
	'Q': hotkey.KeyQ,
	'R': hotkey.KeyR,
	'S': hotkey.KeyS,
	'T': hotkey.KeyT,
	'U': hotkey.KeyU,
	'V': hotkey.KeyV,
	'W': hotkey.KeyW,
	'X': hotkey.KeyX,
	'Y': hotkey.KeyY,
	'Z': hotkey.KeyZ,

	// Numbers
	'0': hotkey.Key0,
	'1': hotkey.Key1,
	'2': hotkey.Key2,
	'3': hotkey.Key3,
	'4': hotkey.Key4,
	'5': hotkey.Key5,
	'6': hotkey.Key6,
	'7': hotkey.Key7,
	'8': hotkey.Key8,
	'9': hotkey.Key9,

	// Function keys
	0x70: hotkey.KeyF1,
	0x71: hotkey.KeyF2,
	0x72: hotkey.KeyF3,
	0x73: hotkey.KeyF4,
	0x74: hotkey.KeyF5,
	0x75: hotkey.KeyF6,
	0x76: hotkey.KeyF7,
	0x77: hotkey.KeyF8,
	0x78: hotkey.KeyF9,
	0x79: hotkey.KeyF10,
	0x7A: hotkey.KeyF11,
	0x7B: hotkey.KeyF12,

	// Special keys
	0x20: hotkey.KeySpace,
	0x09: hotkey.KeyTab,
	0x0D: hotkey.KeyReturn,
	0x1B: hotkey.KeyEscape,
	0x2E: hotkey.KeyDelete,
	0x25: hotkey.KeyLeft,
	0x26: hotkey.KeyUp,
	0x27: hotkey.KeyRight,
	0x28: hotkey.KeyDown,
}
