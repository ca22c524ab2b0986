package keys

// Low-level keyboard hook message identifiers (wParam of the hook callback).
const (
	WMKeyDown    uintptr = 0x0100
	WMKeyUp      uintptr = 0x0101
	WMSysKeyDown uintptr = 0x0104
	WMSysKeyUp   uintptr = 0x0105
)

// Low-level mouse hook messages that move the caret or scroll the view.
const (
	WMLButtonDown   uintptr = 0x0201
	WMLButtonDblClk uintptr = 0x0203
	WMRButtonDown   uintptr = 0x0204
	WMRButtonDblClk uintptr = 0x0206
	WMMButtonDown   uintptr = 0x0207
	WMMButtonDblClk uintptr = 0x0209
	WMMouseWheel    uintptr = 0x020A
	WMMouseHWheel   uintptr = 0x020E
)

// KBDLLHOOKSTRUCT flag bits.
const (
	FlagExtended uint32 = 0x01
	FlagInjected uint32 = 0x10
)

// Event is one raw key transition as delivered by the low-level hook.
type Event struct {
	VK        uint32
	Scan      uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
	Down      bool
}

// Extended reports whether the key carries the extended-key flag
// (right Ctrl, right Alt, arrows on the main block, ...).
func (e Event) Extended() bool {
	return e.Flags&FlagExtended != 0
}

// Injected reports whether the event was synthesized (SendInput and friends).
func (e Event) Injected() bool {
	return e.Flags&FlagInjected != 0
}

// IsKeyMessage reports whether the hook message is one of the four key messages,
// and if so whether it is a key-down.
func IsKeyMessage(msg uintptr) (down bool, ok bool) {
	switch msg {
	case WMKeyDown, WMSysKeyDown:
		return true, true
	case WMKeyUp, WMSysKeyUp:
		return false, true
	}
	return false, false
}

// IsCaretMouseMessage reports whether a mouse hook message can move the caret:
// a button press, a double click or a wheel turn. Releases and moves cannot.
func IsCaretMouseMessage(msg uintptr) bool {
	switch msg {
	case WMLButtonDown, WMLButtonDblClk,
		WMRButtonDown, WMRButtonDblClk,
		WMMButtonDown, WMMButtonDblClk,
		WMMouseWheel, WMMouseHWheel:
		return true
	}
	return false
}
