//go:build windows

package inject

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf16"
	"unsafe"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procSendInput                = user32.NewProc("SendInput")
	procKeybdEvent               = user32.NewProc("keybd_event")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procGetKeyboardLayoutList    = user32.NewProc("GetKeyboardLayoutList")
	procPostMessageW             = user32.NewProc("PostMessageW")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
)

const (
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
	keyeventfUnicode     = 0x0004

	wmInputLangChangeRequest = 0x0050
)

// keyboardInput mirrors INPUT with the KEYBDINPUT arm of the union. The
// padding brings it to the size of the largest arm (MOUSEINPUT).
type keyboardInput struct {
	Type uint32
	Ki   struct {
		WVk         uint16
		WScan       uint16
		DwFlags     uint32
		Time        uint32
		DwExtraInfo uintptr
		Padding     [8]byte
	}
}

// System injects through SendInput and switches layouts with
// WM_INPUTLANGCHANGEREQUEST.
type System struct{}

// New returns the Windows injector.
func New() *System { return &System{} }

func isExtendedVK(vk uint32) bool {
	switch vk {
	case keys.VKLeft, keys.VKRight, keys.VKUp, keys.VKDown,
		keys.VKHome, keys.VKEnd, keys.VKPrior, keys.VKNext,
		keys.VKInsert, keys.VKDelete, keys.VKRControl, keys.VKRMenu,
		keys.VKLWin, keys.VKRWin:
		return true
	}
	return false
}

func vkInput(vk uint32, up bool) keyboardInput {
	var in keyboardInput
	in.Type = inputKeyboard
	in.Ki.WVk = uint16(vk)
	in.Ki.DwExtraInfo = InjectedMarker
	if isExtendedVK(vk) {
		in.Ki.DwFlags |= keyeventfExtendedKey
	}
	if up {
		in.Ki.DwFlags |= keyeventfKeyUp
	}
	return in
}

func unicodeInput(unit uint16, up bool) keyboardInput {
	var in keyboardInput
	in.Type = inputKeyboard
	in.Ki.WScan = unit
	in.Ki.DwFlags = keyeventfUnicode
	in.Ki.DwExtraInfo = InjectedMarker
	if up {
		in.Ki.DwFlags |= keyeventfKeyUp
	}
	return in
}

func sendInputs(inputs []keyboardInput) error {
	if len(inputs) == 0 {
		return nil
	}
	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret != uintptr(len(inputs)) {
		return fmt.Errorf("%w: sent %d of %d inputs: %v", ErrInjectFailed, ret, len(inputs), err)
	}
	return nil
}

var modifierKeys = []struct {
	bit uint32
	vk  uint32
}{
	{keys.ModControl, keys.VKControl},
	{keys.ModAlt, keys.VKMenu},
	{keys.ModShift, keys.VKShift},
	{keys.ModWin, keys.VKLWin},
}

func chordInputs(mods, vk uint32) []keyboardInput {
	var held []uint32
	for _, m := range modifierKeys {
		if mods&m.bit != 0 {
			held = append(held, m.vk)
		}
	}
	inputs := make([]keyboardInput, 0, 2*len(held)+2)
	for _, m := range held {
		inputs = append(inputs, vkInput(m, false))
	}
	inputs = append(inputs, vkInput(vk, false), vkInput(vk, true))
	for i := len(held) - 1; i >= 0; i-- {
		inputs = append(inputs, vkInput(held[i], true))
	}
	return inputs
}

// SendChord presses vk with mods held. When SendInput is blocked it retries
// with keybd_event.
func (s *System) SendChord(mods uint32, vk uint32) error {
	inputs := chordInputs(mods, vk)
	err := sendInputs(inputs)
	if err == nil {
		return nil
	}
	slog.Debug("[inject] SendInput failed, falling back to keybd_event", "error", err)
	for _, in := range inputs {
		procKeybdEvent.Call(uintptr(in.Ki.WVk), 0, uintptr(in.Ki.DwFlags), InjectedMarker)
	}
	return nil
}

// SendText types text as KEYEVENTF_UNICODE events, one pair per UTF-16 unit.
func (s *System) SendText(text string) error {
	units := utf16.Encode([]rune(text))
	inputs := make([]keyboardInput, 0, 2*len(units))
	for _, u := range units {
		inputs = append(inputs, unicodeInput(u, false), unicodeInput(u, true))
	}
	return sendInputs(inputs)
}

// Tap presses and releases vk count times in one batch.
func (s *System) Tap(vk uint32, count int) error {
	count = ClampTaps(count)
	inputs := make([]keyboardInput, 0, 2*count)
	for range count {
		inputs = append(inputs, vkInput(vk, false), vkInput(vk, true))
	}
	return sendInputs(inputs)
}

// Reselect holds Shift and presses Left units times.
func (s *System) Reselect(units int) error {
	units = ClampTaps(units)
	if units == 0 {
		return nil
	}
	inputs := make([]keyboardInput, 0, 2*units+2)
	inputs = append(inputs, vkInput(keys.VKShift, false))
	for range units {
		inputs = append(inputs, vkInput(keys.VKLeft, false), vkInput(keys.VKLeft, true))
	}
	inputs = append(inputs, vkInput(keys.VKShift, true))
	return sendInputs(inputs)
}

func foregroundHKL() (hwnd, hkl uintptr) {
	hwnd, _, _ = procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, 0
	}
	tid, _, _ := procGetWindowThreadProcessID.Call(hwnd, 0)
	hkl, _, _ = procGetKeyboardLayout.Call(tid)
	return hwnd, hkl
}

// ForegroundLayout reads the layout of the thread owning the foreground window.
func (s *System) ForegroundLayout() layout.Tag {
	_, hkl := foregroundHKL()
	return layout.TagFromHKL(hkl)
}

func installedLayouts() []uintptr {
	n, _, _ := procGetKeyboardLayoutList.Call(0, 0)
	if n == 0 {
		return nil
	}
	list := make([]uintptr, n)
	n, _, _ = procGetKeyboardLayoutList.Call(n, uintptr(unsafe.Pointer(&list[0])))
	return list[:n]
}

// SwitchLayout asks the foreground window to activate the next layout.
func (s *System) SwitchLayout() error {
	hwnd, hkl := foregroundHKL()
	if hwnd == 0 {
		return fmt.Errorf("switch layout: no foreground window")
	}
	next, ok := nextLayout(hkl, installedLayouts())
	if !ok {
		return fmt.Errorf("switch layout: no keyboard layouts installed")
	}
	ret, _, err := procPostMessageW.Call(hwnd, wmInputLangChangeRequest, 0, next)
	if ret == 0 {
		return fmt.Errorf("switch layout: PostMessage: %w", err)
	}
	slog.Debug("[inject] layout switch requested", "from", layout.TagFromHKL(hkl).String(), "to", layout.TagFromHKL(next).String())
	return nil
}

// WaitShiftReleased polls the async Shift state every 10 ms.
func (s *System) WaitShiftReleased(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		st, _, _ := procGetAsyncKeyState.Call(uintptr(keys.VKShift))
		if st&0x8000 == 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
}
