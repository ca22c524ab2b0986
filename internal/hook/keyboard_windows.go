//go:build windows

package hook

import (
	"unsafe"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
	"golang.org/x/sys/windows"
)

var (
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
	procGetKeyState              = user32.NewProc("GetKeyState")
	procToUnicodeEx              = user32.NewProc("ToUnicodeEx")
	procMapVirtualKeyW           = user32.NewProc("MapVirtualKeyW")
)

const (
	mapvkVSCToVKEx = 3
	// Keep the kernel dead-key state intact while translating.
	toUnicodeNoStateChange = 0x4
)

// ScanToVK resolves a scan code to a left/right specific virtual key.
func ScanToVK(scan uint32) uint32 {
	vk, _, _ := procMapVirtualKeyW.Call(uintptr(scan), mapvkVSCToVKEx)
	return uint32(vk)
}

// SystemKeyboard reads keyboard and window state from Win32.
type SystemKeyboard struct{}

// NewSystemKeyboard returns the Win32 keyboard state provider.
func NewSystemKeyboard() *SystemKeyboard { return &SystemKeyboard{} }

func asyncDown(vk uint32) bool {
	st, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return st&0x8000 != 0
}

// Foreground implements journal.KeyboardState.
func (SystemKeyboard) Foreground() uintptr {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return hwnd
}

func foregroundHKL() uintptr {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0
	}
	tid, _, _ := procGetWindowThreadProcessID.Call(hwnd, 0)
	hkl, _, _ := procGetKeyboardLayout.Call(tid)
	return hkl
}

// Layout implements journal.KeyboardState.
func (SystemKeyboard) Layout() layout.Tag {
	return layout.TagFromHKL(foregroundHKL())
}

// CtrlOrAltDown implements journal.KeyboardState.
func (SystemKeyboard) CtrlOrAltDown() bool {
	return asyncDown(keys.VKControl) || asyncDown(keys.VKMenu)
}

// Translate implements journal.KeyboardState with ToUnicodeEx in the
// foreground window's layout.
func (SystemKeyboard) Translate(vk, scan uint32) (string, bool) {
	var state [256]byte
	if asyncDown(keys.VKShift) {
		state[keys.VKShift] = 0x80
	}
	if caps, _, _ := procGetKeyState.Call(uintptr(keys.VKCapital)); caps&1 != 0 {
		state[keys.VKCapital] = 0x01
	}

	var buf [8]uint16
	n, _, _ := procToUnicodeEx.Call(
		uintptr(vk),
		uintptr(scan),
		uintptr(unsafe.Pointer(&state[0])),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		toUnicodeNoStateChange,
		foregroundHKL(),
	)
	if int32(n) <= 0 {
		return "", false
	}
	return windows.UTF16ToString(buf[:n]), true
}
