//go:build windows

package hotkey

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procMapVirtualKeyW  = user32.NewProc("MapVirtualKeyW")
	procGetKeyNameTextW = user32.NewProc("GetKeyNameTextW")
)

const mapvkVKToVSC = 0

func init() {
	osKeyName = keyNameText
}

func keyNameText(vk uint32) (string, bool) {
	sc, _, _ := procMapVirtualKeyW.Call(uintptr(vk), mapvkVKToVSC)
	if sc == 0 {
		return "", false
	}
	var buf [64]uint16
	n, _, _ := procGetKeyNameTextW.Call(sc<<16, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if int32(n) <= 0 {
		return "", false
	}
	return windows.UTF16ToString(buf[:n]), true
}
