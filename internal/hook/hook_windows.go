//go:build windows

package hook

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14
	hcAction     = 0
	wmQuit       = 0x0012
)

type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// The hook procedure has no user pointer, so the active dispatcher lives here.
var (
	current      atomic.Pointer[Dispatcher]
	callbackOnce sync.Once
	callbackPtr  uintptr
	mouseOnce    sync.Once
	mousePtr     uintptr
)

func hookCallback() uintptr {
	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(lowLevelKeyboardProc)
	})
	return callbackPtr
}

func mouseCallback() uintptr {
	mouseOnce.Do(func() {
		mousePtr = windows.NewCallback(lowLevelMouseProc)
	})
	return mousePtr
}

// lowLevelMouseProc never blocks input; it only invalidates the journal when
// the caret may have moved.
func lowLevelMouseProc(nCode int, wParam, lParam uintptr) (ret uintptr) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[hook] recovered from panic in mouse hook", "panic", r)
		}
		ret, _, _ = procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	}()

	if nCode == hcAction && keys.IsCaretMouseMessage(wParam) {
		if d := current.Load(); d != nil {
			d.OnMouseButton()
		}
	}
	return 0
}

func lowLevelKeyboardProc(nCode int, wParam, lParam uintptr) (ret uintptr) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[hook] recovered from panic in keyboard hook", "panic", r)
			ret, _, _ = procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		}
	}()

	if nCode == hcAction {
		if d := current.Load(); d != nil {
			if down, ok := keys.IsKeyMessage(wParam); ok {
				kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
				ev := keys.Event{
					VK:        kb.VkCode,
					Scan:      kb.ScanCode,
					Flags:     kb.Flags,
					Time:      kb.Time,
					ExtraInfo: kb.DwExtraInfo,
					Down:      down,
				}
				if d.OnKeyEvent(ev) == Swallow {
					return 1
				}
			}
		}
	}
	ret, _, _ = procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// Hook is an installed WH_KEYBOARD_LL hook, plus a WH_MOUSE_LL hook when
// available, running on its own locked thread.
type Hook struct {
	threadID uint32
	done     chan struct{}
	stopOnce sync.Once
}

// Install starts the hook thread and feeds every key event to d, and every
// click or wheel turn to d.OnMouseButton. The mouse hook is optional: when it
// cannot be installed the keyboard hook still runs. Only one hook is active at
// a time; installing again replaces the dispatcher.
func Install(d *Dispatcher) (*Hook, error) {
	h := &Hook{done: make(chan struct{})}
	errc := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(h.done)

		h.threadID = windows.GetCurrentThreadId()
		current.Store(d)
		handle, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback(), 0, 0)
		if handle == 0 {
			current.CompareAndSwap(d, nil)
			errc <- fmt.Errorf("SetWindowsHookExW: %w", err)
			return
		}
		mouse, _, mouseErr := procSetWindowsHookExW.Call(whMouseLL, mouseCallback(), 0, 0)
		if mouse == 0 {
			slog.Warn("[hook] mouse hook not installed, clicks will not reset the journal", "error", mouseErr)
		}
		d.Tracker().Reset()
		errc <- nil
		slog.Info("[hook] keyboard hook installed", "mouse", mouse != 0)

		var m msg
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
		}
		if mouse != 0 {
			procUnhookWindowsHookEx.Call(mouse)
		}
		procUnhookWindowsHookEx.Call(handle)
		current.CompareAndSwap(d, nil)
		slog.Info("[hook] keyboard hook removed")
	}()

	if err := <-errc; err != nil {
		return nil, err
	}
	return h, nil
}

// Stop ends the message loop and waits for the hook to be removed.
func (h *Hook) Stop() {
	h.stopOnce.Do(func() {
		procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
		<-h.done
	})
}
