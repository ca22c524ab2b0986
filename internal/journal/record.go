package journal

import (
	"unicode"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// KeyboardState is the live keyboard and window state RecordKeydown reads.
type KeyboardState interface {
	// Foreground identifies the window receiving input; 0 when there is none.
	Foreground() uintptr
	// Layout is the keyboard layout of the foreground window.
	Layout() layout.Tag
	// CtrlOrAltDown reports the asynchronous state of Ctrl and Alt.
	CtrlOrAltDown() bool
	// Translate decodes a key into the characters it types, taking the
	// asynchronous Shift state into account. Dead keys report false.
	Translate(vk, scan uint32) (string, bool)
}

type recordAction uint8

const (
	actNone recordAction = iota
	actClear
	actBackspace
	actPush
)

// RecordKeydown feeds one key press into the journal and returns the text it
// typed, if any. Injected events are ignored.
func (j *Journal) RecordKeydown(ev keys.Event, kb KeyboardState) (string, bool) {
	if ev.Injected() {
		return "", false
	}

	act := actNone
	var text string
	var tag layout.Tag

	switch {
	case keys.IsNavigation(ev.VK):
		act = actClear
	case ev.VK == keys.VKBack:
		act = actBackspace
	case ev.VK == keys.VKReturn:
		act, text, tag = actPush, "\n", kb.Layout()
	case ev.VK == keys.VKTab:
		act, text, tag = actPush, "\t", kb.Layout()
	}

	if kb.CtrlOrAltDown() {
		act, text = actClear, ""
	}

	if act == actNone {
		s, ok := kb.Translate(ev.VK, ev.Scan)
		if !ok || s == "" || hasControl(s) {
			return "", false
		}
		act, text, tag = actPush, s, kb.Layout()
	}

	fg := kb.Foreground()

	j.mu.Lock()
	defer j.mu.Unlock()

	j.invalidateLocked(fg)
	switch act {
	case actClear:
		j.clearLocked()
	case actBackspace:
		j.backspaceLocked()
	case actPush:
		if hasAlnum(text) {
			j.resetAutoconvertedLocked()
		}
		for _, r := range splitRuns(text, tag, Physical) {
			j.pushRunLocked(r)
		}
	}
	return text, text != ""
}

func (j *Journal) backspaceLocked() {
	n := len(j.runs)
	if n == 0 {
		return
	}
	j.gen++
	rs := []rune(j.runs[n-1].Text)
	if len(rs) <= 1 {
		j.runs = j.runs[:n-1]
	} else {
		j.runs[n-1].Text = string(rs[:len(rs)-1])
	}
	j.totalChars--
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
