package hotkey

import (
	"fmt"
	"strings"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/keys"
)

// osKeyName is set on platforms that can ask the OS for a key's name.
var osKeyName func(vk uint32) (string, bool)

var fallbackKeyNames = map[uint32]string{
	keys.VKBack:    "Backspace",
	keys.VKTab:     "Tab",
	keys.VKReturn:  "Enter",
	keys.VKCapital: "Caps Lock",
	keys.VKEscape:  "Esc",
	keys.VKSpace:   "Space",
	keys.VKPrior:   "Page Up",
	keys.VKNext:    "Page Down",
	keys.VKEnd:     "End",
	keys.VKHome:    "Home",
	keys.VKLeft:    "Left",
	keys.VKUp:      "Up",
	keys.VKRight:   "Right",
	keys.VKDown:    "Down",
	keys.VKInsert:  "Insert",
	keys.VKDelete:  "Delete",
	keys.VKPause:   "Pause",
}

// KeyName returns a display name for a virtual key.
func KeyName(vk uint32) string {
	if (vk >= 'A' && vk <= 'Z') || (vk >= '0' && vk <= '9') {
		return string(rune(vk))
	}
	if osKeyName != nil {
		if name, ok := osKeyName(vk); ok {
			return name
		}
	}
	if vk >= keys.VKF1 && vk <= keys.VKF24 {
		return fmt.Sprintf("F%d", vk-keys.VKF1+1)
	}
	if name, ok := fallbackKeyNames[vk]; ok {
		return name
	}
	return fmt.Sprintf("VK 0x%02X", vk)
}

var sidedNames = []struct {
	bit  uint32
	name string
}{
	{keys.ModVKLCtrl, "LCtrl"},
	{keys.ModVKRCtrl, "RCtrl"},
	{keys.ModVKLAlt, "LAlt"},
	{keys.ModVKRAlt, "RAlt"},
	{keys.ModVKLShift, "LShift"},
	{keys.ModVKRShift, "RShift"},
	{keys.ModVKLWin, "LWin"},
	{keys.ModVKRWin, "RWin"},
}

var genericNames = []struct {
	bit  uint32
	name string
}{
	{keys.ModControl, "Ctrl"},
	{keys.ModAlt, "Alt"},
	{keys.ModShift, "Shift"},
	{keys.ModWin, "Win"},
}

// FormatChord renders a chord as "Ctrl + Shift + K" or "LShift".
func FormatChord(c config.Chord) string {
	var parts []string
	if c.ModsVKs != 0 {
		for _, m := range sidedNames {
			if c.ModsVKs&m.bit != 0 {
				parts = append(parts, m.name)
			}
		}
	} else {
		for _, m := range genericNames {
			if c.Mods&m.bit != 0 {
				parts = append(parts, m.name)
			}
		}
	}
	if vk, ok := c.Key(); ok {
		parts = append(parts, KeyName(vk))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, " + ")
}

// FormatSequence renders "LShift; LShift". A nil sequence is "None".
func FormatSequence(s *config.Sequence) string {
	if s == nil {
		return "None"
	}
	out := FormatChord(s.First)
	if s.Second != nil {
		out += "; " + FormatChord(*s.Second)
	}
	return out
}

// FormatHotkey renders a legacy hotkey.
func FormatHotkey(h *config.Hotkey) string {
	if h == nil {
		return "None"
	}
	return FormatChord(h.Chord())
}
