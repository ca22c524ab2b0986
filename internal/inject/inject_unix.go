//go:build !windows

package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// System drives xdotool (X11) and falls back to wtype (Wayland).
type System struct {
	run func(name string, args ...string) error
}

// New returns the command-line injector.
func New() *System {
	return &System{run: runCommand}
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// attempt runs each command in order and stops at the first success.
func (s *System) attempt(cmds ...[]string) error {
	var errs []error
	for _, c := range cmds {
		err := s.run(c[0], c[1:]...)
		if err == nil {
			return nil
		}
		slog.Debug("[inject] command failed (is it installed?)", "tool", c[0], "error", err)
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrInjectFailed, errors.Join(errs...))
}

var keysymNames = map[uint32]string{
	keys.VKBack:   "BackSpace",
	keys.VKTab:    "Tab",
	keys.VKReturn: "Return",
	keys.VKEscape: "Escape",
	keys.VKSpace:  "space",
	keys.VKPrior:  "Prior",
	keys.VKNext:   "Next",
	keys.VKEnd:    "End",
	keys.VKHome:   "Home",
	keys.VKLeft:   "Left",
	keys.VKUp:     "Up",
	keys.VKRight:  "Right",
	keys.VKDown:   "Down",
	keys.VKInsert: "Insert",
	keys.VKDelete: "Delete",
}

func keysym(vk uint32) (string, bool) {
	if (vk >= 'A' && vk <= 'Z') || (vk >= '0' && vk <= '9') {
		return strings.ToLower(string(rune(vk))), true
	}
	if vk >= keys.VKF1 && vk <= keys.VKF1+11 {
		return fmt.Sprintf("F%d", vk-keys.VKF1+1), true
	}
	name, ok := keysymNames[vk]
	return name, ok
}

var modifierNames = []struct {
	bit  uint32
	name string
}{
	{keys.ModControl, "ctrl"},
	{keys.ModAlt, "alt"},
	{keys.ModShift, "shift"},
	{keys.ModWin, "super"},
}

// SendChord presses vk with mods held.
func (s *System) SendChord(mods uint32, vk uint32) error {
	key, ok := keysym(vk)
	if !ok {
		return fmt.Errorf("send chord: no keysym for VK 0x%02X", vk)
	}
	combo := []string{}
	wt := []string{"wtype"}
	for _, m := range modifierNames {
		if mods&m.bit != 0 {
			combo = append(combo, m.name)
			wt = append(wt, "-M", m.name)
		}
	}
	combo = append(combo, key)
	wt = append(wt, "-k", key)
	for i := len(modifierNames) - 1; i >= 0; i-- {
		if mods&modifierNames[i].bit != 0 {
			wt = append(wt, "-m", modifierNames[i].name)
		}
	}
	return s.attempt(
		[]string{"xdotool", "key", "--clearmodifiers", strings.Join(combo, "+")},
		wt,
	)
}

// SendText types text literally.
func (s *System) SendText(text string) error {
	if text == "" {
		return nil
	}
	return s.attempt(
		[]string{"xdotool", "type", "--clearmodifiers", "--delay", "0", "--", text},
		[]string{"wtype", "--", text},
	)
}

// Tap presses and releases vk count times.
func (s *System) Tap(vk uint32, count int) error {
	count = ClampTaps(count)
	if count == 0 {
		return nil
	}
	key, ok := keysym(vk)
	if !ok {
		return fmt.Errorf("tap: no keysym for VK 0x%02X", vk)
	}
	wt := []string{"wtype"}
	for range count {
		wt = append(wt, "-k", key)
	}
	return s.attempt(
		[]string{"xdotool", "key", "--clearmodifiers", "--delay", "0", "--repeat", strconv.Itoa(count), key},
		wt,
	)
}

// Reselect extends the selection left by units characters.
func (s *System) Reselect(units int) error {
	units = ClampTaps(units)
	if units == 0 {
		return nil
	}
	wt := []string{"wtype", "-M", "shift"}
	for range units {
		wt = append(wt, "-k", "Left")
	}
	wt = append(wt, "-m", "shift")
	return s.attempt(
		[]string{"xdotool", "key", "--delay", "0", "--repeat", strconv.Itoa(units), "shift+Left"},
		wt,
	)
}

// ForegroundLayout is not observable through these tools.
func (s *System) ForegroundLayout() layout.Tag { return layout.TagUnknown }

// SwitchLayout cycles the XKB group with xkb-switch.
func (s *System) SwitchLayout() error {
	if err := s.run("xkb-switch", "--next"); err != nil {
		return fmt.Errorf("switch layout: %w", err)
	}
	return nil
}

// WaitShiftReleased cannot poll key state here and returns at once.
func (s *System) WaitShiftReleased(time.Duration) bool { return true }
