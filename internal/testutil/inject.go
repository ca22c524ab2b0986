package testutil

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// ErrInjected is what FakeInjector returns for an operation listed in FailOn.
var ErrInjected = errors.New("fake injection failure")

// FakeInjector records injected input as readable lines:
//
//	chord 0x02+0x43
//	text "привет"
//	tap 0x08 x3
//	reselect 6
//	switch
//
// It implements both inject.Injector and inject.LayoutSwitcher.
type FakeInjector struct {
	mu  sync.Mutex
	ops []string

	// FailOn holds operation names ("chord", "text", "tap", "reselect",
	// "switch") that return ErrInjected.
	FailOn map[string]bool
	// Layout is what ForegroundLayout reports.
	Layout layout.Tag
	// ShiftHeld makes WaitShiftReleased time out.
	ShiftHeld bool
	// OnChord runs after a successful chord; clipboard tests use it to fake
	// the target application answering Ctrl+C.
	OnChord func(mods, vk uint32)
	// OnText runs when SendText is called, before any FailOn error; tests use
	// it to record a key from the user while a replacement is being typed.
	OnText func(text string)
}

func (f *FakeInjector) record(op, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailOn[op] {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	f.ops = append(f.ops, line)
	return nil
}

func (f *FakeInjector) SendChord(mods uint32, vk uint32) error {
	if err := f.record("chord", fmt.Sprintf("chord 0x%02X+0x%02X", mods, vk)); err != nil {
		return err
	}
	if f.OnChord != nil {
		f.OnChord(mods, vk)
	}
	return nil
}

func (f *FakeInjector) SendText(text string) error {
	if f.OnText != nil {
		f.OnText(text)
	}
	return f.record("text", fmt.Sprintf("text %q", text))
}

func (f *FakeInjector) Tap(vk uint32, count int) error {
	if count == 0 {
		return nil
	}
	return f.record("tap", fmt.Sprintf("tap 0x%02X x%d", vk, count))
}

func (f *FakeInjector) Reselect(units int) error {
	return f.record("reselect", fmt.Sprintf("reselect %d", units))
}

func (f *FakeInjector) SwitchLayout() error {
	if err := f.record("switch", "switch"); err != nil {
		return err
	}
	f.mu.Lock()
	f.Layout = f.Layout.Flip()
	f.mu.Unlock()
	return nil
}

func (f *FakeInjector) ForegroundLayout() layout.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Layout
}

func (f *FakeInjector) WaitShiftReleased(time.Duration) bool { return !f.ShiftHeld }

// Ops returns the recorded operations.
func (f *FakeInjector) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

// Transcript joins Ops with newlines for compact comparisons.
func (f *FakeInjector) Transcript() string {
	return strings.Join(f.Ops(), "\n")
}

// ResetOps forgets recorded operations.
func (f *FakeInjector) ResetOps() {
	f.mu.Lock()
	f.ops = nil
	f.mu.Unlock()
}
