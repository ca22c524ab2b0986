//go:build !windows

package hook

import "github.com/TanaroSch/layout-switcher/internal/layout"

// Hook is a placeholder; Install always fails here.
type Hook struct{}

// Install reports ErrHookUnsupported.
func Install(*Dispatcher) (*Hook, error) { return nil, ErrHookUnsupported }

// Stop does nothing.
func (*Hook) Stop() {}

// ScanToVK cannot resolve scan codes here.
func ScanToVK(uint32) uint32 { return 0 }

// SystemKeyboard reports no keyboard state; without a hook nothing is
// recorded anyway.
type SystemKeyboard struct{}

// NewSystemKeyboard returns the placeholder provider.
func NewSystemKeyboard() *SystemKeyboard { return &SystemKeyboard{} }

func (SystemKeyboard) Foreground() uintptr                     { return 0 }
func (SystemKeyboard) Layout() layout.Tag                      { return layout.TagUnknown }
func (SystemKeyboard) CtrlOrAltDown() bool                     { return false }
func (SystemKeyboard) Translate(uint32, uint32) (string, bool) { return "", false }
