package hook

import (
	"sync"

	"github.com/TanaroSch/layout-switcher/internal/hotkey"
)

// WindowState is owned by one window handle: its hotkey capture and the
// matcher progress of keys typed while it is the hook target.
type WindowState struct {
	Capture  hotkey.CaptureState
	Live     hotkey.LiveCapture
	Progress *hotkey.Progress
}

// WindowRegistry maps window handles to their state. State is only reachable
// through With, so nothing can keep using it after Destroy.
type WindowRegistry struct {
	mu     sync.Mutex
	states map[uintptr]*WindowState
}

// NewWindowRegistry returns an empty registry.
func NewWindowRegistry() *WindowRegistry {
	return &WindowRegistry{states: make(map[uintptr]*WindowState)}
}

// Create registers h with fresh state, replacing any earlier state.
func (r *WindowRegistry) Create(h uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[h] = &WindowState{Progress: hotkey.NewProgress()}
}

// Destroy forgets h.
func (r *WindowRegistry) Destroy(h uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, h)
}

// With runs fn on the state of h under the registry lock. It reports false
// when h is not registered.
func (r *WindowRegistry) With(h uintptr, fn func(*WindowState)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[h]
	if !ok {
		return false
	}
	fn(st)
	return true
}

// Len returns the number of registered windows.
func (r *WindowRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
