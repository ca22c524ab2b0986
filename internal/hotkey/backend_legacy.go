package hotkey

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"golang.design/x/hotkey"
)

// LegacyBackend registers hotkeys through golang.design/x/hotkey
// (RegisterHotKey on Windows, XGrabKey on X11). It does NOT support Wayland
// and cannot express modifiers-only chords or two-chord sequences.
type LegacyBackend struct {
	mu             sync.Mutex
	registeredKeys map[config.Action]*legacyHotkey
	displayServer  DisplayServer
}

// NewLegacyBackend creates a new legacy backend using golang.design/x/hotkey.
func NewLegacyBackend() *LegacyBackend {
	ds := DetectDisplayServer()
	slog.Info("[hotkey] legacy backend", "displayServer", ds.String())

	return &LegacyBackend{
		registeredKeys: make(map[config.Action]*legacyHotkey),
		displayServer:  ds,
	}
}

// Name returns the name of this backend.
func (b *LegacyBackend) Name() string {
	return "Legacy (golang.design/x/hotkey)"
}

// IsAvailable checks if this backend can be used on the current system.
func (b *LegacyBackend) IsAvailable() bool {
	switch b.displayServer {
	case DisplayServerWindows, DisplayServerX11:
		return true
	case DisplayServerWayland:
		slog.Info("[hotkey] legacy backend not available on Wayland")
		return false
	default:
		slog.Info("[hotkey] unknown display server, legacy backend assumed unavailable")
		return false
	}
}

// Register binds hk to action, replacing an earlier binding of the action.
func (b *LegacyBackend) Register(action config.Action, hk config.Hotkey) (RegisteredHotkey, error) {
	if hk.VK == 0 {
		return nil, fmt.Errorf("register %s: %w", action, ErrModifiersOnly)
	}
	modifiers, err := legacyModifiers(hk.Mods)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", action, err)
	}
	key, err := legacyKey(hk.VK)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", action, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.registeredKeys[action]; ok {
		if err := existing.Close(); err != nil {
			slog.Warn("[hotkey] failed to release previous binding", "action", action.String(), "error", err)
		}
		delete(b.registeredKeys, action)
	}

	wrapped := &legacyHotkey{
		action:    action,
		label:     FormatHotkey(&hk),
		keydownCh: make(chan struct{}),
		stopCh:    make(chan struct{}),
	}

	// Lock-modifier variants (NumLock, CapsLock on X11) are registered too so
	// the hotkey still fires with those toggled on.
	for i, mods := range expandModifiers(modifiers) {
		h := hotkey.New(mods, key)
		if err := h.Register(); err != nil {
			if i == 0 {
				wrapped.unregisterAll()
				return nil, fmt.Errorf("failed to register hotkey '%s' for %s: %w", wrapped.label, action, err)
			}
			slog.Debug("[hotkey] lock-modifier variant not registered", "hotkey", wrapped.label, "error", err)
			continue
		}
		wrapped.hotkeys = append(wrapped.hotkeys, h)
	}

	wrapped.startEventConverter()

	b.registeredKeys[action] = wrapped
	slog.Info("[hotkey] registered legacy hotkey", "action", action.String(), "hotkey", wrapped.label)

	return wrapped, nil
}

// Unregister removes the hotkey bound to action.
func (b *LegacyBackend) Unregister(action config.Action) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	hk, exists := b.registeredKeys[action]
	if !exists {
		return nil
	}
	delete(b.registeredKeys, action)

	if err := hk.Close(); err != nil {
		slog.Warn("[hotkey] error unregistering", "action", action.String(), "error", err)
		return err
	}
	slog.Info("[hotkey] unregistered legacy hotkey", "action", action.String())
	return nil
}

// UnregisterAll removes all registered hotkeys.
func (b *LegacyBackend) UnregisterAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	slog.Debug("[hotkey] unregistering all legacy hotkeys", "count", len(b.registeredKeys))

	for action, hk := range b.registeredKeys {
		if err := hk.Close(); err != nil {
			slog.Warn("[hotkey] error unregistering", "action", action.String(), "error", err)
		}
	}

	b.registeredKeys = make(map[config.Action]*legacyHotkey)
	return nil
}

// legacyHotkey fans the keydown channels of all registered variants into one.
type legacyHotkey struct {
	action    config.Action
	label     string
	hotkeys   []*hotkey.Hotkey
	keydownCh chan struct{}
	stopCh    chan struct{}
	closeOnce sync.Once
}

// Keydown returns the channel that receives keydown events.
func (lh *legacyHotkey) Keydown() <-chan struct{} {
	return lh.keydownCh
}

// startEventConverter converts hotkey.Event channels to one struct{} channel.
func (lh *legacyHotkey) startEventConverter() {
	var wg sync.WaitGroup
	for _, h := range lh.hotkeys {
		wg.Add(1)
		go func(h *hotkey.Hotkey) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("[hotkey] recovered from panic in legacy hotkey converter", "hotkey", lh.label, "panic", r)
				}
			}()

			for {
				select {
				case <-lh.stopCh:
					return
				case _, ok := <-h.Keydown():
					if !ok {
						return
					}
					select {
					case lh.keydownCh <- struct{}{}:
					case <-lh.stopCh:
						return
					}
				}
			}
		}(h)
	}
	go func() {
		wg.Wait()
		close(lh.keydownCh)
	}()
}

// Close unregisters the hotkey and cleans up resources.
func (lh *legacyHotkey) Close() error {
	var err error
	lh.closeOnce.Do(func() {
		close(lh.stopCh)
		err = lh.unregisterAll()
	})
	return err
}

func (lh *legacyHotkey) unregisterAll() error {
	var firstErr error
	for _, h := range lh.hotkeys {
		if err := h.Unregister(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to unregister hotkey '%s': %w", lh.label, err)
		}
	}
	return firstErr
}

// SelectBackend chooses the fallback backend for the current environment,
// or nil when no backend can register global hotkeys.
func SelectBackend() Backend {
	ds := DetectDisplayServer()

	switch ds {
	case DisplayServerWindows, DisplayServerX11:
		backend := NewLegacyBackend()
		if backend.IsAvailable() {
			slog.Info("[hotkey] selected backend", "backend", backend.Name(), "displayServer", ds.String())
			return backend
		}
		slog.Warn("[hotkey] legacy backend not available", "displayServer", ds.String())
		return nil

	case DisplayServerWayland:
		slog.Warn("[hotkey] Wayland detected, global hotkeys unavailable")
		return nil

	default:
		slog.Warn("[hotkey] unknown display server, hotkeys unavailable")
		return nil
	}
}
