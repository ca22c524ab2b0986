// Package hotkey recognizes configured hotkeys in the live key stream:
// chord matching, two-chord sequences, recording new hotkeys, and the
// RegisterHotKey fallback used when no keyboard hook is installed.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/TanaroSch/layout-switcher/internal/config"
)

// Manager registers the legacy hotkeys of a config with a Backend and
// forwards presses to a Poster.
type Manager struct {
	config  *config.Config
	backend Backend
	post    Poster
}

// NewManager creates a new hotkey manager
func NewManager(cfg *config.Config, backend Backend, post Poster) *Manager {
	return &Manager{
		config:  cfg,
		backend: backend,
		post:    post,
	}
}

// RegisterAll registers the legacy hotkey of every action that has one.
// Actions whose hotkey cannot be registered are skipped; the joined errors
// are returned so the caller can report them once.
func (m *Manager) RegisterAll() error {
	if m.backend == nil {
		return ErrBackendNotAvailable
	}
	m.UnregisterAll()

	var errs []error
	for _, action := range config.Actions() {
		hk := legacyHotkeyFor(m.config, action)
		if hk == nil {
			continue
		}
		reg, err := m.backend.Register(action, *hk)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", action, FormatHotkey(hk), err))
			continue
		}
		go m.listen(action, reg)
	}
	return errors.Join(errs...)
}

// UnregisterAll unregisters all currently registered hotkeys
func (m *Manager) UnregisterAll() {
	if m.backend == nil {
		return
	}
	if err := m.backend.UnregisterAll(); err != nil {
		slog.Warn("[hotkey] unregister all failed", "error", err)
	}
}

// SetConfig swaps the config and re-registers.
func (m *Manager) SetConfig(cfg *config.Config) error {
	m.config = cfg
	return m.RegisterAll()
}

func (m *Manager) listen(action config.Action, reg RegisteredHotkey) {
	for range reg.Keydown() {
		slog.Debug("[hotkey] legacy hotkey pressed", "action", action.String())
		if m.post == nil {
			continue
		}
		if err := m.post(action); err != nil {
			slog.Warn("[hotkey] failed to post action", "action", action.String(), "error", err)
		}
	}
}

// legacyHotkeyFor picks the hotkey to register: the explicit legacy hotkey,
// or the sequence when it is a single chord with a key.
func legacyHotkeyFor(cfg *config.Config, action config.Action) *config.Hotkey {
	if cfg == nil {
		return nil
	}
	if hk := cfg.LegacyHotkey(action); hk != nil && hk.VK != 0 {
		cp := *hk
		return &cp
	}
	seq := cfg.Sequence(action)
	if seq == nil || seq.Second != nil {
		return nil
	}
	vk, ok := seq.First.Key()
	if !ok {
		return nil
	}
	return &config.Hotkey{VK: vk, Mods: seq.First.Mods}
}
