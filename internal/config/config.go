package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/TanaroSch/layout-switcher/internal/keys"
)

const (
	appDirName = "LayoutSwitcher"
	fileName   = "config.json"

	DefaultDelayMs         = 100
	DefaultJournalCapacity = 100
	DefaultGapMs           = 1000
)

// Config holds the application configuration.
type Config struct {
	DelayMs            uint32 `json:"delay_ms"`
	AutoconvertEnabled bool   `json:"autoconvert_enabled"`
	JournalCapacity    int    `json:"journal_capacity"`
	UseNotifications   bool   `json:"use_notifications"`

	// Legacy single-chord hotkeys. Only used when the low-level hook cannot be installed.
	HotkeyConvertLastWord  *Hotkey `json:"hotkey_convert_last_word"`
	HotkeyPause            *Hotkey `json:"hotkey_pause"`
	HotkeyConvertSelection *Hotkey `json:"hotkey_convert_selection"`
	HotkeySwitchLayout     *Hotkey `json:"hotkey_switch_layout"`

	HotkeyConvertLastWordSequence  *Sequence `json:"hotkey_convert_last_word_sequence"`
	HotkeyPauseSequence            *Sequence `json:"hotkey_pause_sequence"`
	HotkeyConvertSelectionSequence *Sequence `json:"hotkey_convert_selection_sequence"`
	HotkeySwitchLayoutSequence     *Sequence `json:"hotkey_switch_layout_sequence"`

	configPath string
}

// Default returns the built-in configuration: double left Shift converts the
// last word (and the selection), both Shifts toggle pause, CapsLock switches
// the layout.
func Default() *Config {
	doubleLShift := Pair(
		ModsChord(keys.ModShift, keys.ModVKLShift),
		ModsChord(keys.ModShift, keys.ModVKLShift),
		DefaultGapMs,
	)
	selection := doubleLShift.Clone()
	pause := Single(ModsChord(keys.ModShift, keys.ModVKLShift|keys.ModVKRShift), DefaultGapMs)
	capsLock := Single(KeyChord(0, 0, keys.VKCapital), DefaultGapMs)

	return &Config{
		DelayMs:                        DefaultDelayMs,
		AutoconvertEnabled:             true,
		JournalCapacity:                DefaultJournalCapacity,
		UseNotifications:               true,
		HotkeyConvertLastWordSequence:  &doubleLShift,
		HotkeyPauseSequence:            &pause,
		HotkeyConvertSelectionSequence: &selection,
		HotkeySwitchLayoutSequence:     &capsLock,
	}
}

// DefaultPath returns %APPDATA%/LayoutSwitcher/config.json (or the platform
// equivalent of the user config dir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, fileName), nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// SetPath sets the file Save writes to.
func (c *Config) SetPath(path string) {
	c.configPath = path
}

// Load reads and validates the configuration file, creating a default one if
// the file does not exist yet.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		slog.Info("Config file not found, creating default", "path", path)
		if createErr := CreateDefaultConfig(path); createErr != nil {
			return nil, fmt.Errorf("config file not found and failed to create default '%s': %w", path, createErr)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s' even after creating default: %w", path, err)
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes and validates a configuration document.
//
// Keys missing from the document take their default value; an explicit null
// for a sequence disables that action.
func Parse(data []byte) (*Config, error) {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	def := Default()
	if _, ok := present["delay_ms"]; !ok {
		cfg.DelayMs = def.DelayMs
	}
	if _, ok := present["autoconvert_enabled"]; !ok {
		cfg.AutoconvertEnabled = def.AutoconvertEnabled
	}
	if _, ok := present["use_notifications"]; !ok {
		cfg.UseNotifications = def.UseNotifications
	}
	if cfg.JournalCapacity <= 0 {
		cfg.JournalCapacity = DefaultJournalCapacity
	}
	for _, a := range Actions() {
		if _, ok := present[sequenceKey(a)]; !ok {
			cfg.SetSequence(a, def.Sequence(a))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sequenceKey(a Action) string {
	return "hotkey_" + a.String() + "_sequence"
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("save config: no path set")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("save config: marshal: %w", err)
	}
	return atomicWrite(c.configPath, data)
}

// CreateDefaultConfig writes the default configuration unless the file exists.
func CreateDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error checking config path '%s': %w", path, err)
	}

	slog.Info("Creating default configuration file", "path", path)
	cfg := Default()
	cfg.configPath = path
	return cfg.Save()
}

// Clone returns a deep copy that shares nothing with c.
func (c *Config) Clone() *Config {
	out := *c
	for _, a := range Actions() {
		if seq := c.Sequence(a); seq != nil {
			cp := seq.Clone()
			out.SetSequence(a, &cp)
		}
		if hk := c.LegacyHotkey(a); hk != nil {
			cp := *hk
			out.setLegacyHotkey(a, &cp)
		}
	}
	return &out
}

// Sequence returns the configured sequence for an action, or nil.
func (c *Config) Sequence(a Action) *Sequence {
	switch a {
	case ActionConvertLastWord:
		return c.HotkeyConvertLastWordSequence
	case ActionPauseToggle:
		return c.HotkeyPauseSequence
	case ActionConvertSelection:
		return c.HotkeyConvertSelectionSequence
	case ActionSwitchLayout:
		return c.HotkeySwitchLayoutSequence
	}
	return nil
}

// SetSequence replaces the sequence of an action. Nil disables it.
func (c *Config) SetSequence(a Action, seq *Sequence) {
	switch a {
	case ActionConvertLastWord:
		c.HotkeyConvertLastWordSequence = seq
	case ActionPauseToggle:
		c.HotkeyPauseSequence = seq
	case ActionConvertSelection:
		c.HotkeyConvertSelectionSequence = seq
	case ActionSwitchLayout:
		c.HotkeySwitchLayoutSequence = seq
	}
}

// SetCaptured stores a sequence recorded by hotkey capture. The legacy
// hotkey follows the chord captured last so the RegisterHotKey fallback
// stays close to what the user pressed.
func (c *Config) SetCaptured(a Action, seq Sequence, last Chord) {
	cp := seq.Clone()
	c.SetSequence(a, &cp)
	vk, _ := last.Key()
	c.setLegacyHotkey(a, &Hotkey{VK: vk, Mods: last.Mods})
}

// LegacyHotkey returns the single-chord hotkey of an action, or nil.
func (c *Config) LegacyHotkey(a Action) *Hotkey {
	switch a {
	case ActionConvertLastWord:
		return c.HotkeyConvertLastWord
	case ActionPauseToggle:
		return c.HotkeyPause
	case ActionConvertSelection:
		return c.HotkeyConvertSelection
	case ActionSwitchLayout:
		return c.HotkeySwitchLayout
	}
	return nil
}

func (c *Config) setLegacyHotkey(a Action, hk *Hotkey) {
	switch a {
	case ActionConvertLastWord:
		c.HotkeyConvertLastWord = hk
	case ActionPauseToggle:
		c.HotkeyPause = hk
	case ActionConvertSelection:
		c.HotkeyConvertSelection = hk
	case ActionSwitchLayout:
		c.HotkeySwitchLayout = hk
	}
}

func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config.json.tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				slog.Warn("Failed to remove temp config file", "path", tmpPath, "error", removeErr)
			}
		}
	}()

	if err = tmpFile.Chmod(0o600); err != nil {
		return fmt.Errorf("save config: chmod temp: %w", err)
	}
	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("save config: write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("save config: sync: %w", err)
	}
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}
