package hotkey

import (
	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/keys"
)

// Capture timing.
const (
	CaptureResetAfterMs uint64 = 2000
	CaptureDefaultGapMs uint32 = config.DefaultGapMs
)

// AppendChord adds a captured chord to the sequence being recorded.
//
// A first chord, or one arriving more than CaptureResetAfterMs after the
// previous input, starts a new single-chord sequence; the old one is dropped.
// Otherwise the chord becomes the second chord, and once two chords exist the
// window slides: the old second becomes the first.
func AppendChord(existing *config.Sequence, chord config.Chord, lastTickMs, nowMs uint64) config.Sequence {
	if lastTickMs == 0 || keys.Elapsed(nowMs, lastTickMs) > CaptureResetAfterMs {
		existing = nil
	}
	if existing == nil {
		return config.Single(chord, CaptureDefaultGapMs)
	}

	seq := existing.Clone()
	if seq.Second != nil {
		seq.First = *seq.Second
	}
	c := chord
	seq.Second = &c
	if seq.MaxGapMs == 0 {
		seq.MaxGapMs = CaptureDefaultGapMs
	}
	return seq
}

// CaptureUpdate is produced when a chord was recorded.
type CaptureUpdate struct {
	Action   config.Action
	Sequence config.Sequence
	Chord    config.Chord
	Text     string
}

// CaptureState records a hotkey for one action. While active every key is
// swallowed.
type CaptureState struct {
	Active          bool
	Action          config.Action
	PendingMods     uint32
	PendingModsVKs  uint32
	PendingValid    bool
	SawNonMod       bool
	LastInputTickMs uint64

	seq *config.Sequence
}

// Begin starts capturing for action, continuing from existing when the user
// presses again within the reset window.
func (c *CaptureState) Begin(action config.Action, existing *config.Sequence) {
	*c = CaptureState{Active: true, Action: action}
	if existing != nil {
		cp := existing.Clone()
		c.seq = &cp
	}
}

// End stops capturing and returns the last recorded sequence.
func (c *CaptureState) End() *config.Sequence {
	seq := c.seq
	*c = CaptureState{}
	return seq
}

// Sequence returns the sequence recorded so far.
func (c *CaptureState) Sequence() *config.Sequence { return c.seq }

// OnKey handles one key event while capturing. mods and modsVKs are the masks
// after the event was applied. It returns an update when a chord was recorded.
// The caller swallows every event while Active.
func (c *CaptureState) OnKey(vk uint32, down, isModifier bool, mods, modsVKs uint32, nowMs uint64) *CaptureUpdate {
	if !c.Active {
		return nil
	}

	if down {
		if isModifier {
			c.PendingMods = mods
			c.PendingModsVKs = modsVKs
			c.PendingValid = true
			c.SawNonMod = false
			return nil
		}
		c.SawNonMod = true
		c.PendingValid = false
		return c.record(config.KeyChord(mods, modsVKs, vk), nowMs)
	}

	if !isModifier || !c.PendingValid || c.SawNonMod || mods != 0 {
		return nil
	}
	chord := config.ModsChord(c.PendingMods, c.PendingModsVKs)
	c.PendingValid = false
	c.PendingMods = 0
	c.PendingModsVKs = 0
	return c.record(chord, nowMs)
}

func (c *CaptureState) record(chord config.Chord, nowMs uint64) *CaptureUpdate {
	seq := AppendChord(c.seq, chord, c.LastInputTickMs, nowMs)
	c.LastInputTickMs = nowMs
	c.seq = &seq
	return &CaptureUpdate{
		Action:   c.Action,
		Sequence: seq.Clone(),
		Chord:    chord,
		Text:     FormatSequence(&seq),
	}
}
