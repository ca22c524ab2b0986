package hotkey

import (
	"log/slog"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/keys"
)

// MatchPriority is the order in which actions are tried. The first action
// that consumes a chord wins.
var MatchPriority = []config.Action{
	config.ActionSwitchLayout,
	config.ActionConvertLastWord,
	config.ActionConvertSelection,
	config.ActionPauseToggle,
}

// Poster delivers a matched action to the main loop.
type Poster func(config.Action) error

// SequenceProgress tracks a half-entered two-chord sequence.
type SequenceProgress struct {
	WaitingSecond bool
	FirstTickMs   uint64
}

func (p *SequenceProgress) reset() {
	p.WaitingSecond = false
	p.FirstTickMs = 0
}

// Progress holds per-action sequence progress. It belongs to the window
// state and is reset whenever the matcher is rebuilt.
type Progress struct {
	byAction map[config.Action]*SequenceProgress
}

// NewProgress returns empty progress.
func NewProgress() *Progress {
	return &Progress{byAction: make(map[config.Action]*SequenceProgress, len(MatchPriority))}
}

// Get returns the progress of an action, creating it on first use.
func (p *Progress) Get(a config.Action) *SequenceProgress {
	sp, ok := p.byAction[a]
	if !ok {
		sp = &SequenceProgress{}
		p.byAction[a] = sp
	}
	return sp
}

// Reset forgets every half-entered sequence.
func (p *Progress) Reset() {
	for _, sp := range p.byAction {
		sp.reset()
	}
}

type entry struct {
	action config.Action
	seq    config.Sequence
}

// Matcher holds the active sequences in priority order. It is immutable;
// a config change builds a new one.
type Matcher struct {
	entries []entry
}

// NewMatcher snapshots the sequences of cfg. Disabled actions are skipped.
func NewMatcher(cfg *config.Config) *Matcher {
	m := &Matcher{}
	if cfg == nil {
		return m
	}
	for _, a := range MatchPriority {
		seq := cfg.Sequence(a)
		if seq == nil {
			continue
		}
		m.entries = append(m.entries, entry{action: a, seq: seq.Clone()})
	}
	return m
}

// Len returns the number of active sequences.
func (m *Matcher) Len() int { return len(m.entries) }

// Sequence returns the active sequence for an action.
func (m *Matcher) Sequence(a config.Action) (config.Sequence, bool) {
	for _, e := range m.entries {
		if e.action == a {
			return e.seq, true
		}
	}
	return config.Sequence{}, false
}

// Match feeds one chord through every action in priority order. It reports
// whether the chord was consumed, either completing a sequence (which is
// posted) or advancing one. A post error is returned with matched=true.
func (m *Matcher) Match(p *Progress, chord config.Chord, nowMs uint64, post Poster) (bool, error) {
	for _, e := range m.entries {
		matched, fire := step(e.seq, p.Get(e.action), chord, nowMs)
		if !matched {
			continue
		}
		if fire {
			slog.Debug("[hotkey] sequence matched", "action", e.action.String())
			if post != nil {
				if err := post(e.action); err != nil {
					return true, err
				}
			}
		}
		return true, nil
	}
	return false, nil
}

// step advances one action. fire is set when the sequence completed.
func step(seq config.Sequence, prog *SequenceProgress, chord config.Chord, nowMs uint64) (matched, fire bool) {
	if seq.Second == nil {
		if Matches(seq.First, chord) {
			return true, true
		}
		return false, false
	}

	if prog.WaitingSecond && keys.Elapsed(nowMs, prog.FirstTickMs) > uint64(seq.MaxGapMs) {
		prog.reset()
	}

	if prog.WaitingSecond {
		if Matches(*seq.Second, chord) {
			prog.reset()
			return true, true
		}
		if Matches(seq.First, chord) {
			prog.FirstTickMs = nowMs
			return true, false
		}
		prog.reset()
		return false, false
	}

	if Matches(seq.First, chord) {
		prog.WaitingSecond = true
		prog.FirstTickMs = nowMs
		return true, false
	}
	return false, false
}
