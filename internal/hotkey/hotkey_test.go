package hotkey

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/keys"
)

var (
	lshift     = config.ModsChord(keys.ModShift, keys.ModVKLShift)
	rshift     = config.ModsChord(keys.ModShift, keys.ModVKRShift)
	anyShift   = config.ModsChord(keys.ModShift, 0)
	ctrlShiftK = config.KeyChord(keys.ModControl|keys.ModShift, 0, 'K')
	capsLock   = config.KeyChord(0, 0, keys.VKCapital)
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		template config.Chord
		live     config.Chord
		want     bool
	}{
		{name: "identical", template: lshift, live: lshift, want: true},
		{name: "side differs", template: lshift, live: rshift, want: false},
		{name: "wildcard sides left", template: anyShift, live: lshift, want: true},
		{name: "wildcard sides right", template: anyShift, live: rshift, want: true},
		{name: "generic mods differ", template: anyShift, live: config.ModsChord(keys.ModControl, keys.ModVKLCtrl), want: false},
		{name: "key vs no key", template: capsLock, live: config.ModsChord(0, 0), want: false},
		{name: "key equal with live sides", template: ctrlShiftK, live: config.KeyChord(keys.ModControl|keys.ModShift, keys.ModVKLCtrl|keys.ModVKRShift, 'K'), want: true},
		{name: "key differs", template: ctrlShiftK, live: config.KeyChord(keys.ModControl|keys.ModShift, 0, 'J'), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.template, tt.live); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesWildcardIgnoresLiveSides(t *testing.T) {
	template := config.KeyChord(keys.ModAlt, 0, 'X')
	for vks := uint32(0); vks < 256; vks++ {
		live := config.KeyChord(keys.ModAlt, vks, 'X')
		if !Matches(template, live) {
			t.Fatalf("Matches() = false for live mods_vks %#x", vks)
		}
	}
}

func TestMatchesIsReflexive(t *testing.T) {
	for _, c := range []config.Chord{lshift, rshift, anyShift, ctrlShiftK, capsLock} {
		if !Matches(c, c) {
			t.Fatalf("Matches(%+v, itself) = false", c)
		}
	}
}

type postRecorder struct {
	actions []config.Action
	err     error
}

func (p *postRecorder) post(a config.Action) error {
	p.actions = append(p.actions, a)
	return p.err
}

func cfgWith(seqs map[config.Action]*config.Sequence) *config.Config {
	cfg := &config.Config{}
	for a, s := range seqs {
		cfg.SetSequence(a, s)
	}
	return cfg
}

func seqPtr(s config.Sequence) *config.Sequence { return &s }

func TestMatcherSingleChord(t *testing.T) {
	m := NewMatcher(cfgWith(map[config.Action]*config.Sequence{
		config.ActionSwitchLayout: seqPtr(config.Single(capsLock, 1000)),
	}))
	rec := &postRecorder{}
	p := NewProgress()

	matched, err := m.Match(p, capsLock, 10, rec.post)
	if err != nil || !matched {
		t.Fatalf("Match() = (%v, %v), want match", matched, err)
	}
	if len(rec.actions) != 1 || rec.actions[0] != config.ActionSwitchLayout {
		t.Fatalf("posted %v", rec.actions)
	}

	matched, _ = m.Match(p, ctrlShiftK, 20, rec.post)
	if matched {
		t.Fatal("unrelated chord must not match")
	}
}

func TestMatcherTwoChordSequence(t *testing.T) {
	m := NewMatcher(cfgWith(map[config.Action]*config.Sequence{
		config.ActionConvertLastWord: seqPtr(config.Pair(lshift, lshift, 1000)),
	}))
	rec := &postRecorder{}
	p := NewProgress()

	if matched, _ := m.Match(p, lshift, 100, rec.post); !matched {
		t.Fatal("first chord must be consumed")
	}
	if len(rec.actions) != 0 {
		t.Fatal("first chord must not post")
	}
	if !p.Get(config.ActionConvertLastWord).WaitingSecond {
		t.Fatal("expected to wait for the second chord")
	}
	if matched, _ := m.Match(p, lshift, 1100, rec.post); !matched {
		t.Fatal("second chord at exactly the gap must complete")
	}
	if len(rec.actions) != 1 || rec.actions[0] != config.ActionConvertLastWord {
		t.Fatalf("posted %v", rec.actions)
	}
	if p.Get(config.ActionConvertLastWord).WaitingSecond {
		t.Fatal("progress must reset after completion")
	}
}

func TestMatcherGapExceededRestarts(t *testing.T) {
	const gap = 500
	m := NewMatcher(cfgWith(map[config.Action]*config.Sequence{
		config.ActionConvertLastWord: seqPtr(config.Pair(lshift, lshift, gap)),
	}))
	rec := &postRecorder{}
	p := NewProgress()

	m.Match(p, lshift, 1000, rec.post)
	matched, _ := m.Match(p, lshift, 1000+gap+1, rec.post)
	if !matched {
		t.Fatal("late chord must be taken as a new first chord")
	}
	if len(rec.actions) != 0 {
		t.Fatalf("late chord must not complete, posted %v", rec.actions)
	}
	prog := p.Get(config.ActionConvertLastWord)
	if !prog.WaitingSecond || prog.FirstTickMs != 1000+gap+1 {
		t.Fatalf("progress = %+v, want restarted at %d", prog, 1000+gap+1)
	}

	m.Match(p, lshift, 1000+gap+100, rec.post)
	if len(rec.actions) != 1 {
		t.Fatal("sequence must complete from the restarted first chord")
	}
}

func TestMatcherWaitingRefreshAndReset(t *testing.T) {
	m := NewMatcher(cfgWith(map[config.Action]*config.Sequence{
		config.ActionConvertSelection: seqPtr(config.Pair(ctrlShiftK, capsLock, 1000)),
	}))
	rec := &postRecorder{}
	p := NewProgress()
	prog := p.Get(config.ActionConvertSelection)

	m.Match(p, ctrlShiftK, 100, rec.post)
	if matched, _ := m.Match(p, ctrlShiftK, 300, rec.post); !matched || prog.FirstTickMs != 300 {
		t.Fatalf("repeated first chord must refresh the tick, progress %+v", prog)
	}

	if matched, _ := m.Match(p, lshift, 400, rec.post); matched {
		t.Fatal("other chord must not match")
	}
	if prog.WaitingSecond {
		t.Fatal("other chord must reset progress")
	}
	if len(rec.actions) != 0 {
		t.Fatalf("nothing should be posted, got %v", rec.actions)
	}
}

func TestMatcherPriority(t *testing.T) {
	seq := config.Single(capsLock, 1000)
	m := NewMatcher(cfgWith(map[config.Action]*config.Sequence{
		config.ActionPauseToggle:      seqPtr(seq),
		config.ActionConvertSelection: seqPtr(seq),
		config.ActionSwitchLayout:     seqPtr(seq),
	}))
	rec := &postRecorder{}

	m.Match(NewProgress(), capsLock, 1, rec.post)
	if len(rec.actions) != 1 || rec.actions[0] != config.ActionSwitchLayout {
		t.Fatalf("posted %v, want switch_layout only", rec.actions)
	}
}

func TestMatcherDefaultConfig(t *testing.T) {
	m := NewMatcher(config.Default())
	rec := &postRecorder{}
	p := NewProgress()

	both := config.ModsChord(keys.ModShift, keys.ModVKLShift|keys.ModVKRShift)
	m.Match(p, both, 10, rec.post)
	if len(rec.actions) != 1 || rec.actions[0] != config.ActionPauseToggle {
		t.Fatalf("both shifts posted %v, want pause", rec.actions)
	}

	m.Match(p, lshift, 100, rec.post)
	m.Match(p, lshift, 200, rec.post)
	if len(rec.actions) != 2 || rec.actions[1] != config.ActionConvertLastWord {
		t.Fatalf("double left shift posted %v", rec.actions)
	}
}

func TestMatcherPostErrorIsReturned(t *testing.T) {
	m := NewMatcher(cfgWith(map[config.Action]*config.Sequence{
		config.ActionSwitchLayout: seqPtr(config.Single(capsLock, 1000)),
	}))
	wantErr := errors.New("queue full")
	rec := &postRecorder{err: wantErr}

	matched, err := m.Match(NewProgress(), capsLock, 1, rec.post)
	if !matched || !errors.Is(err, wantErr) {
		t.Fatalf("Match() = (%v, %v), want (true, %v)", matched, err, wantErr)
	}
}

func TestNewMatcherSkipsDisabledActions(t *testing.T) {
	cfg := config.Default()
	cfg.SetSequence(config.ActionPauseToggle, nil)
	m := NewMatcher(cfg)
	if _, ok := m.Sequence(config.ActionPauseToggle); ok {
		t.Fatal("disabled action must not be matched")
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
}

func TestAppendChord(t *testing.T) {
	a := config.KeyChord(0, 0, 'A')
	b := config.KeyChord(0, 0, 'B')
	c := config.KeyChord(0, 0, 'C')

	t.Run("first chord", func(t *testing.T) {
		got := AppendChord(nil, a, 0, 100)
		if !got.First.Equal(a) || got.Second != nil || got.MaxGapMs != CaptureDefaultGapMs {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("second chord appended", func(t *testing.T) {
		first := config.Single(a, 1000)
		got := AppendChord(&first, b, 100, 900)
		if !got.First.Equal(a) || got.Second == nil || !got.Second.Equal(b) {
			t.Fatalf("got %s", FormatSequence(&got))
		}
	})

	t.Run("window slides", func(t *testing.T) {
		pair := config.Pair(a, b, 1000)
		got := AppendChord(&pair, c, 100, 500)
		if !got.First.Equal(b) || !got.Second.Equal(c) {
			t.Fatalf("got %s, want B; C", FormatSequence(&got))
		}
	})

	t.Run("reset after long pause", func(t *testing.T) {
		pair := config.Pair(a, b, 1000)
		got := AppendChord(&pair, c, 100, 100+CaptureResetAfterMs+1)
		if !got.First.Equal(c) || got.Second != nil {
			t.Fatalf("got %s, want C alone", FormatSequence(&got))
		}
	})

	t.Run("no reset at exactly the window", func(t *testing.T) {
		first := config.Single(a, 1000)
		got := AppendChord(&first, b, 100, 100+CaptureResetAfterMs)
		if got.Second == nil {
			t.Fatal("chord at the reset threshold must still append")
		}
	})

	t.Run("clock going backwards saturates", func(t *testing.T) {
		first := config.Single(a, 1000)
		got := AppendChord(&first, b, 5000, 10)
		if got.Second == nil {
			t.Fatal("backwards clock must count as zero elapsed")
		}
	})
}

func TestCaptureStateRecordsModifiersOnly(t *testing.T) {
	var c CaptureState
	c.Begin(config.ActionConvertLastWord, nil)

	// LShift down then up, twice.
	for i, now := range []uint64{100, 400} {
		if u := c.OnKey(keys.VKLShift, true, true, keys.ModShift, keys.ModVKLShift, now); u != nil {
			t.Fatalf("modifier keydown must not record, got %+v", u)
		}
		u := c.OnKey(keys.VKLShift, false, true, 0, 0, now+50)
		if u == nil {
			t.Fatalf("press %d: modifier release must record a chord", i)
		}
		if !u.Chord.Equal(lshift) {
			t.Fatalf("chord = %s, want LShift", FormatChord(u.Chord))
		}
	}

	seq := c.End()
	if seq == nil || FormatSequence(seq) != "LShift; LShift" {
		t.Fatalf("sequence = %s", FormatSequence(seq))
	}
	if c.Active {
		t.Fatal("End must deactivate capture")
	}
}

func TestCaptureStateKeyChord(t *testing.T) {
	var c CaptureState
	c.Begin(config.ActionSwitchLayout, nil)

	c.OnKey(keys.VKLControl, true, true, keys.ModControl, keys.ModVKLCtrl, 10)
	u := c.OnKey('K', true, false, keys.ModControl, keys.ModVKLCtrl, 20)
	if u == nil || u.Text != "LCtrl + K" {
		t.Fatalf("update = %+v", u)
	}
	if u.Action != config.ActionSwitchLayout {
		t.Fatalf("action = %v", u.Action)
	}
	if got := c.OnKey('K', false, false, keys.ModControl, keys.ModVKLCtrl, 30); got != nil {
		t.Fatal("non-modifier keyup must not record")
	}
	if got := c.OnKey(keys.VKLControl, false, true, 0, 0, 40); got != nil {
		t.Fatal("modifier release after a key must not record a modifiers-only chord")
	}
}

func TestCaptureStateWaitsForAllModifiersReleased(t *testing.T) {
	var c CaptureState
	c.Begin(config.ActionPauseToggle, nil)

	c.OnKey(keys.VKLShift, true, true, keys.ModShift, keys.ModVKLShift, 10)
	c.OnKey(keys.VKRShift, true, true, keys.ModShift, keys.ModVKLShift|keys.ModVKRShift, 20)
	if u := c.OnKey(keys.VKLShift, false, true, keys.ModShift, keys.ModVKRShift, 30); u != nil {
		t.Fatal("must not record while a modifier is still held")
	}
	u := c.OnKey(keys.VKRShift, false, true, 0, 0, 40)
	if u == nil || u.Text != "LShift + RShift" {
		t.Fatalf("update = %+v", u)
	}
}

func TestCaptureStateInactiveIgnores(t *testing.T) {
	var c CaptureState
	if u := c.OnKey('A', true, false, 0, 0, 10); u != nil {
		t.Fatal("inactive capture must not record")
	}
}

func TestLiveCapture(t *testing.T) {
	var l LiveCapture

	if _, ok := l.OnKey(keys.VKLShift, true, true, keys.ModShift, keys.ModVKLShift); ok {
		t.Fatal("modifier keydown yields no chord")
	}
	chord, ok := l.OnKey(keys.VKLShift, false, true, 0, 0)
	if !ok || !chord.Equal(lshift) {
		t.Fatalf("got (%s, %v), want LShift", FormatChord(chord), ok)
	}

	l.OnKey(keys.VKLShift, true, true, keys.ModShift, keys.ModVKLShift)
	chord, ok = l.OnKey('A', true, false, keys.ModShift, keys.ModVKLShift)
	if !ok || FormatChord(chord) != "LShift + A" {
		t.Fatalf("got (%s, %v)", FormatChord(chord), ok)
	}
	if _, ok := l.OnKey(keys.VKLShift, false, true, 0, 0); ok {
		t.Fatal("Shift+A release must not yield a modifiers-only chord")
	}
	if _, ok := l.OnKey('A', false, false, 0, 0); ok {
		t.Fatal("non-modifier keyup yields no chord")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		seq  *config.Sequence
		want string
	}{
		{name: "nil", seq: nil, want: "None"},
		{name: "double left shift", seq: seqPtr(config.Pair(lshift, lshift, 1000)), want: "LShift; LShift"},
		{name: "generic mods", seq: seqPtr(config.Single(ctrlShiftK, 1000)), want: "Ctrl + Shift + K"},
		{name: "empty chord", seq: seqPtr(config.Single(config.Chord{}, 1000)), want: "None"},
		{name: "digit", seq: seqPtr(config.Single(config.KeyChord(keys.ModAlt, 0, '7'), 1000)), want: "Alt + 7"},
		{name: "sided order", seq: seqPtr(config.Single(config.ModsChord(keys.ModShift|keys.ModControl, keys.ModVKRShift|keys.ModVKLCtrl), 1000)), want: "LCtrl + RShift"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSequence(tt.seq); got != tt.want {
				t.Fatalf("FormatSequence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatHotkey(t *testing.T) {
	if got := FormatHotkey(nil); got != "None" {
		t.Fatalf("FormatHotkey(nil) = %q", got)
	}
	if got := FormatHotkey(&config.Hotkey{VK: 'C', Mods: keys.ModControl | keys.ModAlt}); got != "Ctrl + Alt + C" {
		t.Fatalf("FormatHotkey() = %q", got)
	}
}

func TestKeyNameUnknownFallback(t *testing.T) {
	if osKeyName != nil {
		t.Skip("OS key names in use")
	}
	if got := KeyName(0xE8); got != "VK 0xE8" {
		t.Fatalf("KeyName(0xE8) = %q", got)
	}
	if got := KeyName(keys.VKF1 + 4); got != "F5" {
		t.Fatalf("KeyName(F5) = %q", got)
	}
}

func TestDetectDisplayServer(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}
	tests := []struct {
		name string
		goos string
		env  map[string]string
		want DisplayServer
	}{
		{name: "windows", goos: "windows", want: DisplayServerWindows},
		{name: "wayland wins over display", goos: "linux", env: map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"}, want: DisplayServerWayland},
		{name: "x11", goos: "linux", env: map[string]string{"DISPLAY": ":0"}, want: DisplayServerX11},
		{name: "darwin", goos: "darwin", want: DisplayServerX11},
		{name: "headless", goos: "linux", want: DisplayServerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectDisplayServer(tt.goos, env(tt.env)); got != tt.want {
				t.Fatalf("detectDisplayServer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLegacyHotkeyFor(t *testing.T) {
	cfg := config.Default()
	if hk := legacyHotkeyFor(cfg, config.ActionConvertLastWord); hk != nil {
		t.Fatalf("two-chord sequence must not register, got %+v", hk)
	}
	hk := legacyHotkeyFor(cfg, config.ActionSwitchLayout)
	if hk == nil || hk.VK != keys.VKCapital {
		t.Fatalf("single key sequence must register, got %+v", hk)
	}

	cfg.HotkeyPause = &config.Hotkey{VK: 'P', Mods: keys.ModControl}
	if hk := legacyHotkeyFor(cfg, config.ActionPauseToggle); hk == nil || hk.VK != 'P' {
		t.Fatalf("explicit legacy hotkey must win, got %+v", hk)
	}
}

type fakeRegistered struct {
	ch chan struct{}
}

func (f *fakeRegistered) Keydown() <-chan struct{} { return f.ch }
func (f *fakeRegistered) Close() error {
	close(f.ch)
	return nil
}

type fakeBackend struct {
	mu    sync.Mutex
	regs  map[config.Action]*fakeRegistered
	fail  map[config.Action]bool
	calls int
}

func (b *fakeBackend) Register(action config.Action, hk config.Hotkey) (RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.fail[action] {
		return nil, errors.New("taken")
	}
	r := &fakeRegistered{ch: make(chan struct{}, 1)}
	b.regs[action] = r
	return r, nil
}

func (b *fakeBackend) Unregister(action config.Action) error { return nil }

func (b *fakeBackend) UnregisterAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for a, r := range b.regs {
		r.Close()
		delete(b.regs, a)
	}
	return nil
}

func (b *fakeBackend) Name() string      { return "fake" }
func (b *fakeBackend) IsAvailable() bool { return true }

func (b *fakeBackend) press(a config.Action) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[a].ch <- struct{}{}
}

func TestManagerForwardsPresses(t *testing.T) {
	backend := &fakeBackend{regs: map[config.Action]*fakeRegistered{}, fail: map[config.Action]bool{}}
	posted := make(chan config.Action, 1)
	m := NewManager(config.Default(), backend, func(a config.Action) error {
		posted <- a
		return nil
	})

	if err := m.RegisterAll(); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("registered %d hotkeys, want only switch_layout", backend.calls)
	}

	backend.press(config.ActionSwitchLayout)
	select {
	case a := <-posted:
		if a != config.ActionSwitchLayout {
			t.Fatalf("posted %v", a)
		}
	case <-time.After(time.Second):
		t.Fatal("press was not forwarded")
	}
	m.UnregisterAll()
}

func TestManagerReportsFailures(t *testing.T) {
	backend := &fakeBackend{
		regs: map[config.Action]*fakeRegistered{},
		fail: map[config.Action]bool{config.ActionSwitchLayout: true},
	}
	m := NewManager(config.Default(), backend, nil)
	if err := m.RegisterAll(); err == nil {
		t.Fatal("expected the registration failure to be returned")
	}

	if err := NewManager(config.Default(), nil, nil).RegisterAll(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Fatalf("RegisterAll() without backend = %v", err)
	}
}
