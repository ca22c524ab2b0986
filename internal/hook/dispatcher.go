// Package hook turns raw keyboard events into hotkey actions, capture updates
// and journal entries. The dispatcher is OS independent; the Windows hook
// thread feeds it.
package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/hotkey"
	"github.com/TanaroSch/layout-switcher/internal/inject"
	"github.com/TanaroSch/layout-switcher/internal/journal"
	"github.com/TanaroSch/layout-switcher/internal/keys"
)

// ErrHookUnsupported is returned by Install where no low-level keyboard hook
// exists; the app then falls back to registered hotkeys.
var ErrHookUnsupported = errors.New("low-level keyboard hook not supported on this platform")

// Decision is the hook verdict for one event.
type Decision uint8

const (
	Pass Decision = iota
	Swallow
)

func (d Decision) String() string {
	if d == Swallow {
		return "swallow"
	}
	return "pass"
}

// MainWindow is the handle the dispatcher targets unless told otherwise.
const MainWindow uintptr = 1

// ErrorReporter receives failures that must not reach the hook.
type ErrorReporter interface {
	Push(title, text string, err error)
}

// Options configures a Dispatcher. Journal, Keyboard and Queue are required.
type Options struct {
	Journal  *journal.Journal
	Keyboard journal.KeyboardState
	Queue    *TaskQueue
	Errors   ErrorReporter
	Clock    keys.Clock
	MapScan  keys.ScanMapper
	Registry *WindowRegistry
	Window   uintptr
}

// Dispatcher decides Pass or Swallow for every key event. OnKeyEvent runs on
// the hook thread and never blocks: side effects are posted to the queue.
type Dispatcher struct {
	tracker  keys.Tracker
	journal  *journal.Journal
	kb       journal.KeyboardState
	queue    *TaskQueue
	errs     ErrorReporter
	clock    keys.Clock
	mapScan  keys.ScanMapper
	registry *WindowRegistry
	window   uintptr

	matcher     atomic.Pointer[hotkey.Matcher]
	autoconvert atomic.Bool
	paused      atomic.Bool
}

// NewDispatcher builds a dispatcher for cfg and registers its window.
func NewDispatcher(cfg *config.Config, opts Options) *Dispatcher {
	d := &Dispatcher{
		journal:  opts.Journal,
		kb:       opts.Keyboard,
		queue:    opts.Queue,
		errs:     opts.Errors,
		clock:    opts.Clock,
		mapScan:  opts.MapScan,
		registry: opts.Registry,
		window:   opts.Window,
	}
	if d.clock == nil {
		d.clock = keys.MonotonicMs
	}
	if d.registry == nil {
		d.registry = NewWindowRegistry()
	}
	if d.window == 0 {
		d.window = MainWindow
	}
	d.registry.Create(d.window)
	d.SetConfig(cfg)
	return d
}

// SetConfig swaps in a matcher built from cfg and drops half-entered
// sequences.
func (d *Dispatcher) SetConfig(cfg *config.Config) {
	m := hotkey.NewMatcher(cfg)
	d.matcher.Store(m)
	d.registry.With(d.window, func(ws *WindowState) {
		ws.Progress.Reset()
		ws.Live.Reset()
	})
	if cfg != nil {
		d.autoconvert.Store(cfg.AutoconvertEnabled)
	}
	slog.Debug("[hook] matcher rebuilt", "sequences", m.Len())
}

// SetAutoconvert turns automatic conversion on or off.
func (d *Dispatcher) SetAutoconvert(on bool) { d.autoconvert.Store(on) }

// Autoconvert reports whether automatic conversion is on.
func (d *Dispatcher) Autoconvert() bool { return d.autoconvert.Load() }

// SetPaused stops journal recording and autoconvert. Hotkeys keep working.
func (d *Dispatcher) SetPaused(p bool) { d.paused.Store(p) }

// Paused reports whether the dispatcher is paused.
func (d *Dispatcher) Paused() bool { return d.paused.Load() }

// Tracker exposes the live modifier state.
func (d *Dispatcher) Tracker() *keys.Tracker { return &d.tracker }

// BeginCapture routes every key to hotkey capture for action until
// EndCapture. existing seeds the sequence being edited.
func (d *Dispatcher) BeginCapture(action config.Action, existing *config.Sequence) bool {
	return d.registry.With(d.window, func(ws *WindowState) {
		ws.Capture.Begin(action, existing)
		ws.Live.Reset()
		ws.Progress.Reset()
	})
}

// EndCapture leaves capture mode and returns the recorded sequence, if any.
func (d *Dispatcher) EndCapture() *config.Sequence {
	var seq *config.Sequence
	d.registry.With(d.window, func(ws *WindowState) {
		seq = ws.Capture.End()
	})
	return seq
}

func (d *Dispatcher) report(title string, err error) {
	slog.Debug("[hook] "+title, "error", err)
	if d.errs != nil {
		d.errs.Push(title, err.Error(), err)
	}
}

func (d *Dispatcher) post(t Task) error {
	if err := d.queue.Post(t); err != nil {
		return fmt.Errorf("post %s: %w", t.Kind, err)
	}
	return nil
}

func (d *Dispatcher) postAction(a config.Action) error {
	return d.post(Task{Kind: TaskAction, Action: a})
}

// OnKeyEvent handles one raw key event.
func (d *Dispatcher) OnKeyEvent(ev keys.Event) Decision {
	// Our own synthetic input must not match hotkeys or touch the tracker.
	if ev.Injected() && ev.ExtraInfo == inject.InjectedMarker {
		return Pass
	}

	vk := keys.Normalize(ev, d.mapScan)
	isMod := d.tracker.Update(vk, ev.Down)
	mods, modsVKs := d.tracker.Mods(), d.tracker.ModsVKs()
	now := d.clock()

	decision := Pass
	var captured *hotkey.CaptureUpdate
	var postErr error
	d.registry.With(d.window, func(ws *WindowState) {
		if ws.Capture.Active {
			captured = ws.Capture.OnKey(vk, ev.Down, isMod, mods, modsVKs, now)
			decision = Swallow
			return
		}
		chord, ok := ws.Live.OnKey(vk, ev.Down, isMod, mods, modsVKs)
		if !ok {
			return
		}
		matched, err := d.matcher.Load().Match(ws.Progress, chord, now, d.postAction)
		postErr = err
		if matched {
			decision = Swallow
		}
	})

	if postErr != nil {
		d.report("Hotkey action dropped", postErr)
	}
	if captured != nil {
		if err := d.post(Task{Kind: TaskCaptured, Action: captured.Action, Capture: *captured}); err != nil {
			d.report("Captured hotkey dropped", err)
		}
	}

	// Releasing a modifier must always reach the system or it stays stuck.
	if isMod && !ev.Down {
		return Pass
	}

	if ev.Down && !isMod && decision == Pass && !d.paused.Load() {
		d.record(ev, vk)
	}
	return decision
}

// OnMouseButton handles a click or wheel turn. The caret may have moved, so
// the journal no longer describes the text before it.
func (d *Dispatcher) OnMouseButton() {
	if d.paused.Load() {
		return
	}
	if d.journal.Len() > 0 {
		slog.Debug("[hook] mouse input, clearing journal")
	}
	d.journal.Clear()
}

func (d *Dispatcher) record(ev keys.Event, vk uint32) {
	ev.VK = vk
	if _, ok := d.journal.RecordKeydown(ev, d.kb); !ok {
		return
	}
	if !d.autoconvert.Load() || !d.journal.LastCharTriggersAutoconvert() {
		return
	}
	if d.journal.LastTokenAutoconverted() {
		return
	}
	if err := d.post(Task{Kind: TaskAutoconvert}); err != nil {
		d.report("Autoconvert dropped", err)
	}
}
