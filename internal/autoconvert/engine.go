package autoconvert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/diffutil"
	"github.com/TanaroSch/layout-switcher/internal/inject"
	"github.com/TanaroSch/layout-switcher/internal/journal"
	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
	"github.com/google/uuid"
)

// ErrInProgress is returned when a conversion starts while another one is
// still typing.
var ErrInProgress = errors.New("conversion already in progress")

// ShiftReleaseTimeout bounds how long a manual conversion waits for the
// trigger Shift to be let go.
const ShiftReleaseTimeout = 150 * time.Millisecond

// Result describes one conversion attempt.
type Result struct {
	ID        uuid.UUID
	Original  string
	Converted string
	Direction layout.Direction
	Reason    SkipReason
	Applied   bool
	Summary   string
}

func (r Result) String() string {
	if r.Applied {
		return r.Summary
	}
	return "skipped: " + r.Reason.String()
}

// Engine converts the last typed word in place. Automatic and manual
// conversions share one reentry guard.
type Engine struct {
	journal *journal.Journal
	inj     inject.Injector
	layouts inject.LayoutSwitcher
	model   Model

	busy    atomic.Bool
	delayMs atomic.Uint32
	sleep   func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	onResult func(Result)
}

// NewEngine wires an engine to its collaborators. delayMs is the pause
// before the first keystroke; layouts may be nil.
func NewEngine(j *journal.Journal, inj inject.Injector, layouts inject.LayoutSwitcher, m Model, delayMs uint32) *Engine {
	e := &Engine{
		journal: j,
		inj:     inj,
		layouts: layouts,
		model:   m,
		sleep:   sleepCtx,
	}
	e.delayMs.Store(delayMs)
	return e
}

// SetDelay changes the pause before any keystrokes are sent.
func (e *Engine) SetDelay(ms uint32) { e.delayMs.Store(ms) }

// OnResult registers a callback for applied conversions.
func (e *Engine) OnResult(fn func(Result)) {
	e.mu.Lock()
	e.onResult = fn
	e.mu.Unlock()
}

func (e *Engine) notify(r Result) {
	e.mu.Lock()
	fn := e.onResult
	e.mu.Unlock()
	if fn != nil {
		fn(r)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Engine) delay(ctx context.Context) error {
	return e.sleep(ctx, time.Duration(e.delayMs.Load())*time.Millisecond)
}

func (e *Engine) foregroundDirection() (layout.Direction, bool) {
	if e.layouts == nil {
		return 0, false
	}
	return layout.DirectionFromTag(e.layouts.ForegroundLayout())
}

func skipped(id uuid.UUID, reason SkipReason) Result {
	return Result{ID: id, Reason: reason}
}

// Autoconvert retypes the last word in the other layout when the decision
// engine finds that clearly better. It runs after a token-closing character.
func (e *Engine) Autoconvert(ctx context.Context) (Result, error) {
	id := uuid.New()
	if !e.busy.CompareAndSwap(false, true) {
		return skipped(id, SkipReentry), ErrInProgress
	}
	defer e.busy.Store(false)

	if e.journal.LastTokenAutoconverted() {
		return e.skip(id, SkipAlreadyAutoconverted), nil
	}
	if err := e.delay(ctx); err != nil {
		return skipped(id, SkipNone), err
	}
	// More typing during the delay means the trigger is stale.
	if !e.journal.LastCharTriggersAutoconvert() {
		return e.skip(id, SkipNoToken), nil
	}

	ext, ok := e.journal.TakeLastLayoutRunWithSuffix()
	if !ok {
		return e.skip(id, SkipNoToken), nil
	}
	committed := false
	defer func() {
		if !committed && !e.journal.Restore(ext) {
			slog.Debug("[autoconvert] input recorded during attempt, journal cleared", "id", id)
		}
	}()

	p := journal.PayloadFromExtract(ext)
	converted, dir, reason := Candidate(p, ext.Layout(), e.foregroundDirection)
	if reason != SkipNone {
		return e.skip(id, reason), nil
	}
	if reason := Decide(e.model, p.Word, converted); reason != SkipNone {
		return e.skip(id, reason), nil
	}

	if err := e.apply(p, converted); err != nil {
		return skipped(id, SkipNone), fmt.Errorf("autoconvert %s: %w", id, err)
	}
	committed = true
	return e.commit(id, ext, p, converted, dir), nil
}

// ConvertLastWord converts the trailing phrase typed in one layout without
// asking the decision engine. Converting twice restores the original text
// and layout.
func (e *Engine) ConvertLastWord(ctx context.Context) (Result, error) {
	id := uuid.New()
	if !e.busy.CompareAndSwap(false, true) {
		return skipped(id, SkipReentry), ErrInProgress
	}
	defer e.busy.Store(false)

	if e.layouts != nil && !e.layouts.WaitShiftReleased(ShiftReleaseTimeout) {
		return e.skip(id, SkipShiftHeld), nil
	}
	if err := e.delay(ctx); err != nil {
		return skipped(id, SkipNone), err
	}

	ext, ok := e.journal.TakeLastLayoutSequenceWithSuffix()
	if !ok {
		return e.skip(id, SkipNoToken), nil
	}
	committed := false
	defer func() {
		if !committed && !e.journal.Restore(ext) {
			slog.Debug("[autoconvert] input recorded during attempt, journal cleared", "id", id)
		}
	}()

	p := journal.PayloadFromExtract(ext)
	if p.SuffixHasNewline {
		return e.skip(id, SkipSuffixHasNewline), nil
	}
	dir := ResolveDirection(p.Word, ext.Layout(), e.foregroundDirection)
	converted := layout.Convert(p.Word, dir)
	if converted == p.Word {
		return e.skip(id, SkipNoChangeAfterConvert), nil
	}

	if err := e.apply(p, converted); err != nil {
		return skipped(id, SkipNone), fmt.Errorf("convert last word %s: %w", id, err)
	}
	committed = true
	return e.commit(id, ext, p, converted, dir), nil
}

func (e *Engine) skip(id uuid.UUID, reason SkipReason) Result {
	slog.Debug("[autoconvert] skipped", "id", id, "reason", reason.String())
	return skipped(id, reason)
}

// apply replaces the word on screen, leaving the suffix where it was. A
// spaces-only suffix is stepped over with the arrow keys; any other suffix is
// erased and typed again.
func (e *Engine) apply(p journal.Payload, converted string) error {
	plan := diffutil.PlanReplacement(p.Word, converted)
	if p.SuffixSpacesOnly {
		if err := e.inj.Tap(keys.VKLeft, p.SuffixLen); err != nil {
			return err
		}
		if err := e.inj.Tap(keys.VKBack, plan.Erase); err != nil {
			return err
		}
		if err := e.inj.SendText(plan.Tail); err != nil {
			return err
		}
		return e.inj.Tap(keys.VKRight, p.SuffixLen)
	}
	if err := e.inj.Tap(keys.VKBack, plan.Erase+p.SuffixLen); err != nil {
		return err
	}
	if err := e.inj.SendText(plan.Tail); err != nil {
		return err
	}
	if p.Suffix != "" {
		return e.inj.SendText(p.Suffix)
	}
	return nil
}

// commit records the converted text as programmatic input in the target
// layout, then the suffix, and switches the keyboard to match. Keys typed
// while the replacement was sent leave the journal cleared.
func (e *Engine) commit(id uuid.UUID, ext journal.Extract, p journal.Payload, converted string, dir layout.Direction) Result {
	target := ext.Layout().Flip()
	if !target.Known() {
		target = dir.Target()
	}
	if !e.journal.CommitConversion(ext, converted, target, p.Suffix) {
		slog.Debug("[autoconvert] input recorded during attempt, journal cleared", "id", id)
	}

	e.switchLayout(target)

	r := Result{
		ID:        id,
		Original:  p.Word,
		Converted: converted,
		Direction: dir,
		Applied:   true,
		Summary:   diffutil.Summary(p.Word, converted),
	}
	slog.Info("[autoconvert] converted", "id", id, "direction", dir.String(), "chars", len([]rune(converted)))
	e.notify(r)
	return r
}

func (e *Engine) switchLayout(target layout.Tag) {
	if e.layouts == nil {
		return
	}
	if e.layouts.ForegroundLayout() == target {
		return
	}
	if err := e.layouts.SwitchLayout(); err != nil {
		slog.Debug("[autoconvert] layout switch failed", "target", target.String(), "error", err)
	}
}
