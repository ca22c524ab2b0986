package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/autoconvert"
	"github.com/TanaroSch/layout-switcher/internal/clipboard"
	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/hook"
	"github.com/TanaroSch/layout-switcher/internal/hotkey"
	"github.com/TanaroSch/layout-switcher/internal/inject"
	"github.com/TanaroSch/layout-switcher/internal/ui"
)

// Conversion kinds shown in the history.
const (
	KindAuto      = "autoconvert"
	KindManual    = "last word"
	KindSelection = "selection"
)

// Controller runs the side effects of queued tasks. It is only used from the
// main loop goroutine.
type Controller struct {
	Dispatcher *hook.Dispatcher
	Engine     *autoconvert.Engine
	Selection  *clipboard.Service
	Layouts    inject.LayoutSwitcher
	Errors     hook.ErrorReporter

	OnAutoconvertChanged func(enabled bool)
	OnConverted          func(ui.Conversion)
	OnCaptured           func(hotkey.CaptureUpdate)

	now func() time.Time
}

// Loop handles tasks until ctx is done.
func (c *Controller) Loop(ctx context.Context, tasks <-chan hook.Task) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tasks:
			c.Handle(ctx, t)
		}
	}
}

// Handle runs one task. A panicking handler is logged and the loop goes on.
func (c *Controller) Handle(ctx context.Context, t hook.Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[app] recovered from panic in task handler", "task", t.Kind.String(), "panic", r)
		}
	}()

	switch t.Kind {
	case hook.TaskAutoconvert:
		c.autoconvert(ctx)
	case hook.TaskAction:
		c.action(ctx, t.Action)
	case hook.TaskCaptured:
		slog.Info("[app] hotkey captured", "action", t.Action.String(), "sequence", t.Capture.Text)
		if c.OnCaptured != nil {
			c.OnCaptured(t.Capture)
		}
	default:
		slog.Warn("[app] unknown task", "kind", int(t.Kind))
	}
}

func (c *Controller) action(ctx context.Context, a config.Action) {
	slog.Debug("[app] action", "action", a.String())
	switch a {
	case config.ActionConvertLastWord:
		c.convertSmart(ctx)
	case config.ActionConvertSelection:
		c.convertSelection(ctx)
	case config.ActionSwitchLayout:
		if c.Layouts == nil {
			return
		}
		if err := c.Layouts.SwitchLayout(); err != nil {
			c.report(ui.TitleUI, "Could not switch the keyboard layout.", err)
		}
	case config.ActionPauseToggle:
		on := !c.Dispatcher.Autoconvert()
		c.Dispatcher.SetAutoconvert(on)
		slog.Info("[app] autoconvert toggled", "enabled", on)
		if c.OnAutoconvertChanged != nil {
			c.OnAutoconvertChanged(on)
		}
	}
}

func (c *Controller) autoconvert(ctx context.Context) {
	// The flag may have changed while the task was queued.
	if !c.Dispatcher.Autoconvert() || c.Dispatcher.Paused() {
		return
	}
	r, err := c.Engine.Autoconvert(ctx)
	c.finish(KindAuto, r, err)
}

// convertSmart converts the selection if there is one, otherwise the last
// typed word.
func (c *Controller) convertSmart(ctx context.Context) {
	if c.Selection != nil {
		_, err := c.Selection.ConvertSelection(ctx)
		switch {
		case err == nil:
			return
		case errors.Is(err, clipboard.ErrShiftHeld):
			slog.Debug("[app] shift still held, conversion skipped")
			return
		case !errors.Is(err, clipboard.ErrNoSelection):
			c.report(ui.TitleConvert, "Failed to convert the selection.", err)
			return
		}
	}
	r, err := c.Engine.ConvertLastWord(ctx)
	c.finish(KindManual, r, err)
}

func (c *Controller) convertSelection(ctx context.Context) {
	_, err := c.Selection.ConvertSelection(ctx)
	switch {
	case err == nil, errors.Is(err, clipboard.ErrNoSelection), errors.Is(err, clipboard.ErrShiftHeld):
		if err != nil {
			slog.Debug("[app] selection conversion skipped", "reason", err)
		}
	default:
		c.report(ui.TitleConvert, "Failed to convert the selection.", err)
	}
}

func (c *Controller) finish(kind string, r autoconvert.Result, err error) {
	switch {
	case err == nil:
	case errors.Is(err, autoconvert.ErrInProgress):
		slog.Debug("[app] conversion already running", "kind", kind)
		return
	case errors.Is(err, context.Canceled):
		return
	default:
		c.report(ui.TitleConvert, "Failed to retype the converted word.", err)
		return
	}
	if r.Applied {
		c.converted(kind, r.Original, r.Converted)
	}
}

// SelectionConverted records a selection replaced by the clipboard service.
func (c *Controller) SelectionConverted(original, converted string) {
	c.converted(KindSelection, original, converted)
}

func (c *Controller) converted(kind, original, converted string) {
	if c.OnConverted == nil {
		return
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	c.OnConverted(ui.Conversion{When: now(), Kind: kind, Original: original, Converted: converted})
}

func (c *Controller) report(title, text string, err error) {
	slog.Warn("[app] "+text, "error", err)
	if c.Errors != nil {
		c.Errors.Push(title, text, err)
	}
}
