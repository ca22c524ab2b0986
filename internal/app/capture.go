package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/hook"
	"github.com/TanaroSch/layout-switcher/internal/hotkey"
	"github.com/TanaroSch/layout-switcher/internal/journal"
)

// ErrNothingCaptured is returned when capture ended without any chord.
var ErrNothingCaptured = errors.New("no hotkey was captured")

// Captured is the outcome of a capture session.
type Captured struct {
	Sequence config.Sequence
	Last     config.Chord
}

// CollectCapture drains capture updates from tasks until ctx is done and
// returns the last one. Other tasks are ignored; the hook swallows all keys
// while capturing, so none should arrive.
func CollectCapture(ctx context.Context, tasks <-chan hook.Task, onUpdate func(hotkey.CaptureUpdate)) (Captured, error) {
	var last *hotkey.CaptureUpdate
	for {
		select {
		case <-ctx.Done():
			if last == nil {
				return Captured{}, ErrNothingCaptured
			}
			return Captured{Sequence: last.Sequence, Last: last.Chord}, nil
		case t := <-tasks:
			if t.Kind != hook.TaskCaptured {
				slog.Debug("[app] task ignored during capture", "kind", t.Kind.String())
				continue
			}
			u := t.Capture
			last = &u
			if onUpdate != nil {
				onUpdate(u)
			}
		}
	}
}

// ApplyCaptured stores a captured sequence for action into a copy of cfg and
// validates it against the other actions.
func ApplyCaptured(cfg *config.Config, action config.Action, c Captured) (*config.Config, error) {
	out := cfg.Clone()
	out.SetCaptured(action, c.Sequence, c.Last)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Capture installs the keyboard hook, records a hotkey for action for the
// given duration, and saves it into cfg's file.
func Capture(ctx context.Context, cfg *config.Config, action config.Action, d time.Duration, onUpdate func(hotkey.CaptureUpdate)) (*config.Config, error) {
	q := hook.NewTaskQueue(hook.DefaultQueueSize)
	disp := hook.NewDispatcher(cfg, hook.Options{
		Journal:  journal.New(cfg.JournalCapacity),
		Keyboard: hook.NewSystemKeyboard(),
		Queue:    q,
		MapScan:  hook.ScanToVK,
	})
	if !disp.BeginCapture(action, cfg.Sequence(action)) {
		return nil, errors.New("capture could not start")
	}
	h, err := hook.Install(disp)
	if err != nil {
		return nil, fmt.Errorf("capture needs the keyboard hook: %w", err)
	}
	defer h.Stop()

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	c, err := CollectCapture(ctx, q.Tasks(), onUpdate)
	disp.EndCapture()
	if err != nil {
		return nil, err
	}

	out, err := ApplyCaptured(cfg, action, c)
	if err != nil {
		return nil, err
	}
	if err := out.Save(); err != nil {
		return nil, fmt.Errorf("save captured hotkey: %w", err)
	}
	slog.Info("[app] hotkey saved", "action", action.String(), "sequence", hotkey.FormatSequence(&c.Sequence))
	return out, nil
}
