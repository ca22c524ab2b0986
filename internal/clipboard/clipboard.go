// Package clipboard converts the current selection by copying it through the
// system clipboard, which is restored afterwards.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/TanaroSch/layout-switcher/internal/inject"
	"github.com/TanaroSch/layout-switcher/internal/journal"
	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"
)

// MaxSelectionChars is the longest selection that will be converted.
const MaxSelectionChars = 512

var (
	// ErrNoSelection means nothing eligible was selected. It is not a failure.
	ErrNoSelection = errors.New("no convertible selection")
	// ErrShiftHeld means the trigger Shift was still down.
	ErrShiftHeld = errors.New("shift still held")
)

// Store is the clipboard text storage.
type Store interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemStore struct{}

func (systemStore) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemStore) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemStore is the OS clipboard.
func SystemStore() Store { return systemStore{} }

// Snapshot is the clipboard text at some point, if it could be read.
type Snapshot struct {
	Text string
	OK   bool
}

// Service reads selections and replaces them with converted text.
type Service struct {
	store   Store
	inj     inject.Injector
	layouts inject.LayoutSwitcher
	journal *journal.Journal

	delayMs atomic.Uint32

	mu          sync.Mutex
	onConverted func(original, converted string)

	// Copy polling: 10 reads 20 ms apart.
	PollAttempts int
	PollInterval time.Duration
	// Reselect is retried for this long; some editors move the caret late.
	ReselectBudget time.Duration
}

// NewService creates a selection service. j may be nil.
func NewService(store Store, inj inject.Injector, layouts inject.LayoutSwitcher, j *journal.Journal, delayMs uint32) *Service {
	s := &Service{
		store:          store,
		inj:            inj,
		layouts:        layouts,
		journal:        j,
		PollAttempts:   10,
		PollInterval:   20 * time.Millisecond,
		ReselectBudget: 120 * time.Millisecond,
	}
	s.delayMs.Store(delayMs)
	return s
}

// SetDelay changes the pause before the selection is replaced.
func (s *Service) SetDelay(ms uint32) { s.delayMs.Store(ms) }

// OnConverted registers a callback for replaced selections.
func (s *Service) OnConverted(fn func(original, converted string)) {
	s.mu.Lock()
	s.onConverted = fn
	s.mu.Unlock()
}

// Snapshot reads the clipboard.
func (s *Service) Snapshot() Snapshot {
	text, err := s.store.ReadAll()
	if err != nil {
		slog.Debug("[clipboard] read failed", "error", err)
		return Snapshot{}
	}
	return Snapshot{Text: text, OK: true}
}

// Restore writes a snapshot back. An unreadable snapshot is left alone.
func (s *Service) Restore(snap Snapshot) error {
	if !snap.OK {
		return nil
	}
	if err := s.store.WriteAll(snap.Text); err != nil {
		return fmt.Errorf("restore clipboard: %w", err)
	}
	return nil
}

// Eligible reports whether text can be converted as a selection.
func Eligible(text string, maxChars int) bool {
	return text != "" && !strings.ContainsAny(text, "\r\n") && utf8.RuneCountInString(text) <= maxChars
}

// CopySelection sends Ctrl+C and waits for the clipboard to change. A unique
// sentinel is placed first so an unchanged clipboard is detectable. The
// previous clipboard is restored in all cases.
func (s *Service) CopySelection(ctx context.Context, maxChars int) (string, error) {
	snap := s.Snapshot()
	defer func() {
		if err := s.Restore(snap); err != nil {
			slog.Warn("[clipboard] failed to restore clipboard", "error", err)
		}
	}()

	sentinel := "layout-switcher:" + uuid.NewString()
	if err := s.store.WriteAll(sentinel); err != nil {
		return "", fmt.Errorf("prepare clipboard: %w", err)
	}
	if err := s.inj.SendChord(keys.ModControl, keys.VKC); err != nil {
		return "", fmt.Errorf("copy selection: %w", err)
	}

	for i := 0; i < s.PollAttempts; i++ {
		text, err := s.store.ReadAll()
		if err == nil && text != sentinel {
			if !Eligible(text, maxChars) {
				return "", ErrNoSelection
			}
			return text, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.PollInterval):
		}
	}
	return "", ErrNoSelection
}

// ConvertSelection replaces the selected text with its other-layout form and
// selects the result again, so repeating the action toggles it back.
func (s *Service) ConvertSelection(ctx context.Context) (string, error) {
	if s.layouts != nil && !s.layouts.WaitShiftReleased(150*time.Millisecond) {
		return "", ErrShiftHeld
	}

	text, err := s.CopySelection(ctx, MaxSelectionChars)
	if err != nil {
		return "", err
	}
	converted := layout.ConvertAuto(text)
	if converted == text {
		slog.Debug("[clipboard] selection unchanged by conversion", "chars", utf8.RuneCountInString(text))
		return converted, nil
	}

	if err := sleepCtx(ctx, time.Duration(s.delayMs.Load())*time.Millisecond); err != nil {
		return "", err
	}
	if err := s.inj.Tap(keys.VKDelete, 1); err != nil {
		return "", fmt.Errorf("failed to delete selection: %w", err)
	}
	if err := s.inj.SendText(converted); err != nil {
		return "", fmt.Errorf("failed to insert converted text: %w", err)
	}
	if err := s.reselect(len(utf16.Encode([]rune(converted)))); err != nil {
		return "", fmt.Errorf("failed to reselect inserted text: %w", err)
	}

	// Caret and selection moved; the typed context no longer matches.
	if s.journal != nil {
		s.journal.Clear()
	}
	if s.layouts != nil {
		if err := s.layouts.SwitchLayout(); err != nil {
			slog.Debug("[clipboard] layout switch failed", "error", err)
		}
	}
	slog.Info("[clipboard] selection converted", "chars", utf8.RuneCountInString(converted))

	s.mu.Lock()
	fn := s.onConverted
	s.mu.Unlock()
	if fn != nil {
		fn(text, converted)
	}
	return converted, nil
}

func (s *Service) reselect(units int) error {
	deadline := time.Now().Add(s.ReselectBudget)
	for {
		err := s.inj.Reselect(units)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(5 * time.Millisecond)
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
