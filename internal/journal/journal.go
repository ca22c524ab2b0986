// Package journal keeps a short history of what the user typed in the
// foreground window, split into runs tagged with the keyboard layout that
// produced them, so the last word can be retyped in the other layout.
package journal

import (
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// DefaultCapacity is the number of characters kept when no capacity is given.
const DefaultCapacity = 100

// Journal is safe for concurrent use. The lock is only held for the duration
// of a single operation.
type Journal struct {
	mu         sync.Mutex
	runs       []Run
	totalChars int
	capChars   int
	// gen counts mutations. An Extract remembers it so a write-back can tell
	// whether keys were recorded after the take.
	gen uint64

	lastFG                 uintptr
	fgKnown                bool
	lastTokenAutoconverted bool
}

// New creates a journal holding at most capChars characters.
func New(capChars int) *Journal {
	if capChars <= 0 {
		capChars = DefaultCapacity
	}
	return &Journal{capChars: capChars}
}

// Capacity returns the character capacity.
func (j *Journal) Capacity() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.capChars
}

// SetCapacity changes the capacity, dropping the oldest characters that no
// longer fit.
func (j *Journal) SetCapacity(capChars int) {
	if capChars <= 0 {
		capChars = DefaultCapacity
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.capChars = capChars
	if j.totalChars > j.capChars {
		j.gen++
		j.trimLocked()
	}
}

// PushText appends text typed in the given layout.
func (j *Journal) PushText(text string, tag layout.Tag, origin Origin) {
	if text == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, r := range splitRuns(text, tag, origin) {
		j.pushRunLocked(r)
	}
}

// PushRun appends a run, merging it into the last run when the metadata matches.
func (j *Journal) PushRun(r Run) {
	if r.Text == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pushRunLocked(r)
}

// PushRuns appends runs in order.
func (j *Journal) PushRuns(runs []Run) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, r := range runs {
		if r.Text != "" {
			j.pushRunLocked(r)
		}
	}
}

func (j *Journal) pushRunLocked(r Run) {
	j.gen++
	if n := len(j.runs); n > 0 && j.runs[n-1].sameMeta(r) {
		j.runs[n-1].Text += r.Text
	} else {
		j.runs = append(j.runs, r)
	}
	j.totalChars += r.Len()
	j.trimLocked()
}

// trimLocked drops the oldest characters until the journal fits its capacity.
func (j *Journal) trimLocked() {
	for j.totalChars > j.capChars && len(j.runs) > 0 {
		excess := j.totalChars - j.capChars
		front := []rune(j.runs[0].Text)
		if len(front) <= excess {
			j.runs = j.runs[1:]
			j.totalChars -= len(front)
			continue
		}
		j.runs[0].Text = string(front[excess:])
		j.totalChars -= excess
	}
}

// Backspace removes the most recent character.
func (j *Journal) Backspace() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.backspaceLocked()
}

// Clear forgets everything, including the autoconverted flag.
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.clearLocked()
}

func (j *Journal) clearLocked() {
	j.gen++
	j.runs = nil
	j.totalChars = 0
	j.lastTokenAutoconverted = false
}

// Runs returns a copy of the stored runs.
func (j *Journal) Runs() []Run {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Run, len(j.runs))
	copy(out, j.runs)
	return out
}

// Text returns the stored text.
func (j *Journal) Text() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return joinRuns(j.runs)
}

// Len returns the number of stored characters.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.totalChars
}

// InvalidateIfForegroundChanged clears the journal when fg differs from the
// window seen last. A zero fg always clears. It reports whether it cleared.
func (j *Journal) InvalidateIfForegroundChanged(fg uintptr) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.invalidateLocked(fg)
}

func (j *Journal) invalidateLocked(fg uintptr) bool {
	switch {
	case fg == 0:
		j.clearLocked()
		j.lastFG, j.fgKnown = 0, false
		return true
	case !j.fgKnown:
		j.lastFG, j.fgKnown = fg, true
		return false
	case fg != j.lastFG:
		slog.Debug("[journal] foreground changed, clearing", "from", j.lastFG, "to", fg)
		j.clearLocked()
		j.lastFG = fg
		return true
	}
	return false
}

// MarkLastTokenAutoconverted records that the token at the end of the journal
// was produced by autoconvert.
func (j *Journal) MarkLastTokenAutoconverted() {
	j.mu.Lock()
	j.lastTokenAutoconverted = true
	j.mu.Unlock()
}

// LastTokenAutoconverted reports the flag set by MarkLastTokenAutoconverted.
func (j *Journal) LastTokenAutoconverted() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastTokenAutoconverted
}

func (j *Journal) resetAutoconvertedLocked() { j.lastTokenAutoconverted = false }

// popWhitespaceLocked removes trailing whitespace runs, returned newest first.
func (j *Journal) popWhitespaceLocked() []Run {
	var suffix []Run
	for n := len(j.runs); n > 0 && j.runs[n-1].Kind == Whitespace; n = len(j.runs) {
		suffix = append(suffix, j.popLocked())
	}
	return suffix
}

func (j *Journal) popLocked() Run {
	j.gen++
	n := len(j.runs)
	r := j.runs[n-1]
	j.runs = j.runs[:n-1]
	j.totalChars -= r.Len()
	return r
}

// restoreLocked pushes runs given newest first back onto the journal.
func (j *Journal) restoreLocked(newestFirst []Run) {
	j.gen++
	for i := len(newestFirst) - 1; i >= 0; i-- {
		r := newestFirst[i]
		j.runs = append(j.runs, r)
		j.totalChars += r.Len()
	}
}

func reverseRuns(runs []Run) {
	for i, k := 0, len(runs)-1; i < k; i, k = i+1, k-1 {
		runs[i], runs[k] = runs[k], runs[i]
	}
}

// TakeLastWordWithSuffix pops the trailing whitespace and the contiguous
// non-whitespace token before it. When there is no token the journal is left
// untouched and ok is false.
//
// A suffix starting with a convertible punctuation mark followed only by
// spaces or tabs has that mark moved into the word.
func (j *Journal) TakeLastWordWithSuffix() (word, suffix string, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	suffixRuns := j.popWhitespaceLocked()
	var token []Run
	for n := len(j.runs); n > 0 && j.runs[n-1].Kind == Text; n = len(j.runs) {
		token = append(token, j.popLocked())
	}
	if len(token) == 0 {
		j.restoreLocked(suffixRuns)
		return "", "", false
	}
	reverseRuns(token)
	reverseRuns(suffixRuns)

	p := NormalizePayload(joinRuns(token), joinRuns(suffixRuns))
	return p.Word, p.Suffix, true
}

// TakeLastLayoutRunWithSuffix pops the trailing whitespace runs and the single
// Text run before them. Runs of any origin qualify, so text written back by a
// conversion can be taken again and toggled back.
func (j *Journal) TakeLastLayoutRunWithSuffix() (Extract, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	suffix := j.popWhitespaceLocked()
	n := len(j.runs)
	if n == 0 || j.runs[n-1].Kind != Text {
		j.restoreLocked(suffix)
		return Extract{}, false
	}
	run := j.popLocked()
	reverseRuns(suffix)
	return Extract{Runs: []Run{run}, Suffix: suffix, gen: j.gen}, true
}

// TakeLastLayoutSequenceWithSuffix is like TakeLastLayoutRunWithSuffix but
// keeps popping runs, whitespace included, while they share the layout and
// origin of the last Text run. It returns the whole phrase typed in one layout.
func (j *Journal) TakeLastLayoutSequenceWithSuffix() (Extract, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	suffix := j.popWhitespaceLocked()
	n := len(j.runs)
	if n == 0 || j.runs[n-1].Kind != Text {
		j.restoreLocked(suffix)
		return Extract{}, false
	}
	last := j.runs[n-1]
	var seq []Run
	for n := len(j.runs); n > 0; n = len(j.runs) {
		r := j.runs[n-1]
		if r.Layout != last.Layout || r.Origin != last.Origin {
			break
		}
		seq = append(seq, j.popLocked())
	}
	reverseRuns(seq)
	reverseRuns(suffix)
	return Extract{Runs: seq, Suffix: suffix, gen: j.gen}, true
}

// Restore pushes an extract back, leaving the journal as it was before the
// take. When anything was recorded since the take the order on screen is no
// longer known, so the journal is cleared instead and Restore returns false.
func (j *Journal) Restore(e Extract) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.gen != e.gen {
		slog.Debug("[journal] changed during conversion, clearing")
		j.clearLocked()
		return false
	}
	for _, r := range e.Runs {
		j.pushRunLocked(r)
	}
	for _, r := range e.Suffix {
		j.pushRunLocked(r)
	}
	return true
}

// CommitConversion writes text back in place of the extract as programmatic
// input tagged tag, followed by suffix, and marks the token autoconverted.
// The suffix keeps the metadata of the extract's suffix runs. Like Restore it
// clears the journal and returns false when the journal changed since the take.
func (j *Journal) CommitConversion(e Extract, text string, tag layout.Tag, suffix string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.gen != e.gen {
		slog.Debug("[journal] changed during conversion, clearing")
		j.clearLocked()
		return false
	}
	for _, r := range splitRuns(text, tag, Programmatic) {
		j.pushRunLocked(r)
	}
	switch n := len(e.Suffix); {
	case suffix == e.SuffixText():
		for _, r := range e.Suffix {
			j.pushRunLocked(r)
		}
	case n > 0 && suffix != "":
		last := e.Suffix[n-1]
		for _, r := range splitRuns(suffix, last.Layout, last.Origin) {
			j.pushRunLocked(r)
		}
	}
	j.lastTokenAutoconverted = true
	return true
}

// LastCharTriggersAutoconvert reports whether the last character closes a
// token: sentence punctuation or whitespace right after a non-whitespace
// character.
func (j *Journal) LastCharTriggersAutoconvert() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	var last, prev rune
	have := 0
	for i := len(j.runs) - 1; i >= 0 && have < 2; i-- {
		rs := []rune(j.runs[i].Text)
		for k := len(rs) - 1; k >= 0 && have < 2; k-- {
			if have == 0 {
				last = rs[k]
			} else {
				prev = rs[k]
			}
			have++
		}
	}
	if have < 2 {
		return false
	}
	if unicode.IsSpace(prev) {
		return false
	}
	return unicode.IsSpace(last) || strings.ContainsRune(".,!?;:", last)
}
