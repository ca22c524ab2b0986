package journal

import (
	"reflect"
	"testing"

	"github.com/TanaroSch/layout-switcher/internal/keys"
	"github.com/TanaroSch/layout-switcher/internal/layout"
)

func TestTakeLastWordWithSuffix(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantWord   string
		wantSuffix string
		wantOK     bool
		wantRest   string
	}{
		{name: "word with trailing spaces", input: "hello world   ", wantWord: "world", wantSuffix: "   ", wantOK: true, wantRest: "hello "},
		{name: "punctuation stays with word", input: "hello, ", wantWord: "hello,", wantSuffix: " ", wantOK: true, wantRest: ""},
		{name: "no suffix", input: "abc", wantWord: "abc", wantSuffix: "", wantOK: true, wantRest: ""},
		{name: "newline suffix", input: "abc\n", wantWord: "abc", wantSuffix: "\n", wantOK: true, wantRest: ""},
		{name: "whitespace only", input: " \t ", wantOK: false, wantRest: " \t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New(100)
			j.PushText(tt.input, layout.TagEn, Physical)

			word, suffix, ok := j.TakeLastWordWithSuffix()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if word != tt.wantWord || suffix != tt.wantSuffix {
				t.Fatalf("got (%q, %q), want (%q, %q)", word, suffix, tt.wantWord, tt.wantSuffix)
			}
			if got := j.Text(); got != tt.wantRest {
				t.Fatalf("journal text = %q, want %q", got, tt.wantRest)
			}
		})
	}
}

func TestTakeLastWordWithSuffixEmptyJournal(t *testing.T) {
	j := New(10)
	if _, _, ok := j.TakeLastWordWithSuffix(); ok {
		t.Fatal("expected no word in an empty journal")
	}
}

func TestPushMergesMatchingRuns(t *testing.T) {
	j := New(100)
	j.PushText("ab", layout.TagEn, Physical)
	j.PushText("cd", layout.TagEn, Physical)
	j.PushText("ef", layout.TagRu, Physical)
	j.PushText("gh", layout.TagRu, Programmatic)

	want := []Run{
		{Text: "abcd", Layout: layout.TagEn, Origin: Physical, Kind: Text},
		{Text: "ef", Layout: layout.TagRu, Origin: Physical, Kind: Text},
		{Text: "gh", Layout: layout.TagRu, Origin: Programmatic, Kind: Text},
	}
	if got := j.Runs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Runs() = %+v, want %+v", got, want)
	}
}

func TestPushTextSplitsWhitespace(t *testing.T) {
	j := New(100)
	j.PushText("hi  there\t", layout.TagEn, Physical)

	got := j.Runs()
	kinds := make([]Kind, len(got))
	for i, r := range got {
		kinds[i] = r.Kind
	}
	wantKinds := []Kind{Text, Whitespace, Text, Whitespace}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
	}
	if got[1].Text != "  " || got[3].Text != "\t" {
		t.Fatalf("unexpected whitespace runs: %+v", got)
	}
}

func TestCapacityDropsOldestCharacters(t *testing.T) {
	j := New(5)
	j.PushText("abc", layout.TagEn, Physical)
	j.PushText("привет", layout.TagRu, Physical)

	if got := j.Text(); got != "ривет" {
		t.Fatalf("Text() = %q, want %q", got, "ривет")
	}
	if got := j.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	if runs := j.Runs(); len(runs) != 1 || runs[0].Layout != layout.TagRu {
		t.Fatalf("expected a single ru run, got %+v", runs)
	}
}

func TestSetCapacityTrims(t *testing.T) {
	j := New(10)
	j.PushText("hello world", layout.TagEn, Physical)
	j.SetCapacity(5)
	if got := j.Text(); got != "world" {
		t.Fatalf("Text() = %q, want %q", got, "world")
	}
	if j.Capacity() != 5 {
		t.Fatalf("Capacity() = %d", j.Capacity())
	}
	j.SetCapacity(0)
	if j.Capacity() != DefaultCapacity {
		t.Fatalf("Capacity() = %d, want default", j.Capacity())
	}
}

func TestBackspace(t *testing.T) {
	j := New(100)
	j.PushText("ab", layout.TagEn, Physical)
	j.PushText("в", layout.TagRu, Physical)

	j.Backspace()
	if runs := j.Runs(); len(runs) != 1 || runs[0].Text != "ab" {
		t.Fatalf("expected the emptied run to be dropped, got %+v", runs)
	}
	j.Backspace()
	j.Backspace()
	j.Backspace()
	if j.Len() != 0 || len(j.Runs()) != 0 {
		t.Fatalf("expected empty journal, got %q", j.Text())
	}
}

func TestTakeLastLayoutRunWithSuffix(t *testing.T) {
	j := New(100)
	j.PushText("hello", layout.TagEn, Physical)
	j.PushText("ghbdtn", layout.TagRu, Physical)
	j.PushText("  ", layout.TagRu, Physical)

	e, ok := j.TakeLastLayoutRunWithSuffix()
	if !ok {
		t.Fatal("expected a run")
	}
	if len(e.Runs) != 1 || e.Runs[0].Text != "ghbdtn" || e.Layout() != layout.TagRu {
		t.Fatalf("unexpected runs: %+v", e.Runs)
	}
	if e.SuffixText() != "  " {
		t.Fatalf("suffix = %q, want two spaces", e.SuffixText())
	}
	if got := j.Text(); got != "hello" {
		t.Fatalf("journal text = %q, want %q", got, "hello")
	}
}

func TestTakeLastLayoutRunWhitespaceOnlyRestores(t *testing.T) {
	j := New(100)
	j.PushText(" \n", layout.TagEn, Physical)
	before := j.Runs()

	if _, ok := j.TakeLastLayoutRunWithSuffix(); ok {
		t.Fatal("expected no run")
	}
	if _, ok := j.TakeLastLayoutSequenceWithSuffix(); ok {
		t.Fatal("expected no sequence")
	}
	if got := j.Runs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("journal changed: %+v, want %+v", got, before)
	}
}

func TestTakeLastLayoutSequenceWithSuffix(t *testing.T) {
	j := New(100)
	j.PushText("привет ", layout.TagRu, Physical)
	j.PushText("hello world", layout.TagEn, Physical)
	j.PushText(" ", layout.TagEn, Physical)

	e, ok := j.TakeLastLayoutSequenceWithSuffix()
	if !ok {
		t.Fatal("expected a sequence")
	}
	if got := e.Text(); got != "hello world" {
		t.Fatalf("sequence text = %q, want %q", got, "hello world")
	}
	if got := e.SuffixText(); got != " " {
		t.Fatalf("suffix = %q, want a space", got)
	}
	if got := j.Text(); got != "привет " {
		t.Fatalf("journal text = %q, want %q", got, "привет ")
	}
}

func TestRestoreAfterTake(t *testing.T) {
	j := New(100)
	j.PushText("abc,", layout.TagEn, Physical)
	j.PushText("  ", layout.TagEn, Physical)
	before := j.Runs()

	e, ok := j.TakeLastLayoutRunWithSuffix()
	if !ok {
		t.Fatal("expected a run")
	}
	if !j.Restore(e) {
		t.Fatal("Restore reported a concurrent change")
	}
	if got := j.Runs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("Runs() after restore = %+v, want %+v", got, before)
	}
}

func TestWriteBackAfterNewInputClears(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(j *Journal)
		write  func(j *Journal, e Extract) bool
	}{
		{
			name:   "restore after push",
			mutate: func(j *Journal) { j.PushText("x", layout.TagEn, Physical) },
			write:  func(j *Journal, e Extract) bool { return j.Restore(e) },
		},
		{
			name:   "restore after backspace",
			mutate: func(j *Journal) { j.Backspace() },
			write:  func(j *Journal, e Extract) bool { return j.Restore(e) },
		},
		{
			name:   "commit after push",
			mutate: func(j *Journal) { j.PushText("x", layout.TagEn, Physical) },
			write: func(j *Journal, e Extract) bool {
				return j.CommitConversion(e, "привет", layout.TagRu, e.SuffixText())
			},
		},
		{
			name:   "commit after clear and retype",
			mutate: func(j *Journal) { j.Clear(); j.PushText("abc", layout.TagEn, Physical) },
			write: func(j *Journal, e Extract) bool {
				return j.CommitConversion(e, "привет", layout.TagRu, e.SuffixText())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New(100)
			j.PushText("one ghbdtn ", layout.TagEn, Physical)
			e, ok := j.TakeLastLayoutRunWithSuffix()
			if !ok {
				t.Fatal("expected a run")
			}
			tt.mutate(j)
			if tt.write(j, e) {
				t.Fatal("write-back succeeded over newer input")
			}
			if got := j.Text(); got != "" {
				t.Fatalf("journal = %q, want cleared", got)
			}
		})
	}
}

func TestCommitConversion(t *testing.T) {
	j := New(100)
	j.PushText("ghbdtn", layout.TagEn, Physical)
	j.PushText(", ", layout.TagEn, Physical)

	e, ok := j.TakeLastLayoutRunWithSuffix()
	if !ok {
		t.Fatal("expected a run")
	}
	p := PayloadFromExtract(e)
	if !j.CommitConversion(e, "привет?", layout.TagRu, p.Suffix) {
		t.Fatal("CommitConversion reported a concurrent change")
	}
	want := []Run{
		{Text: "привет?", Layout: layout.TagRu, Origin: Programmatic, Kind: Text},
		{Text: " ", Layout: layout.TagEn, Origin: Physical, Kind: Whitespace},
	}
	if got := j.Runs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Runs() = %+v, want %+v", got, want)
	}
	if !j.LastTokenAutoconverted() {
		t.Fatal("expected the token to be marked autoconverted")
	}
}

func TestConvertedRunCanBeTakenAgain(t *testing.T) {
	j := New(100)
	j.PushText("ghbdtn", layout.TagEn, Physical)
	j.PushText(" ", layout.TagEn, Physical)

	e, ok := j.TakeLastLayoutSequenceWithSuffix()
	if !ok {
		t.Fatal("expected a sequence")
	}
	converted := layout.Convert(e.Text(), layout.EnToRu)
	j.PushText(converted, e.Layout().Flip(), Programmatic)
	j.PushRuns(e.Suffix)

	again, ok := j.TakeLastLayoutSequenceWithSuffix()
	if !ok {
		t.Fatal("expected the converted run to be taken again")
	}
	if again.Layout() != layout.TagRu || again.Runs[0].Origin != Programmatic {
		t.Fatalf("unexpected metadata: %+v", again.Runs[0])
	}
	if again.Text() != "привет" {
		t.Fatalf("text = %q, want привет", again.Text())
	}
	if back := layout.Convert(again.Text(), layout.RuToEn); back != "ghbdtn" {
		t.Fatalf("toggle back = %q, want ghbdtn", back)
	}
}

func TestLastCharTriggersAutoconvert(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "abc ", want: true},
		{input: "abc.", want: true},
		{input: "abc!", want: true},
		{input: "abc\n", want: true},
		{input: "abc  ", want: false},
		{input: "abc", want: false},
		{input: "a", want: false},
		{input: " .", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			j := New(100)
			j.PushText(tt.input, layout.TagEn, Physical)
			if got := j.LastCharTriggersAutoconvert(); got != tt.want {
				t.Fatalf("LastCharTriggersAutoconvert(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTriggerAcrossRuns(t *testing.T) {
	j := New(100)
	j.PushText("abc", layout.TagEn, Physical)
	j.PushText(" ", layout.TagRu, Physical)
	if !j.LastCharTriggersAutoconvert() {
		t.Fatal("expected trigger across a layout boundary")
	}
}

func TestInvalidateIfForegroundChanged(t *testing.T) {
	j := New(100)
	if j.InvalidateIfForegroundChanged(1) {
		t.Fatal("first window must only be recorded")
	}
	j.PushText("abc", layout.TagEn, Physical)
	j.MarkLastTokenAutoconverted()

	if j.InvalidateIfForegroundChanged(1) {
		t.Fatal("same window must not clear")
	}
	if j.Text() != "abc" {
		t.Fatalf("text = %q, want abc", j.Text())
	}
	if !j.InvalidateIfForegroundChanged(2) {
		t.Fatal("window change must clear")
	}
	if j.Len() != 0 || j.LastTokenAutoconverted() {
		t.Fatal("expected a cleared journal and flag")
	}

	j.PushText("x", layout.TagEn, Physical)
	if !j.InvalidateIfForegroundChanged(0) || j.Len() != 0 {
		t.Fatal("missing foreground window must clear")
	}
}

func TestClearResetsAutoconvertedFlag(t *testing.T) {
	j := New(100)
	j.MarkLastTokenAutoconverted()
	j.Clear()
	if j.LastTokenAutoconverted() {
		t.Fatal("Clear must reset the autoconverted flag")
	}
}

func TestNormalizePayload(t *testing.T) {
	tests := []struct {
		name       string
		word       string
		suffix     string
		wantWord   string
		wantSuffix string
		spacesOnly bool
		newline    bool
	}{
		{name: "question mark merged", word: "ghbdtn", suffix: "? ", wantWord: "ghbdtn?", wantSuffix: " ", spacesOnly: true},
		{name: "comma with mixed blanks", word: "ghbdtn", suffix: ",   \t", wantWord: "ghbdtn,", wantSuffix: "   \t", spacesOnly: true},
		{name: "punctuation alone", word: "ghbdtn", suffix: ".", wantWord: "ghbdtn.", wantSuffix: ""},
		{name: "newline blocks merge", word: "ghbdtn", suffix: "?\n", wantWord: "ghbdtn", wantSuffix: "?\n", newline: true},
		{name: "letter after punctuation", word: "ghbdtn", suffix: "?x", wantWord: "ghbdtn", wantSuffix: "?x"},
		{name: "exclamation is not convertible", word: "ghbdtn", suffix: "! ", wantWord: "ghbdtn", wantSuffix: "! "},
		{name: "plain spaces", word: "abc", suffix: "  ", wantWord: "abc", wantSuffix: "  ", spacesOnly: true},
		{name: "empty suffix", word: "abc", suffix: "", wantWord: "abc", wantSuffix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizePayload(tt.word, tt.suffix)
			if p.Word != tt.wantWord || p.Suffix != tt.wantSuffix {
				t.Fatalf("got (%q, %q), want (%q, %q)", p.Word, p.Suffix, tt.wantWord, tt.wantSuffix)
			}
			if p.SuffixSpacesOnly != tt.spacesOnly {
				t.Fatalf("SuffixSpacesOnly = %v, want %v", p.SuffixSpacesOnly, tt.spacesOnly)
			}
			if p.SuffixHasNewline != tt.newline {
				t.Fatalf("SuffixHasNewline = %v, want %v", p.SuffixHasNewline, tt.newline)
			}
			if p.WordLen != len([]rune(p.Word)) || p.SuffixLen != len([]rune(p.Suffix)) {
				t.Fatalf("lengths do not match: %+v", p)
			}
		})
	}
}

type fakeKeyboard struct {
	fg         uintptr
	tag        layout.Tag
	ctrlOrAlt  bool
	chars      map[uint32]string
	deadKeys   map[uint32]bool
	translated int
}

func (f *fakeKeyboard) Foreground() uintptr { return f.fg }
func (f *fakeKeyboard) Layout() layout.Tag  { return f.tag }
func (f *fakeKeyboard) CtrlOrAltDown() bool { return f.ctrlOrAlt }
func (f *fakeKeyboard) Translate(vk, _ uint32) (string, bool) {
	f.translated++
	if f.deadKeys[vk] {
		return "", false
	}
	s, ok := f.chars[vk]
	return s, ok
}

func newFakeKeyboard() *fakeKeyboard {
	return &fakeKeyboard{
		fg:  7,
		tag: layout.TagEn,
		chars: map[uint32]string{
			0x41:         "a",
			0x42:         "b",
			0xBC:         ",",
			keys.VKSpace: " ",
			0x01:         "\x01",
		},
		deadKeys: map[uint32]bool{0xDE: true},
	}
}

func keydown(vk uint32) keys.Event { return keys.Event{VK: vk, Down: true} }

func TestRecordKeydown(t *testing.T) {
	kb := newFakeKeyboard()
	j := New(100)

	if text, ok := j.RecordKeydown(keydown(0x41), kb); !ok || text != "a" {
		t.Fatalf("RecordKeydown(A) = (%q, %v)", text, ok)
	}
	j.RecordKeydown(keydown(0x42), kb)
	j.RecordKeydown(keydown(keys.VKSpace), kb)
	if got := j.Text(); got != "ab " {
		t.Fatalf("text = %q, want %q", got, "ab ")
	}
	if !j.LastCharTriggersAutoconvert() {
		t.Fatal("space after a word should trigger")
	}

	injected := keys.Event{VK: 0x41, Down: true, Flags: keys.FlagInjected}
	if _, ok := j.RecordKeydown(injected, kb); ok {
		t.Fatal("injected events must be ignored")
	}

	j.RecordKeydown(keydown(keys.VKBack), kb)
	if got := j.Text(); got != "ab" {
		t.Fatalf("text after backspace = %q, want ab", got)
	}

	if text, _ := j.RecordKeydown(keydown(keys.VKReturn), kb); text != "\n" {
		t.Fatalf("enter = %q, want newline", text)
	}
	if text, _ := j.RecordKeydown(keydown(keys.VKTab), kb); text != "\t" {
		t.Fatalf("tab = %q, want tab", text)
	}
	if got := j.Text(); got != "ab\n\t" {
		t.Fatalf("text = %q", got)
	}

	j.RecordKeydown(keydown(keys.VKLeft), kb)
	if j.Len() != 0 {
		t.Fatalf("navigation must clear, got %q", j.Text())
	}
}

func TestRecordKeydownRejects(t *testing.T) {
	tests := []struct {
		name string
		vk   uint32
	}{
		{name: "dead key", vk: 0xDE},
		{name: "control character", vk: 0x01},
		{name: "untranslatable", vk: 0x99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := newFakeKeyboard()
			j := New(100)
			j.RecordKeydown(keydown(0x41), kb)
			if text, ok := j.RecordKeydown(keydown(tt.vk), kb); ok || text != "" {
				t.Fatalf("got (%q, %v), want nothing", text, ok)
			}
			if got := j.Text(); got != "a" {
				t.Fatalf("text = %q, want a", got)
			}
		})
	}
}

func TestRecordKeydownCtrlOrAltClears(t *testing.T) {
	kb := newFakeKeyboard()
	j := New(100)
	j.RecordKeydown(keydown(0x41), kb)

	kb.ctrlOrAlt = true
	kb.translated = 0
	if _, ok := j.RecordKeydown(keydown(0x42), kb); ok {
		t.Fatal("chord must not record text")
	}
	if j.Len() != 0 {
		t.Fatalf("chord must clear, got %q", j.Text())
	}
	if kb.translated != 0 {
		t.Fatal("chord must not be translated")
	}
}

func TestRecordKeydownForegroundChange(t *testing.T) {
	kb := newFakeKeyboard()
	j := New(100)
	j.RecordKeydown(keydown(0x41), kb)
	j.RecordKeydown(keydown(0x42), kb)

	kb.fg = 8
	j.RecordKeydown(keydown(0x41), kb)
	if got := j.Text(); got != "a" {
		t.Fatalf("text = %q, want only the key typed in the new window", got)
	}
}

func TestRecordKeydownResetsAutoconvertedOnLetters(t *testing.T) {
	kb := newFakeKeyboard()
	j := New(100)
	j.RecordKeydown(keydown(0x41), kb)
	j.MarkLastTokenAutoconverted()

	j.RecordKeydown(keydown(0xBC), kb)
	if !j.LastTokenAutoconverted() {
		t.Fatal("punctuation must keep the flag")
	}
	j.RecordKeydown(keydown(0x42), kb)
	if j.LastTokenAutoconverted() {
		t.Fatal("a letter must reset the flag")
	}
}

func TestRecordKeydownTagsLayout(t *testing.T) {
	kb := newFakeKeyboard()
	j := New(100)
	j.RecordKeydown(keydown(0x41), kb)
	kb.tag = layout.TagRu
	kb.chars[0x41] = "ф"
	j.RecordKeydown(keydown(0x41), kb)

	runs := j.Runs()
	if len(runs) != 2 || runs[0].Layout != layout.TagEn || runs[1].Layout != layout.TagRu {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if runs[1].Origin != Physical {
		t.Fatalf("typed text must be physical, got %v", runs[1].Origin)
	}
}
