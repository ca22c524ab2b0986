package journal

import (
	"strings"
	"unicode"

	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// Origin records who produced a run of text.
type Origin uint8

const (
	Physical Origin = iota
	Programmatic
)

func (o Origin) String() string {
	if o == Programmatic {
		return "programmatic"
	}
	return "physical"
}

// Kind separates word characters from whitespace.
type Kind uint8

const (
	Text Kind = iota
	Whitespace
)

func (k Kind) String() string {
	if k == Whitespace {
		return "whitespace"
	}
	return "text"
}

// Run is a contiguous span of input sharing layout, origin and kind.
type Run struct {
	Text   string
	Layout layout.Tag
	Origin Origin
	Kind   Kind
}

// Len returns the length in characters.
func (r Run) Len() int { return len([]rune(r.Text)) }

func (r Run) sameMeta(o Run) bool {
	return r.Layout == o.Layout && r.Origin == o.Origin && r.Kind == o.Kind
}

// Extract is a span taken off the end of the journal: the word runs in typing
// order followed by the trailing whitespace runs.
type Extract struct {
	Runs   []Run
	Suffix []Run

	gen uint64
}

// Text joins the word runs.
func (e Extract) Text() string { return joinRuns(e.Runs) }

// SuffixText joins the suffix runs.
func (e Extract) SuffixText() string { return joinRuns(e.Suffix) }

// Layout is the layout of the first word run.
func (e Extract) Layout() layout.Tag {
	if len(e.Runs) == 0 {
		return layout.TagUnknown
	}
	return e.Runs[0].Layout
}

func joinRuns(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// splitRuns cuts text into alternating Text and Whitespace runs.
func splitRuns(text string, tag layout.Tag, origin Origin) []Run {
	var out []Run
	var cur strings.Builder
	curKind := Text
	for i, r := range text {
		k := kindOf(r)
		if i > 0 && k != curKind && cur.Len() > 0 {
			out = append(out, Run{Text: cur.String(), Layout: tag, Origin: origin, Kind: curKind})
			cur.Reset()
		}
		curKind = k
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, Run{Text: cur.String(), Layout: tag, Origin: origin, Kind: curKind})
	}
	return out
}

func kindOf(r rune) Kind {
	if unicode.IsSpace(r) {
		return Whitespace
	}
	return Text
}

// IsConvertiblePunct reports whether r is punctuation that lives on a letter
// key in the Russian layout and therefore changes under conversion.
func IsConvertiblePunct(r rune) bool {
	switch r {
	case '?', '/', ',', '.':
		return true
	}
	return false
}

func onlyConvertiblePunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsConvertiblePunct(r) {
			return false
		}
	}
	return true
}
