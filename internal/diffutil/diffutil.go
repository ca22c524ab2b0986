// Package diffutil plans the keystrokes that turn typed text into its
// converted form and describes the change for display.
package diffutil

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Plan describes a replacement done with backspaces: keep the first Keep
// runes, erase Erase runes and type Tail.
type Plan struct {
	Keep  int
	Erase int
	Tail  string
}

func newDMP() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 100 * time.Millisecond
	return dmp
}

// CommonPrefixLen returns the number of leading runes a and b share.
func CommonPrefixLen(a, b string) int {
	return newDMP().DiffCommonPrefix(a, b)
}

// PlanReplacement computes the shortest backspace plan from original to
// converted.
func PlanReplacement(original, converted string) Plan {
	keep := CommonPrefixLen(original, converted)
	tail := []rune(converted)[keep:]
	return Plan{
		Keep:  keep,
		Erase: utf8.RuneCountInString(original) - keep,
		Tail:  string(tail),
	}
}

// Changes returns a character diff of original and converted, merged into
// readable chunks.
func Changes(original, converted string) []diffmatchpatch.Diff {
	dmp := newDMP()
	diffs := dmp.DiffMain(original, converted, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Render marks removed text as [-x-] and added text as {+y+}.
func Render(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Summary is the one-line description shown as "last conversion".
func Summary(original, converted string) string {
	p := PlanReplacement(original, converted)
	if p.Erase == 0 && p.Tail == "" {
		return fmt.Sprintf("%q unchanged", original)
	}
	return fmt.Sprintf("%q → %q (kept %d, erased %d, typed %d)",
		original, converted, p.Keep, p.Erase, utf8.RuneCountInString(p.Tail))
}
