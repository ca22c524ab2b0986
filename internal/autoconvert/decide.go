package autoconvert

import (
	"strings"
	"unicode"

	"github.com/TanaroSch/layout-switcher/internal/journal"
	"github.com/TanaroSch/layout-switcher/internal/layout"
)

// Decision thresholds.
const (
	MinWordLen                 = 4
	MinConvertedConfidence     = 0.70
	RelaxedConvertedConfidence = 0.55
	LowOriginalConfidence      = 0.30
	MinConfidenceGain          = 0.25
	EnglishOverrideConfidence  = 0.80
)

// SkipReason says why a word was left alone. SkipNone means convert.
type SkipReason uint8

const (
	SkipNone SkipReason = iota
	SkipReentry
	SkipAlreadyAutoconverted
	SkipNoToken
	SkipSuffixHasNewline
	SkipNotAWord
	SkipNoChangeAfterConvert
	SkipTooShort
	SkipScriptCheckFailed
	SkipAlreadyCorrect
	SkipConvertedConfidenceLow
	SkipNotBetterEnough
	SkipShiftHeld
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipReentry:
		return "reentry"
	case SkipAlreadyAutoconverted:
		return "already_autoconverted"
	case SkipNoToken:
		return "no_token"
	case SkipSuffixHasNewline:
		return "suffix_has_newline"
	case SkipNotAWord:
		return "not_a_word"
	case SkipNoChangeAfterConvert:
		return "no_change_after_convert"
	case SkipTooShort:
		return "too_short"
	case SkipScriptCheckFailed:
		return "script_check_failed"
	case SkipAlreadyCorrect:
		return "already_correct"
	case SkipConvertedConfidenceLow:
		return "converted_confidence_low"
	case SkipNotBetterEnough:
		return "not_better_enough"
	case SkipShiftHeld:
		return "shift_held"
	}
	return "unknown"
}

// DirectionFallback guesses a direction when neither the layout tag nor the
// text decides it; usually from the foreground window's layout.
type DirectionFallback func() (layout.Direction, bool)

// ResolveDirection picks the conversion direction for text typed in tag.
// Unknown layouts fall back to the dominant alphabet, then to fallback, then
// to RuToEn.
func ResolveDirection(text string, tag layout.Tag, fallback DirectionFallback) layout.Direction {
	if dir, ok := layout.DirectionFromTag(tag); ok {
		return dir
	}
	if dir, ok := layout.DirectionForText(text); ok {
		return dir
	}
	if fallback != nil {
		if dir, ok := fallback(); ok {
			return dir
		}
	}
	return layout.RuToEn
}

// Candidate computes the converted word, or the reason there is none.
// The whole word is converted, trailing punctuation included.
func Candidate(p journal.Payload, tag layout.Tag, fallback DirectionFallback) (string, layout.Direction, SkipReason) {
	if p.SuffixHasNewline {
		return "", 0, SkipSuffixHasNewline
	}
	if !strings.ContainsFunc(p.Word, unicode.IsLetter) {
		return "", 0, SkipNotAWord
	}
	dir := ResolveDirection(p.Word, tag, fallback)
	converted := layout.Convert(p.Word, dir)
	if converted == p.Word {
		return "", dir, SkipNoChangeAfterConvert
	}
	return converted, dir, SkipNone
}

// Decide gates an automatic conversion of word into converted. Trailing
// convertible punctuation is ignored while scoring.
func Decide(m Model, word, converted string) SkipReason {
	n := trailingConvertiblePunct(word)
	w := trimTailRunes(word, n)
	c := trimTailRunes(converted, n)
	if w == "" || c == "" {
		return SkipScriptCheckFailed
	}
	if len([]rune(w)) < MinWordLen {
		return SkipTooShort
	}

	wASCII, wCyr := looksLikeASCIIWord(w), looksLikeCyrillicWord(w)
	cASCII, cCyr := looksLikeASCIIWord(c), looksLikeCyrillicWord(c)
	if !(wASCII || wCyr) || !(cASCII || cCyr) {
		return SkipScriptCheckFailed
	}

	wRu, wEn := m.Confidence(w, Russian), m.Confidence(w, English)
	cRu, cEn := m.Confidence(c, Russian), m.Confidence(c, English)

	if wASCII && plausibleEnglish(w) {
		return SkipAlreadyCorrect
	}
	// A mistyped English loanword can look like fine Russian; a strong English
	// candidate overrides the guard.
	if wCyr && plausibleRussian(w) {
		if !(plausibleEnglish(c) && cEn >= EnglishOverrideConfidence) {
			return SkipAlreadyCorrect
		}
	}

	wBest := max(wRu, wEn)
	cBest := max(cRu, cEn)
	wTarget, cTarget := wEn, cEn
	if wASCII {
		wTarget, cTarget = wRu, cRu
	}

	if cBest < MinConvertedConfidence {
		return SkipConvertedConfidenceLow
	}
	minAbs := MinConvertedConfidence
	if wBest < LowOriginalConfidence {
		minAbs = RelaxedConvertedConfidence
	}
	if cTarget < minAbs {
		return SkipConvertedConfidenceLow
	}
	if cTarget-wTarget < MinConfidenceGain {
		return SkipNotBetterEnough
	}
	return SkipNone
}

func trailingConvertiblePunct(s string) int {
	rs := []rune(s)
	n := 0
	for i := len(rs) - 1; i >= 0 && journal.IsConvertiblePunct(rs[i]); i-- {
		n++
	}
	return n
}

func trimTailRunes(s string, n int) string {
	if n == 0 {
		return s
	}
	rs := []rune(s)
	if n >= len(rs) {
		return ""
	}
	return string(rs[:len(rs)-n])
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// looksLikeASCIIWord accepts letters and apostrophes, plus a dot or comma
// between two letters.
func looksLikeASCIIWord(s string) bool {
	hasLetter := false
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case isASCIILetter(b):
			hasLetter = true
		case b == '\'':
		case (b == '.' || b == ',') && i > 0 && i+1 < len(s) && isASCIILetter(s[i-1]) && isASCIILetter(s[i+1]):
		default:
			return false
		}
	}
	return hasLetter
}

func isCyrillic(r rune) bool {
	return (r >= 0x0400 && r <= 0x04FF) || (r >= 0x0500 && r <= 0x052F)
}

func looksLikeCyrillicWord(s string) bool {
	hasAlpha := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if !isCyrillic(r) {
				return false
			}
			hasAlpha = true
		case r == '\'' || r == '-':
		default:
			return false
		}
	}
	return hasAlpha
}

func isEnglishVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isRussianVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'а', 'е', 'ё', 'и', 'о', 'у', 'ы', 'э', 'ю', 'я':
		return true
	}
	return false
}

// plausibleEnglish: a vowel, no more than four consonants in a row and at
// most one of j q x z. 'y' counts as a consonant.
func plausibleEnglish(s string) bool {
	if !looksLikeASCIIWord(s) {
		return false
	}
	hasVowel := false
	run, maxRun, rare := 0, 0, 0
	for _, r := range s {
		if r == '\'' {
			continue
		}
		if isEnglishVowel(r) {
			hasVowel = true
			run = 0
			continue
		}
		run++
		maxRun = max(maxRun, run)
		switch unicode.ToLower(r) {
		case 'j', 'q', 'x', 'z':
			rare++
		}
	}
	return hasVowel && maxRun <= 4 && rare <= 1
}

func plausibleRussian(s string) bool {
	if !looksLikeCyrillicWord(s) {
		return false
	}
	hasVowel := false
	run, maxRun := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if isRussianVowel(r) {
			hasVowel = true
			run = 0
			continue
		}
		run++
		maxRun = max(maxRun, run)
	}
	return hasVowel && maxRun <= 4
}
