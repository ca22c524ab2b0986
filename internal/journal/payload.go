package journal

import "strings"

// Payload is a word with its trailing context, ready to be replaced on screen.
type Payload struct {
	Word             string
	Suffix           string
	WordLen          int
	SuffixLen        int
	SuffixSpacesOnly bool
	SuffixHasNewline bool
}

// NormalizePayload applies the punctuation merge: a suffix beginning with one
// of ? / , . and otherwise holding only spaces and tabs gives that mark to the
// word. The lengths are counted in characters.
func NormalizePayload(word, suffix string) Payload {
	hasNewline := strings.ContainsAny(suffix, "\r\n")

	if !hasNewline && suffix != "" {
		first := []rune(suffix)[0]
		rest := suffix[len(string(first)):]
		if IsConvertiblePunct(first) && spacesOrTabs(rest) {
			word += string(first)
			suffix = rest
		}
	}

	return Payload{
		Word:             word,
		Suffix:           suffix,
		WordLen:          len([]rune(word)),
		SuffixLen:        len([]rune(suffix)),
		SuffixSpacesOnly: suffix != "" && spacesOrTabs(suffix),
		SuffixHasNewline: hasNewline,
	}
}

// PayloadFromExtract builds a payload from a run extract.
func PayloadFromExtract(e Extract) Payload {
	return NormalizePayload(e.Text(), e.SuffixText())
}

func spacesOrTabs(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
