// Package layout knows the two keyboard layouts the switcher converts between
// (Russian ЙЦУКЕН and English QWERTY) and how to remap text typed in one as if
// it had been typed in the other.
package layout

import "fmt"

// Kind classifies a keyboard layout.
type Kind uint8

const (
	Unknown Kind = iota
	En
	Ru
	Other
)

// Primary language ids (low 10 bits of a LANGID).
const (
	langEnglish uint16 = 0x09
	langRussian uint16 = 0x19
)

// Tag is the layout a piece of text was typed in.
type Tag struct {
	Kind   Kind
	LangID uint16 // set for Other
}

var (
	TagUnknown = Tag{Kind: Unknown}
	TagEn      = Tag{Kind: En}
	TagRu      = Tag{Kind: Ru}
)

// TagFromLangID maps a LANGID (the low word of an HKL) to a Tag.
func TagFromLangID(langID uint16) Tag {
	switch langID & 0x3FF {
	case langEnglish:
		return TagEn
	case langRussian:
		return TagRu
	}
	return Tag{Kind: Other, LangID: langID}
}

// TagFromHKL extracts the language id from a keyboard layout handle.
func TagFromHKL(hkl uintptr) Tag {
	if hkl == 0 {
		return TagUnknown
	}
	return TagFromLangID(uint16(hkl & 0xFFFF))
}

// Flip returns the layout text ends up in after conversion. Only Ru and En flip.
func (t Tag) Flip() Tag {
	switch t.Kind {
	case Ru:
		return TagEn
	case En:
		return TagRu
	}
	return t
}

// Known reports whether the tag is Ru or En.
func (t Tag) Known() bool {
	return t.Kind == Ru || t.Kind == En
}

func (t Tag) String() string {
	switch t.Kind {
	case En:
		return "en"
	case Ru:
		return "ru"
	case Other:
		return fmt.Sprintf("other(0x%04x)", t.LangID)
	}
	return "unknown"
}

// ParseTag accepts "en", "ru" and "unknown".
func ParseTag(s string) (Tag, error) {
	switch s {
	case "en", "EN", "En":
		return TagEn, nil
	case "ru", "RU", "Ru":
		return TagRu, nil
	case "", "unknown":
		return TagUnknown, nil
	}
	return TagUnknown, fmt.Errorf("unknown layout %q (want en or ru)", s)
}
