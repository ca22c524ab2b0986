package layout

import "strings"

// Direction of a conversion between the two layouts.
type Direction uint8

const (
	RuToEn Direction = iota + 1
	EnToRu
)

func (d Direction) String() string {
	switch d {
	case RuToEn:
		return "ru->en"
	case EnToRu:
		return "en->ru"
	}
	return "none"
}

// Target returns the layout text is in after converting in this direction.
func (d Direction) Target() Tag {
	if d == RuToEn {
		return TagEn
	}
	return TagRu
}

// DirectionFromTag picks the conversion direction for text typed in t.
func DirectionFromTag(t Tag) (Direction, bool) {
	switch t.Kind {
	case Ru:
		return RuToEn, true
	case En:
		return EnToRu, true
	}
	return 0, false
}

// Pairs of characters produced by the same physical key: RU first, EN second.
// Besides the letter rows this covers the shifted number row symbols that
// differ between the layouts and the "," "." "?" keys.
var keyPairs = [][2]rune{
	{'й', 'q'}, {'ц', 'w'}, {'у', 'e'}, {'к', 'r'}, {'е', 't'}, {'н', 'y'},
	{'г', 'u'}, {'ш', 'i'}, {'щ', 'o'}, {'з', 'p'}, {'х', '['}, {'ъ', ']'},
	{'ф', 'a'}, {'ы', 's'}, {'в', 'd'}, {'а', 'f'}, {'п', 'g'}, {'р', 'h'},
	{'о', 'j'}, {'л', 'k'}, {'д', 'l'}, {'ж', ';'}, {'э', '\''},
	{'я', 'z'}, {'ч', 'x'}, {'с', 'c'}, {'м', 'v'}, {'и', 'b'}, {'т', 'n'},
	{'ь', 'm'}, {'б', ','}, {'ю', '.'}, {'ё', '`'},

	{'Й', 'Q'}, {'Ц', 'W'}, {'У', 'E'}, {'К', 'R'}, {'Е', 'T'}, {'Н', 'Y'},
	{'Г', 'U'}, {'Ш', 'I'}, {'Щ', 'O'}, {'З', 'P'}, {'Х', '{'}, {'Ъ', '}'},
	{'Ф', 'A'}, {'Ы', 'S'}, {'В', 'D'}, {'А', 'F'}, {'П', 'G'}, {'Р', 'H'},
	{'О', 'J'}, {'Л', 'K'}, {'Д', 'L'}, {'Ж', ':'}, {'Э', '"'},
	{'Я', 'Z'}, {'Ч', 'X'}, {'С', 'C'}, {'М', 'V'}, {'И', 'B'}, {'Т', 'N'},
	{'Ь', 'M'}, {'Б', '<'}, {'Ю', '>'}, {'Ё', '~'},
}

// Keys whose RU character is itself an EN character on another key. These are
// one-directional: e.g. RU "," (Shift+/) becomes EN "?", while EN "," is RU "б".
var (
	ruPunctToEn = map[rune]rune{
		',': '?',
		'.': '/',
		'?': '&',
		'"': '@',
		'№': '#',
		';': '$',
		':': '^',
	}
	enPunctToRu = map[rune]rune{
		'?': ',',
		'/': '.',
		'&': '?',
		'@': '"',
		'#': '№',
		'$': ';',
		'^': ':',
	}
)

var ruToEn, enToRu = buildTables()

func buildTables() (map[rune]rune, map[rune]rune) {
	r2e := make(map[rune]rune, len(keyPairs)+len(ruPunctToEn))
	e2r := make(map[rune]rune, len(keyPairs)+len(enPunctToRu))
	for _, p := range keyPairs {
		r2e[p[0]] = p[1]
		e2r[p[1]] = p[0]
	}
	for k, v := range ruPunctToEn {
		r2e[k] = v
	}
	for k, v := range enPunctToRu {
		e2r[k] = v
	}
	return r2e, e2r
}

// Convert remaps every character of text in the given direction. Characters
// without a counterpart (digits, spaces, foreign letters) are kept as is.
func Convert(text string, dir Direction) string {
	table := ruToEn
	if dir == EnToRu {
		table = enToRu
	}

	var b strings.Builder
	if dir == EnToRu {
		b.Grow(len(text) * 2)
	} else {
		b.Grow(len(text))
	}
	for _, r := range text {
		if m, ok := table[r]; ok {
			b.WriteRune(m)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsCyrillicLetter reports whether r is a letter of the Russian alphabet.
func IsCyrillicLetter(r rune) bool {
	return (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё'
}

// IsLatinLetter reports whether r is an ASCII letter.
func IsLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// DirectionForText guesses the direction from which alphabet dominates.
// It reports false on a tie, including text without letters.
func DirectionForText(text string) (Direction, bool) {
	var cyr, lat int
	for _, r := range text {
		switch {
		case IsCyrillicLetter(r):
			cyr++
		case IsLatinLetter(r):
			lat++
		}
	}
	switch {
	case cyr > lat:
		return RuToEn, true
	case lat > cyr:
		return EnToRu, true
	}
	return 0, false
}

// ConvertAuto converts using DirectionForText, defaulting to RuToEn on a tie.
func ConvertAuto(text string) string {
	dir, ok := DirectionForText(text)
	if !ok {
		dir = RuToEn
	}
	return Convert(text, dir)
}
