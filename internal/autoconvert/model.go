package autoconvert

import (
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Language is one of the two languages the switcher converts between.
type Language uint8

const (
	English Language = iota + 1
	Russian
)

func (l Language) String() string {
	switch l {
	case English:
		return "en"
	case Russian:
		return "ru"
	}
	return "unknown"
}

// Model scores how much text looks like a language, in [0, 1].
type Model interface {
	Confidence(text string, lang Language) float64
}

// minimumRelativeDistance makes the detector less eager on short tokens.
const minimumRelativeDistance = 0.20

// LinguaModel is the statistical model backed by lingua-go, restricted to
// English and Russian. Building the detector loads the language models, so
// it happens lazily on first use.
type LinguaModel struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLinguaModel returns a model; the detector is built on first use.
func NewLinguaModel() *LinguaModel {
	return &LinguaModel{}
}

func (m *LinguaModel) build() {
	m.detector = lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Russian).
		WithMinimumRelativeDistance(minimumRelativeDistance).
		Build()
}

// Confidence implements Model.
func (m *LinguaModel) Confidence(text string, lang Language) float64 {
	m.once.Do(m.build)

	want := lingua.English
	if lang == Russian {
		want = lingua.Russian
	}
	for _, cv := range m.detector.ComputeLanguageConfidenceValues(text) {
		if cv.Language() == want {
			return cv.Value()
		}
	}
	return 0
}
