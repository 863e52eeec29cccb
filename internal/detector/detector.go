// Package detector identifies the language of a piece of text.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// DefaultLanguages is the candidate set used when New is called without
// arguments. A small set keeps model loading cheap and avoids confusing
// closely related languages on short inputs.
var DefaultLanguages = []lingua.Language{
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Ukrainian,
	lingua.Polish,
	lingua.Arabic,
	lingua.Vietnamese,
}

// Detector wraps a lingua detector. It is safe for concurrent use and should
// be built once per process.
type Detector struct {
	detector  lingua.LanguageDetector
	languages []lingua.Language
}

func New(languages ...lingua.Language) *Detector {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Detector{detector: detector, languages: languages}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the upper-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// DetectName returns the English name of the detected language, e.g. "Chinese".
func (d *Detector) DetectName(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.String(), true
}

// Supports reports whether isoCode (ISO 639-1, any case) is among the
// candidate languages.
func (d *Detector) Supports(isoCode string) bool {
	for _, lang := range d.languages {
		if strings.EqualFold(lang.IsoCode639_1().String(), isoCode) {
			return true
		}
	}
	return false
}
