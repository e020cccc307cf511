// Package detector resolves the language of free text for engines that
// cannot auto-detect the source language themselves.
package detector

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the letter count below which detection is not attempted.
const minLetters = 4

// Detector builds the lingua models on first use; building them is slow and
// memory hungry, so a Detector should be shared.
type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func New() *Detector {
	return &Detector{}
}

func (d *Detector) get() lingua.LanguageDetector {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return d.detector
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	sample := strings.TrimSpace(text)
	if countLetters(sample) < minLetters {
		return lingua.Unknown, false
	}
	return d.get().DetectLanguageOf(sample)
}

// DetectISO returns the lower-case ISO 639-1 code of text.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
