// Package validator flags model translations that came back in the wrong
// language. Its verdicts are advisory: the service logs them and still
// returns the model's answer.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/keytrans/internal/detector"
)

// Below this many runes lingua guesses too often to be worth a warning.
const minCheckRunes = 20

// ErrEmptyTranslation is returned when the model sent no translation text.
var ErrEmptyTranslation = errors.New("model returned an empty translation")

// MismatchError reports a translation written in a language other than the
// requested one.
type MismatchError struct {
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("translation looks like %q, requested %q", e.Got, e.Want)
}

type Validator struct {
	det *detector.Detector
}

// New shares det with the caller, since building a lingua detector loads
// its language models.
func New(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// Check returns nil unless translation is clearly not in target (an ISO 639-1
// code). Targets the detector cannot recognise, short replies and replies of
// undetermined language are not judged.
func (v *Validator) Check(translation, target string) error {
	if target == "" || !v.det.Supports(target) {
		return nil
	}

	text := strings.TrimSpace(translation)
	if text == "" {
		return ErrEmptyTranslation
	}
	if len([]rune(text)) < minCheckRunes {
		return nil
	}

	got, ok := v.det.DetectISO(text)
	if !ok || strings.EqualFold(got, target) {
		return nil
	}
	return &MismatchError{Want: strings.ToLower(target), Got: strings.ToLower(got)}
}
