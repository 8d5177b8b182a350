// Package validator checks that a translated text can be aligned onto its
// source: the line counts must match and the text should be in the target
// language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/subtran/internal/detector"
	"github.com/valpere/subtran/internal/proportional"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// ErrWrongLanguage is wrapped by language check failures.
var ErrWrongLanguage = errors.New("translation is not in the target language")

// Validator checks translation results.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// CheckLines returns a *proportional.LineCountMismatchError when target does
// not have as many lines as source.
func CheckLines(source, target string) error {
	s, t := len(proportional.SplitLines(source)), len(proportional.SplitLines(target))
	if s != t {
		return &proportional.LineCountMismatchError{Expected: s, Got: t}
	}
	return nil
}

// CheckTranslation validates target against source. A line count mismatch
// is returned as is; a language mismatch wraps ErrWrongLanguage so callers
// can decide to only warn about it.
func (v *Validator) CheckTranslation(source, target, targetLang string) error {
	if err := CheckLines(source, target); err != nil {
		return err
	}
	if _, err := v.IsValid(target, targetLang); err != nil {
		return err
	}
	return nil
}

// IsValid returns true when translatedText appears to be written in targetLang.
//
// Short texts (fewer than minValidationLength runes) and texts whose language
// cannot be determined pass without error. When the detected language differs
// from targetLang the returned error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, baseLanguage(targetLang)) {
		return false, fmt.Errorf("%w: expected %s but detected %s", ErrWrongLanguage, targetLang, detected)
	}

	return true, nil
}

// baseLanguage strips region and script subtags: "pt-BR" -> "pt".
func baseLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return tag[:i]
	}
	return tag
}
