package analysis

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText removes null bytes and control characters, keeping tabs and newlines.
func SanitizeText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	result.Grow(len(input))
	for _, r := range input {
		if r >= 32 && r != 127 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLength returns ErrInputTooLong when text has more than max runes.
// A max of zero or less disables the check.
func ValidateLength(text string, max int) error {
	if max > 0 && utf8.RuneCountInString(text) > max {
		return ErrInputTooLong
	}
	return nil
}

// BaselineScorer computes a local lexicon score for text.
type BaselineScorer interface {
	Score(text string) Baseline
}
