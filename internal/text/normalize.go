// Package text provides input text normalization for speech synthesis.
// The native core receives the text verbatim; this package only removes
// artifacts (control characters, stray whitespace runs) that upstream
// extraction tends to leave behind.
package text

import (
	"errors"
	"strings"
	"unicode"
)

// ErrTextEmpty indicates that the input contained no speakable text.
var ErrTextEmpty = errors.New("text cannot be empty")

// Normalize collapses whitespace runs into single spaces, drops
// non-printable control characters and trims the result. Multibyte text
// passes through untouched.
func Normalize(input string) string {
	var builder strings.Builder

	builder.Grow(len(input))

	lastWasSpace := false

	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				builder.WriteByte(' ')
			}

			lastWasSpace = true
		case unicode.IsControl(r):
			// Dropped entirely; a control character has no phonetic value.
		default:
			builder.WriteRune(r)

			lastWasSpace = false
		}
	}

	return strings.TrimSpace(builder.String())
}

// Validate rejects input that has no speakable content left after
// normalization.
func Validate(normalized string) error {
	if normalized == "" {
		return ErrTextEmpty
	}

	return nil
}
