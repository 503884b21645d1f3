package internal

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// GenerateRunID creates a unique ID for a batch run.
// The first 8 hex characters are enough to tell runs apart in the logs.
func GenerateRunID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// SanitizeFilename replaces characters that are unsafe in a file name with '_'.
// Each rune maps to exactly one rune, so the character count is preserved.
func SanitizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isFilenameSafe(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isFilenameSafe reports whether a rune may appear in a file stem.
// Letters and digits of any script are allowed, so kana and kanji stay intact.
func isFilenameSafe(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Katakana, r):
		return true
	case r == '-' || r == '_' || r == '.' || r == ' ' || r == 'ー':
		return true
	default:
		return false
	}
}
