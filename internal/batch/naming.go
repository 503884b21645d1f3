package batch

import (
	"strings"

	"codeberg.org/snonux/kanavox/internal"
)

// MaxNameLength is the maximum number of characters of an output file stem.
const MaxNameLength = 10

// NameFor derives the output file stem for an entry. The display name wins
// when present; otherwise the text after the first colon is used, falling back
// to the text before it when the suffix is empty; otherwise the raw text.
// The result is truncated to MaxNameLength characters and made safe for use
// as a file name. Two entries may well map to the same name.
func NameFor(e Entry) string {
	var name string

	switch before, after, found := strings.Cut(e.RawText, ":"); {
	case e.DisplayName != "":
		name = e.DisplayName
	case found && strings.TrimSpace(after) != "":
		name = strings.TrimSpace(after)
	case found:
		name = strings.TrimSpace(before)
	default:
		name = e.RawText
	}

	return internal.SanitizeFilename(truncate(name, MaxNameLength))
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
