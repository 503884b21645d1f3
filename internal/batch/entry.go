package batch

import "strings"

// Entry is one line of the input list.
type Entry struct {
	RawText     string
	DisplayName string // explicit output name, empty when absent
	Line        int    // 1-based line in the input file, 0 when not read from a file
}

// Text returns the part of the entry that is spoken: everything before the
// first colon, or the whole raw text when there is no colon.
func (e Entry) Text() string {
	if before, _, found := strings.Cut(e.RawText, ":"); found {
		return strings.TrimSpace(before)
	}
	return strings.TrimSpace(e.RawText)
}

// String is used in log and summary output.
func (e Entry) String() string {
	if e.DisplayName != "" {
		return e.RawText + " (" + e.DisplayName + ")"
	}
	return e.RawText
}
