package batch

import (
	"fmt"
	"os"
	"strings"
)

// ReadBatchFile reads entries from a file, one per line.
// Supported line formats:
// - plain text: "ハローワールド"
// - text with an output name: "ハローワールド:greeting"
// Lines are trimmed before anything else, so blank lines and lines whose
// first non-space characters are "#" or "//" are skipped, indented ones
// included.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return ParseLines(string(content)), nil
}

// ParseLines parses the content of an input list.
func ParseLines(content string) []Entry {
	var entries []Entry

	for i, line := range splitLines(content) {
		line = trimSpace(line)
		if isComment(line) {
			continue
		}

		entries = append(entries, Entry{
			RawText: line,
			Line:    i + 1,
		})
	}

	return entries
}

func isComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current.String())
			current.Reset()
		} else if r != '\r' {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// trimSpace trims whitespace from string
func trimSpace(s string) string {
	start := 0
	end := len(s)

	for start < end && isSpace(rune(s[start])) {
		start++
	}

	for end > start && isSpace(rune(s[end-1])) {
		end--
	}

	return s[start:end]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
