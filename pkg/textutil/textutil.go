// Package textutil provides small text helpers shared by the loader and the
// rewriters: binary detection, line counting and indentation lookup.
package textutil

import (
	"bytes"
	"strings"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in text.
// A non-empty text without a trailing newline counts the last partial line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}

	lines := strings.Count(text, "\n")

	if text[len(text)-1] != '\n' {
		lines++
	}

	return lines
}

// LineStart returns the offset of the first byte of the line containing offset.
func LineStart(text string, offset int) int {
	offset = min(max(offset, 0), len(text))

	return strings.LastIndexByte(text[:offset], '\n') + 1
}

// Indent returns the run of spaces and tabs that starts the line containing offset.
func Indent(text string, offset int) string {
	start := LineStart(text, offset)
	end := start

	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}

	return text[start:end]
}

// IsSpace reports whether b is ASCII whitespace as HTML defines it.
func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// TrimSpaceLeft moves offset left over whitespace and returns the new offset.
func TrimSpaceLeft(text string, offset int) int {
	for offset > 0 && IsSpace(text[offset-1]) {
		offset--
	}

	return offset
}
