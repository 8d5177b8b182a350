// Package chunker batches the lines of a text into request-sized groups for
// translation services. Lines are never split or merged, so the translated
// batches can be concatenated back into a text with the same line count.
// It also extracts a sliding-window context snippet (last N words) for use
// with LLM translators to maintain continuity across batch boundaries.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultContextWords is the default number of words extracted by
	// ExtractContext for use as a sliding-window context.
	DefaultContextWords = 25
)

// Lines groups lines into consecutive batches of at most maxLines lines and
// at most maxChars code points, counting one separator per line. A single
// line longer than maxChars gets a batch of its own. Limits ≤ 0 are treated
// as unlimited.
func Lines(lines []string, maxChars, maxLines int) [][]string {
	if len(lines) == 0 {
		return nil
	}

	var batches [][]string
	start, size := 0, 0
	for i, line := range lines {
		n := utf8.RuneCountInString(line) + 1
		count := i - start
		full := (maxLines > 0 && count >= maxLines) ||
			(maxChars > 0 && count > 0 && size+n > maxChars)
		if full {
			batches = append(batches, lines[start:i:i])
			start, size = i, 0
		}
		size += n
	}
	return append(batches, lines[start:len(lines):len(lines)])
}

// ExtractContext returns the last wordCount words of text, joined by a single
// space. It is intended for use as a sliding-window context snippet passed to
// LLM translators so they can maintain narrative continuity across batches.
// If text has fewer words than wordCount, the entire text is returned.
// If wordCount ≤ 0, DefaultContextWords is used.
func ExtractContext(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultContextWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[len(words)-wordCount:], " ")
}
