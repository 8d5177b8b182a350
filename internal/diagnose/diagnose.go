// Package diagnose explains alignment sync defects by showing where the text
// walked during alignment drifted from the text handed to translation.
package diagnose

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// WordDrift renders a word-level diff of walked against extracted. Removed
// words are shown as [-word-], added ones as {+word+}. Whitespace layout is
// ignored. It returns "" when both texts have the same words.
func WordDrift(extracted, walked string) string {
	a, b := wordLines(extracted), wordLines(walked)
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(ca, cb, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	parts := make([]string, 0, len(diffs))
	for _, d := range diffs {
		words := strings.Join(strings.Fields(d.Text), " ")
		if words == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			parts = append(parts, "[-"+words+"-]")
		case diffmatchpatch.DiffInsert:
			parts = append(parts, "{+"+words+"+}")
		default:
			parts = append(parts, words)
		}
	}
	return strings.Join(parts, " ")
}

// wordLines puts every word on its own line so the line diff works on words.
func wordLines(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, "\n") + "\n"
}
