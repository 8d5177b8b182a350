package subtitle

import (
	"regexp"
	"strings"
)

var (
	// A line break after a letter, digit, comma, colon or semicolon continues
	// the sentence.
	joinRe = regexp.MustCompile(`([\pL\pN,;:])\n`)

	// An initial or ordinal ("Susanne F.", "zum 1.") does not end a sentence.
	initialRe = regexp.MustCompile(`(\s[\p{Lu}\pN][.])\n`)

	// A dash at the end of a line is a parenthetical dash.
	endHyphenRe = regexp.MustCompile(`\s-\n`)
)

// ExtractText joins the text of all entries into the block handed to the
// translator. Lines inside an entry are trimmed, entries are separated by a
// line break, and line breaks that do not end a sentence are turned into
// spaces so that each line is roughly one sentence.
func ExtractText(entries []Entry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		lines := strings.Split(e.Text, "\n")
		for j, l := range lines {
			lines[j] = strings.TrimSpace(l)
		}
		texts[i] = strings.Join(lines, "\n")
	}
	return joinSentences(strings.Join(texts, "\n"))
}

func joinSentences(text string) string {
	text = joinRe.ReplaceAllString(text, "$1 ")
	text = initialRe.ReplaceAllString(text, "$1 ")
	text = endHyphenRe.ReplaceAllString(text, " - ")
	return text
}
