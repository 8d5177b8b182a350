package subtitle

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ASS-style hard space marker, e.g. "entstanden\h".
	hardSpaceRe = regexp.MustCompile(`\\h`)

	htmlTagRe = regexp.MustCompile(`<.*?>`)

	multiSpaceRe = regexp.MustCompile(`[ ]{2,}`)

	carriageReturnRe = regexp.MustCompile(`\s+\r\s+`)

	spacesAroundNewlineRe = regexp.MustCompile(`\s*\n\s*`)

	// A word hyphenated across a line break inside one entry:
	//
	//	dass 70% der Insel und des um-
	//	liegenden Archipels zerstört wurden.
	midEntryHyphenRe = regexp.MustCompile(`(\pL)-\n([\pL\pN_]*)\s`)
)

// Clean normalises the text of every entry and then moves words split across
// two entries by a trailing hyphen back together. It must run before text is
// extracted for translation.
func Clean(entries []Entry) {
	for i := range entries {
		entries[i].Text = cleanText(entries[i].Text)
	}
	RepairContinuations(entries)
}

func cleanText(text string) string {
	text = hardSpaceRe.ReplaceAllString(text, "")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = carriageReturnRe.ReplaceAllString(text, " ")
	text = spacesAroundNewlineRe.ReplaceAllString(text, "\n")
	text = midEntryHyphenRe.ReplaceAllString(text, "$1$2\n")
	return strings.TrimSpace(text)
}

// RepairContinuations fixes hyphenated words that a timing boundary split
// across two entries:
//
//	581  Und die haben vielleicht mal für Y-
//	582  Kollektiv irgendwas gedreht.
//
// becomes "...für Y-Kollektiv" / "irgendwas gedreht.". Each adjacent pair is
// looked at once, left to right. An entry that received a repair is not
// checked against its own successor, so chains are not followed. When the
// next entry consists of a single word it is left alone.
func RepairContinuations(entries []Entry) {
	for i := 0; i+1 < len(entries); i++ {
		if !endsWithHyphenatedLetter(entries[i].Text) {
			continue
		}
		word, rest, ok := splitFirstWord(entries[i+1].Text)
		if !ok {
			continue
		}
		entries[i].Text += word
		entries[i+1].Text = rest
		i++
	}
}

func endsWithHyphenatedLetter(text string) bool {
	if !strings.HasSuffix(text, "-") {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:len(text)-1])
	return unicode.IsLetter(r)
}

// splitFirstWord returns the first whitespace-delimited word of text and
// what follows the single whitespace rune after it.
func splitFirstWord(text string) (word, rest string, ok bool) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx <= 0 {
		return "", text, false
	}
	_, size := utf8.DecodeRuneInString(text[idx:])
	return text[:idx], text[idx+size:], true
}
