// Package tokenize splits literal subtitle text into an ordered sequence of
// word and whitespace spans. Concatenating the spans always reproduces the
// input, so a caller can rewrite the words of a text while leaving its
// whitespace layout untouched.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind distinguishes word tokens from whitespace tokens.
type Kind int

const (
	// Word is a maximal run of non-whitespace runes.
	Word Kind = iota
	// Space is a maximal run of whitespace runes, newlines included.
	Space
)

func (k Kind) String() string {
	if k == Space {
		return "space"
	}
	return "word"
}

// Token is a span of the tokenized text. Text is text[Start:End] and shares
// the memory of the original string.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Text  string
}

// Tokenize scans text and returns its word and whitespace runs in order.
// Whitespace is defined by unicode.IsSpace, the same rule strings.Fields
// uses, so the words produced here are exactly the fields of text.
func Tokenize(text string) []Token {
	var tokens []Token
	start := 0
	for start < len(text) {
		r, size := utf8.DecodeRuneInString(text[start:])
		kind := kindOf(r)
		end := start + size
		for end < len(text) {
			r, size = utf8.DecodeRuneInString(text[end:])
			if kindOf(r) != kind {
				break
			}
			end += size
		}
		tokens = append(tokens, Token{Kind: kind, Start: start, End: end, Text: text[start:end]})
		start = end
	}
	return tokens
}

// Join concatenates token texts back into a single string.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Words returns only the word tokens of text.
func Words(text string) []Token {
	var words []Token
	for _, t := range Tokenize(text) {
		if t.Kind == Word {
			words = append(words, t)
		}
	}
	return words
}

func kindOf(r rune) Kind {
	if unicode.IsSpace(r) {
		return Space
	}
	return Word
}
